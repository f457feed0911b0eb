package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/algoprep/backend/internal/middleware"
	"github.com/algoprep/backend/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetCurrentUser returns the currently authenticated user
// GET /api/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve user",
		})
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}

// GetUserStats returns the user's solve counters and streaks
// GET /api/users/me/stats
func (h *UserHandler) GetUserStats(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	stats, err := h.userService.GetUserStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve stats",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserProgress returns the user's per-problem progress entries
// GET /api/users/me/progress
func (h *UserHandler) GetUserProgress(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	progress, err := h.userService.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"progress": progress,
		"count":    len(progress),
	})
}
