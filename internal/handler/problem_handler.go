package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/algoprep/backend/internal/domain"
	"github.com/algoprep/backend/internal/middleware"
	"github.com/algoprep/backend/internal/service"
)

// ProblemHandler handles problem catalog HTTP requests
type ProblemHandler struct {
	problemService *service.ProblemService
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(problemService *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{
		problemService: problemService,
	}
}

// callerID returns the authenticated user's ID, or uuid.Nil for anonymous
// callers. Problem routes use optional auth so both work.
func callerID(c *gin.Context) uuid.UUID {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetProblems returns the problem catalog, optionally filtered
// GET /api/problems?category=&difficulty=&search=
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	filter := domain.ProblemFilter{
		Category:   c.Query("category"),
		Difficulty: domain.Difficulty(c.Query("difficulty")),
		Search:     c.Query("search"),
	}

	problems, err := h.problemService.ListProblems(c.Request.Context(), filter, callerID(c))
	if err != nil {
		switch err {
		case domain.ErrInvalidDifficulty:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid difficulty, expected Easy, Medium or Hard",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problems",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"problems": problems,
		"count":    len(problems),
	})
}

// GetProblem returns a specific problem by ID
// GET /api/problems/:id
func (h *ProblemHandler) GetProblem(c *gin.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid problem ID",
		})
		return
	}

	problem, err := h.problemService.GetProblemByID(c.Request.Context(), id, callerID(c))
	if err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problem",
			})
		}
		return
	}

	c.JSON(http.StatusOK, problem)
}

// GetProblemBySlug returns a specific problem by its URL slug
// GET /api/problems/slug/:slug
func (h *ProblemHandler) GetProblemBySlug(c *gin.Context) {
	problem, err := h.problemService.GetProblemBySlug(c.Request.Context(), c.Param("slug"), callerID(c))
	if err != nil {
		switch err {
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve problem",
			})
		}
		return
	}

	c.JSON(http.StatusOK, problem)
}

// GetCategories returns the distinct problem categories, sorted
// GET /api/problems/categories
func (h *ProblemHandler) GetCategories(c *gin.Context) {
	categories, err := h.problemService.GetCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
	})
}

// GetCatalogStats returns live counts over the problem catalog
// GET /api/problems/stats
func (h *ProblemHandler) GetCatalogStats(c *gin.Context) {
	stats, err := h.problemService.GetCatalogStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve catalog statistics",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
