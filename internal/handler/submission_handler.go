package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/algoprep/backend/internal/domain"
	"github.com/algoprep/backend/internal/middleware"
	"github.com/algoprep/backend/internal/service"
)

// SubmissionHandler handles code submission HTTP requests
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// Submit evaluates submitted code and records the attempt
// POST /api/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req domain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		switch err {
		case domain.ErrUnsupportedLanguage:
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unsupported language",
			})
		case domain.ErrProblemNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Problem not found",
			})
		case domain.ErrUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to process submission",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetSubmissions returns the caller's submission history, most recent first
// GET /api/submissions?problem_id=
func (h *SubmissionHandler) GetSubmissions(c *gin.Context) {
	userID, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var problemID *uuid.UUID
	if idStr := c.Query("problem_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid problem ID",
			})
			return
		}
		problemID = &id
	}

	submissions, err := h.submissionService.GetSubmissions(c.Request.Context(), userID, problemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve submissions",
		})
		return
	}

	responses := make([]domain.SubmissionResponse, len(submissions))
	for i, submission := range submissions {
		responses[i] = submission.ToResponse()
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": responses,
		"count":       len(responses),
	})
}
