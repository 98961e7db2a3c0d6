package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/repository"
)

var validActions = map[string]bool{
	"click":     true,
	"like":      true,
	"dislike":   true,
	"open_link": true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	catalog CarCatalog
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(catalog CarCatalog) *FeedbackHandler {
	return &FeedbackHandler{catalog: catalog}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, like, dislike, open_link"})
		return
	}

	err := h.catalog.LogFeedback(c.Request.Context(), req.SearchID, req.CarID, req.Action)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Search not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
