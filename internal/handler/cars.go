package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/repository"
	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/service"
)

// CarCatalog is the search service as seen by the HTTP layer
type CarCatalog interface {
	GetCar(ctx context.Context, id string) (*model.Car, error)
	UpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
	LogFeedback(ctx context.Context, searchID, carID, action string) error
}

var _ CarCatalog = (*service.SearchService)(nil)

// CarHandler handles car document HTTP requests
type CarHandler struct {
	catalog CarCatalog
}

// NewCarHandler creates a new car handler
func NewCarHandler(catalog CarCatalog) *CarHandler {
	return &CarHandler{catalog: catalog}
}

// GetCar handles GET /api/v1/cars/:id
func (h *CarHandler) GetCar(c *gin.Context) {
	car, err := h.catalog.GetCar(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get car", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, car)
}
