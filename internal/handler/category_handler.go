package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/glossary-api/internal/middleware"
	"github.com/noah-isme/glossary-api/internal/models"
	"github.com/noah-isme/glossary-api/pkg/response"
)

type categoryService interface {
	List(ctx context.Context) ([]models.Category, bool, error)
}

// CategoryHandler exposes category endpoints.
type CategoryHandler struct {
	service categoryService
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(svc categoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
// @Router /public/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, hit, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, categories, middleware.ExtractMeta(c))
}
