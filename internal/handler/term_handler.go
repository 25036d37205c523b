package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/glossary-api/internal/dto"
	"github.com/noah-isme/glossary-api/internal/models"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
	"github.com/noah-isme/glossary-api/pkg/response"
)

type termService interface {
	ListPublic(ctx context.Context, q dto.TermQuery) ([]models.PublicTerm, error)
	ListAdmin(ctx context.Context, q dto.TermQuery) ([]models.AdminTerm, error)
	Create(ctx context.Context, req dto.CreateTermRequest) (*dto.TermCreated, error)
	Update(ctx context.Context, req dto.UpdateTermRequest) (*dto.TermUpdated, error)
	Delete(ctx context.Context, req dto.DeleteTermRequest) error
}

type termExporter interface {
	Export(ctx context.Context, q dto.ExportQuery) (*dto.ExportFile, error)
}

// TermHandler exposes term endpoints.
type TermHandler struct {
	service  termService
	exporter termExporter
}

// NewTermHandler constructs a term handler.
func NewTermHandler(svc termService, exporter termExporter) *TermHandler {
	return &TermHandler{service: svc, exporter: exporter}
}

// ListPublic godoc
// @Summary List terms (public)
// @Description Category name, term name and definition for every matching term
// @Tags Terms
// @Produce json
// @Param category_id query int false "Filter by category id"
// @Param category_name query string false "Filter by exact category name"
// @Param term_name query string false "Filter by case-insensitive term name prefix"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /public/terms [get]
func (h *TermHandler) ListPublic(c *gin.Context) {
	var q dto.TermQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid term filters"))
		return
	}
	terms, err := h.service.ListPublic(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms)
}

// ListAdmin godoc
// @Summary List terms (admin)
// @Description Full term rows including quiz alternatives
// @Tags Terms
// @Produce json
// @Param category_id query int false "Filter by category id"
// @Param category_name query string false "Filter by exact category name"
// @Param term_name query string false "Filter by case-insensitive term name prefix"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /terms [get]
func (h *TermHandler) ListAdmin(c *gin.Context) {
	var q dto.TermQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid term filters"))
		return
	}
	terms, err := h.service.ListAdmin(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, terms)
}

// Create godoc
// @Summary Create term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body dto.CreateTermRequest true "Term payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms [post]
func (h *TermHandler) Create(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid term payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update term
// @Tags Terms
// @Accept json
// @Produce json
// @Param payload body dto.UpdateTermRequest true "Term payload with id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /terms [put]
func (h *TermHandler) Update(c *gin.Context) {
	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid term payload"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete term
// @Description The id comes from the path when present, otherwise from the JSON body
// @Tags Terms
// @Accept json
// @Produce json
// @Param id path int false "Term ID"
// @Param payload body dto.DeleteTermRequest false "Term id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /terms/{id} [delete]
func (h *TermHandler) Delete(c *gin.Context) {
	var req dto.DeleteTermRequest
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Validation(err, "id must be numeric"))
			return
		}
		req.ID = &id
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid delete payload"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": *req.ID, "message": "term deleted"})
}

// Export godoc
// @Summary Export terms
// @Description Download the admin projection as CSV or PDF
// @Tags Terms
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param category_id query int false "Filter by category id"
// @Param category_name query string false "Filter by exact category name"
// @Param term_name query string false "Filter by term name prefix"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /terms/export [get]
func (h *TermHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export is not enabled"))
		return
	}
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid export query"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
