package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting-summarizer/internal/api/errors"
	"meeting-summarizer/internal/api/middleware"
	"meeting-summarizer/internal/api/v1/dto"
	"meeting-summarizer/internal/api/v1/services"
)

// SummaryHandler handles the /summaries API endpoints
type SummaryHandler struct {
	service services.SummaryService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service services.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// Create handles POST /api/v1/summaries
// Accepts a multipart upload and runs the full pipeline synchronously.
func (h *SummaryHandler) Create(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("missing file upload"))
		return
	}

	var form dto.CreateSummaryForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.CreateFromUpload(c.Request.Context(), file, form, c.GetString("caller_id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// List handles GET /api/v1/summaries
func (h *SummaryHandler) List(c *gin.Context) {
	response, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/summaries/:id
func (h *SummaryHandler) Get(c *gin.Context) {
	response, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Update handles PATCH /api/v1/summaries/:id
func (h *SummaryHandler) Update(c *gin.Context) {
	var req dto.UpdateSummaryRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/summaries/:id
func (h *SummaryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Search handles GET /api/v1/summaries/search?q=
func (h *SummaryHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Search(c.Request.Context(), query.Q)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Stats handles GET /api/v1/summaries/stats
func (h *SummaryHandler) Stats(c *gin.Context) {
	response, err := h.service.Stats(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Models handles GET /api/v1/models
func (h *SummaryHandler) Models(c *gin.Context) {
	response, err := h.service.Models(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Export handles GET /api/v1/summaries/:id/export?format=txt|pdf&field=transcript|summary
func (h *SummaryHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	payload, err := h.service.Export(c.Request.Context(), c.Param("id"), query.Format, query.Field)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+payload.Filename+`"`)
	c.Data(http.StatusOK, payload.ContentType, payload.Data)
}
