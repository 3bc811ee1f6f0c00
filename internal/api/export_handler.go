package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?format=...
// Streams the whole catalog directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	format := c.Query("format")
	if format == "" {
		format = service.FormatNDJSON
	}
	if format != service.FormatNDJSON && format != service.FormatJSON && format != service.FormatCSV {
		badRequest(c, "format", "format must be one of: ndjson, json, csv")
		return
	}

	h.log.Info().Str("format", format).Msg("Starting streaming export")

	if err := h.services.Export.StreamStories(c.Request.Context(), c.Writer, format); err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Export failed")
		// Can't return error JSON after streaming has started
		return
	}
}
