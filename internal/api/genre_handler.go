package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/service"
	"github.com/story-catalog-api/internal/validation"
)

// GenreHandler handles genre endpoints
type GenreHandler struct {
	services  *service.Services
	validator *validation.Validator
	log       zerolog.Logger
}

// NewGenreHandler creates a new GenreHandler
func NewGenreHandler(services *service.Services, v *validation.Validator, log zerolog.Logger) *GenreHandler {
	return &GenreHandler{
		services:  services,
		validator: v,
		log:       log.With().Str("handler", "genre").Logger(),
	}
}

// List handles GET /v1/genres
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.services.Genre.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": genres, "count": len(genres)})
}

// Get handles GET /v1/genres/:id
func (h *GenreHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	genre, err := h.services.Genre.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

// Create handles POST /v1/genres
func (h *GenreHandler) Create(c *gin.Context) {
	var req models.GenreRequest
	if !bindJSON(c, h.validator, h.log, &req) {
		return
	}
	genre, err := h.services.Genre.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}

// Rename handles PUT /v1/genres/:id
func (h *GenreHandler) Rename(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.GenreRequest
	if !bindJSON(c, h.validator, h.log, &req) {
		return
	}
	genre, err := h.services.Genre.Rename(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

// Delete handles DELETE /v1/genres/:id; genres still referenced by a story are refused
func (h *GenreHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Genre.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stories handles GET /v1/genres/:id/stories
func (h *GenreHandler) Stories(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stories, err := h.services.Genre.Stories(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories, "count": len(stories)})
}
