package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/config"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/service"
)

// MeHandler serves the caller's own reading history and follows
type MeHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewMeHandler creates a new MeHandler
func NewMeHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *MeHandler {
	return &MeHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "me").Logger(),
	}
}

// History handles GET /v1/me/reading-history
func (h *MeHandler) History(c *gin.Context) {
	entries, err := h.services.Ranking.History(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

// DeleteRead handles DELETE /v1/me/reading-history/:id
func (h *MeHandler) DeleteRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Ranking.DeleteRead(c.Request.Context(), accountID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Following handles GET /v1/me/follows/{stories,authors}?page=&page_size=
func (h *MeHandler) Following(kind models.FollowKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := queryInt(c, "page", 1)
		if !ok {
			return
		}
		pageSize, ok := queryInt(c, "page_size", h.cfg.Ranking.DefaultPageSize)
		if !ok {
			return
		}

		follows, err := h.services.Follow.Following(c.Request.Context(), accountID(c), kind, page, pageSize)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"kind":      kind,
			"page":      page,
			"page_size": pageSize,
			"data":      follows,
		})
	}
}

// Follow handles POST /v1/me/follows/{stories,authors}/:id
func (h *MeHandler) Follow(kind models.FollowKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		follow, err := h.services.Follow.Follow(c.Request.Context(), accountID(c), kind, id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusCreated, follow)
	}
}

// IsFollowing handles GET /v1/me/follows/{stories,authors}/:id
func (h *MeHandler) IsFollowing(kind models.FollowKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		status, err := h.services.Follow.IsFollowing(c.Request.Context(), accountID(c), kind, id)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// Unfollow handles DELETE /v1/me/follows/{stories,authors}/:id
func (h *MeHandler) Unfollow(kind models.FollowKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := h.services.Follow.Unfollow(c.Request.Context(), accountID(c), kind, id); err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
