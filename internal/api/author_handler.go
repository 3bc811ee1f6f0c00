package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/ratelimit"
	"github.com/story-catalog-api/internal/service"
	"github.com/story-catalog-api/internal/validation"
)

// AuthorHandler handles author management and the approval workflow
type AuthorHandler struct {
	services  *service.Services
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	log       zerolog.Logger
}

// NewAuthorHandler creates a new AuthorHandler. Author requests are throttled
// per account by limiter.
func NewAuthorHandler(services *service.Services, v *validation.Validator, limiter *ratelimit.KeyedRateLimiter, log zerolog.Logger) *AuthorHandler {
	return &AuthorHandler{
		services:  services,
		validator: v,
		limiter:   limiter,
		log:       log.With().Str("handler", "author").Logger(),
	}
}

// List handles GET /v1/authors
func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.services.Author.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": authors, "count": len(authors)})
}

// ListApproved handles GET /v1/authors/approved
func (h *AuthorHandler) ListApproved(c *gin.Context) {
	authors, err := h.services.Author.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": authors, "count": len(authors)})
}

// Get handles GET /v1/authors/:id
func (h *AuthorHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	author, err := h.services.Author.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// Create handles POST /v1/authors (admin); the author starts approved
func (h *AuthorHandler) Create(c *gin.Context) {
	var req models.AuthorCreateRequest
	if !bindJSON(c, h.validator, h.log, &req) {
		return
	}
	author, err := h.services.Author.Create(c.Request.Context(), accountID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

// Update handles PUT /v1/authors/:id (admin)
func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AuthorCreateRequest
	if !bindJSON(c, h.validator, h.log, &req) {
		return
	}
	author, err := h.services.Author.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// Delete handles DELETE /v1/authors/:id (admin)
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Author.Delete(c.Request.Context(), id, accountID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit handles POST /v1/authors/requests
func (h *AuthorHandler) Submit(c *gin.Context) {
	account := accountID(c)
	if account == "" {
		respondError(c, h.log, models.NewUnauthorized("account id is required"))
		return
	}
	if !h.limiter.Allow(account) {
		h.log.Warn().Str("account_id", account).Msg("Author request rate limited")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{"code": "RATE_LIMITED", "message": "too many author requests, try again later"},
		})
		return
	}

	var req models.AuthorRequest
	if !bindJSON(c, h.validator, h.log, &req) {
		return
	}
	author, err := h.services.Author.Submit(c.Request.Context(), account, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

// Me handles GET /v1/authors/me, the caller's own author identity and status
func (h *AuthorHandler) Me(c *gin.Context) {
	author, err := h.services.Author.Status(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if author == nil {
		respondError(c, h.log, models.NewReferenceNotFound("author", accountID(c)))
		return
	}
	c.JSON(http.StatusOK, author)
}

// Pending handles GET /v1/authors/pending (admin), oldest request first
func (h *AuthorHandler) Pending(c *gin.Context) {
	pending, err := h.services.Author.Pending(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pending, "count": len(pending)})
}

// Approve handles PUT /v1/authors/:id/approve (admin)
func (h *AuthorHandler) Approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	author, err := h.services.Author.Approve(c.Request.Context(), id, accountID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// Reject handles DELETE /v1/authors/:id/reject (admin)
func (h *AuthorHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Author.Reject(c.Request.Context(), id, accountID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stories handles GET /v1/authors/:id/stories
func (h *AuthorHandler) Stories(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stories, err := h.services.Author.Stories(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories, "count": len(stories)})
}

// Audit handles GET /v1/authors/:id/audit (admin)
func (h *AuthorHandler) Audit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.services.Author.Audit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
}
