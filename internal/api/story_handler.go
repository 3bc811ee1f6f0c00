package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/config"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/service"
	"github.com/story-catalog-api/internal/validation"
)

// StoryHandler handles story, chapter and engagement endpoints
type StoryHandler struct {
	services  *service.Services
	cfg       *config.Config
	validator *validation.Validator
	log       zerolog.Logger
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(services *service.Services, cfg *config.Config, v *validation.Validator, log zerolog.Logger) *StoryHandler {
	return &StoryHandler{
		services:  services,
		cfg:       cfg,
		validator: v,
		log:       log.With().Str("handler", "story").Logger(),
	}
}

// List handles GET /v1/stories?author_id=&genre_id=&q=&status=
func (h *StoryHandler) List(c *gin.Context) {
	var filter models.StoryFilter

	if raw := c.Query("author_id"); raw != "" {
		id, ok := queryInt(c, "author_id", 0)
		if !ok {
			return
		}
		v := int64(id)
		filter.AuthorID = &v
	}
	if raw := c.Query("genre_id"); raw != "" {
		id, ok := queryInt(c, "genre_id", 0)
		if !ok {
			return
		}
		v := int64(id)
		filter.GenreID = &v
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStoryStatus(raw)
		if err != nil {
			badRequest(c, "status", err.Error())
			return
		}
		filter.Status = status
	}
	filter.Query = c.Query("q")

	stories, err := h.services.Story.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories, "count": len(stories)})
}

// ListByGenres handles GET /v1/stories/by-genres?genre_ids=5,9
func (h *StoryHandler) ListByGenres(c *gin.Context) {
	ids, ok := queryIDs(c, "genre_ids")
	if !ok {
		return
	}
	stories, err := h.services.Story.ListByGenres(c.Request.Context(), ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stories, "count": len(stories)})
}

// Get handles GET /v1/stories/:id
func (h *StoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	story, err := h.services.Story.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// Create handles POST /v1/stories (admin, explicit author_id)
func (h *StoryHandler) Create(c *gin.Context) {
	var req models.StoryCreateRequest
	if !h.bind(c, &req) {
		return
	}
	story, err := h.services.Story.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

// CreateMine handles POST /v1/stories/mine; the caller must be an approved author
func (h *StoryHandler) CreateMine(c *gin.Context) {
	var req models.StoryCreateRequest
	if !h.bind(c, &req) {
		return
	}
	story, err := h.services.Story.CreateAsSelf(c.Request.Context(), accountID(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

// Update handles PUT /v1/stories/:id. Admins may edit any story, authors only their own.
func (h *StoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.StoryUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	var (
		story *models.Story
		err   error
	)
	if isAdmin(c) {
		story, err = h.services.Story.Update(c.Request.Context(), id, &req)
	} else {
		story, err = h.services.Story.UpdateAsSelf(c.Request.Context(), accountID(c), id, &req)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// Delete handles DELETE /v1/stories/:id
func (h *StoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Story.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddChapter handles POST /v1/stories/:id/chapters
func (h *StoryHandler) AddChapter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ChapterCreateRequest
	if !h.bind(c, &req) {
		return
	}

	var (
		chapter *models.Chapter
		err     error
	)
	if isAdmin(c) {
		chapter, err = h.services.Story.AddChapter(c.Request.Context(), id, &req)
	} else {
		chapter, err = h.services.Story.AddChapterAsSelf(c.Request.Context(), accountID(c), id, &req)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, chapter)
}

// Chapter handles GET /v1/chapters/:id
func (h *StoryHandler) Chapter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	chapter, err := h.services.Story.Chapter(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// UpdateChapter handles PUT /v1/chapters/:id
func (h *StoryHandler) UpdateChapter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ChapterUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	var (
		chapter *models.Chapter
		err     error
	)
	if isAdmin(c) {
		chapter, err = h.services.Story.UpdateChapter(c.Request.Context(), id, &req)
	} else {
		chapter, err = h.services.Story.UpdateChapterAsSelf(c.Request.Context(), accountID(c), id, &req)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, chapter)
}

// DeleteChapter handles DELETE /v1/chapters/:id
func (h *StoryHandler) DeleteChapter(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.services.Story.DeleteChapter(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Chapters handles GET /v1/stories/:id/chapters
func (h *StoryHandler) Chapters(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	chapters, err := h.services.Story.Chapters(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": chapters, "count": len(chapters)})
}

// Top handles GET /v1/stories/top?window=&limit=
func (h *StoryHandler) Top(c *gin.Context) {
	window, err := models.ParseRankingWindow(c.Query("window"))
	if err != nil {
		badRequest(c, "window", err.Error())
		return
	}
	limit, ok := queryInt(c, "limit", h.cfg.Ranking.DefaultLimit)
	if !ok {
		return
	}

	top, err := h.services.Ranking.TopStories(c.Request.Context(), window, limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": window, "data": top})
}

// TopRated handles GET /v1/stories/top-rated?window=&page=&page_size=
func (h *StoryHandler) TopRated(c *gin.Context) {
	window, err := models.ParseRankingWindow(c.Query("window"))
	if err != nil {
		badRequest(c, "window", err.Error())
		return
	}
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "page_size", h.cfg.Ranking.DefaultPageSize)
	if !ok {
		return
	}

	top, err := h.services.Ranking.TopRated(c.Request.Context(), window, page, pageSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window":    window,
		"page":      page,
		"page_size": pageSize,
		"data":      top,
	})
}

// RecordRead handles POST /v1/stories/:id/reads
func (h *StoryHandler) RecordRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.ReadRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "body", "invalid request body")
			return
		}
	}
	if err := h.services.Ranking.RecordRead(c.Request.Context(), accountID(c), id, req.LastReadChapterID); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Rate handles POST /v1/stories/:id/ratings
func (h *StoryHandler) Rate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.RatingRequest
	if !h.bind(c, &req) {
		return
	}
	summary, err := h.services.Ranking.Rate(c.Request.Context(), accountID(c), id, req.Score)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RatingSummary handles GET /v1/stories/:id/ratings/summary
func (h *StoryHandler) RatingSummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.services.Ranking.RatingSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// bind decodes the JSON body and checks struct tags
func (h *StoryHandler) bind(c *gin.Context, req interface{}) bool {
	return bindJSON(c, h.validator, h.log, req)
}

func bindJSON(c *gin.Context, v *validation.Validator, log zerolog.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "body", "invalid request body")
		return false
	}
	if err := v.Struct(req); err != nil {
		respondError(c, log, err)
		return false
	}
	return true
}
