package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
	"github.com/story-catalog-api/internal/tagset"
	"github.com/story-catalog-api/internal/validation"
)

// storyService is the concrete implementation of StoryService
type storyService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newStoryService(repos *repository.Repositories, log zerolog.Logger) *storyService {
	return &storyService{
		repos: repos,
		log:   log.With().Str("service", "story").Logger(),
	}
}

// Create adds a story on behalf of an explicit author
func (s *storyService) Create(ctx context.Context, req *models.StoryCreateRequest) (*models.Story, error) {
	return s.create(ctx, validation.FromCreateRequest(req))
}

// Update replaces a story's fields and tag set
func (s *storyService) Update(ctx context.Context, id int64, req *models.StoryUpdateRequest) (*models.Story, error) {
	return s.update(ctx, id, validation.FromUpdateRequest(req))
}

// CreateAsSelf publishes a story as the approved author linked to accountID
func (s *storyService) CreateAsSelf(ctx context.Context, accountID string, req *models.StoryCreateRequest) (*models.Story, error) {
	author, err := s.publisher(ctx, accountID)
	if err != nil {
		return nil, err
	}

	in := validation.FromCreateRequest(req)
	in.AuthorID = author.ID
	return s.create(ctx, in)
}

// UpdateAsSelf updates a story owned by the approved author linked to accountID
func (s *storyService) UpdateAsSelf(ctx context.Context, accountID string, id int64, req *models.StoryUpdateRequest) (*models.Story, error) {
	author, err := s.publisher(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, author, id); err != nil {
		return nil, err
	}

	in := validation.FromUpdateRequest(req)
	in.AuthorID = author.ID
	return s.update(ctx, id, in)
}

// checkOwner fails unless the story exists and belongs to author
func (s *storyService) checkOwner(ctx context.Context, author *models.Author, storyID int64) error {
	existing, err := s.repos.Story.GetByID(ctx, storyID)
	if err != nil {
		return fmt.Errorf("load story: %w", err)
	}
	if existing == nil {
		return models.NewReferenceNotFound("story", storyID)
	}
	if existing.AuthorID != author.ID {
		return models.NewForbidden("story belongs to another author")
	}
	return nil
}

// publisher resolves the author allowed to publish for an account
func (s *storyService) publisher(ctx context.Context, accountID string) (*models.Author, error) {
	if accountID == "" {
		return nil, models.NewUnauthorized("account id is required")
	}

	author, err := s.repos.Author.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}
	if !author.CanPublish() {
		return nil, models.NewForbidden("author is not approved to publish")
	}
	return author, nil
}

func (s *storyService) create(ctx context.Context, in validation.StoryInput) (*models.Story, error) {
	tags, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	story := storyFromInput(in)
	if _, err := s.repos.Story.Create(ctx, story, tags); err != nil {
		s.log.Error().Err(err).Int64("author_id", in.AuthorID).Msg("Failed to create story")
		return nil, err
	}

	s.log.Info().
		Int64("story_id", story.ID).
		Int64("author_id", story.AuthorID).
		Int("genres", len(tags)).
		Msg("Story created")

	return story, nil
}

func (s *storyService) update(ctx context.Context, id int64, in validation.StoryInput) (*models.Story, error) {
	tags, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	story := storyFromInput(in)
	story.ID = id
	found, err := s.repos.Story.Update(ctx, story, tags)
	if err != nil {
		s.log.Error().Err(err).Int64("story_id", id).Msg("Failed to update story")
		return nil, err
	}
	if !found {
		return nil, models.NewReferenceNotFound("story", id)
	}

	s.log.Info().Int64("story_id", id).Int("genres", len(tags)).Msg("Story updated")
	return story, nil
}

// validate runs field checks, then referential checks, and returns the
// canonical tag set to persist
func (s *storyService) validate(ctx context.Context, in validation.StoryInput) ([]int64, error) {
	if errs := validation.ValidateStory(in); len(errs) > 0 {
		return nil, models.NewValidationErrors(errs)
	}

	ok, err := s.repos.Author.Exists(ctx, in.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("check author: %w", err)
	}
	if !ok {
		return nil, models.NewReferenceNotFound("author", in.AuthorID)
	}

	// the canonical set contains the primary, so one lookup covers both
	tags := tagset.Canonical(in.PrimaryGenreID, in.GenreIDs)
	missing, err := s.repos.Genre.MissingIDs(ctx, tags)
	if err != nil {
		return nil, fmt.Errorf("check genres: %w", err)
	}
	if len(missing) > 0 {
		return nil, models.NewReferenceNotFound("genre", missing[0])
	}

	return tags, nil
}

func storyFromInput(in validation.StoryInput) *models.Story {
	return &models.Story{
		Title:          in.Title,
		Description:    in.Description,
		CoverImage:     in.CoverImage,
		BannerImage:    in.BannerImage,
		AuthorID:       in.AuthorID,
		PrimaryGenreID: in.PrimaryGenreID,
		Status:         in.Status,
	}
}

// Delete removes a story with its chapters, tags and engagement records
func (s *storyService) Delete(ctx context.Context, id int64) error {
	found, err := s.repos.Story.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("story", id)
	}

	s.log.Info().Int64("story_id", id).Msg("Story deleted")
	return nil
}

// Get returns a story with its tag set and chapter list
func (s *storyService) Get(ctx context.Context, id int64) (*models.Story, error) {
	story, err := s.repos.Story.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	if story == nil {
		return nil, models.NewReferenceNotFound("story", id)
	}
	return story, nil
}

// List returns stories matching the filter; a genre filter matches primary or tag
func (s *storyService) List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.NewValidationError("status", "invalid status, must be one of: ongoing, completed")
	}
	return s.repos.Story.List(ctx, filter)
}

// ListByGenres returns stories tagged with any of the requested genres
func (s *storyService) ListByGenres(ctx context.Context, genreIDs []int64) ([]*models.Story, error) {
	ids := tagset.Canonical(nil, genreIDs)
	if len(ids) == 0 {
		return []*models.Story{}, nil
	}
	return s.repos.Story.ListByGenres(ctx, ids)
}

// AddChapter appends a chapter to a story
func (s *storyService) AddChapter(ctx context.Context, storyID int64, req *models.ChapterCreateRequest) (*models.Chapter, error) {
	if err := checkChapter(req.Number, req.Content); err != nil {
		return nil, err
	}
	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}

	chapter := &models.Chapter{
		StoryID: storyID,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.repos.Chapter.Create(ctx, chapter); err != nil {
		return nil, err
	}

	s.log.Info().Int64("story_id", storyID).Int("chapter_number", chapter.Number).Msg("Chapter added")
	return chapter, nil
}

// AddChapterAsSelf appends a chapter to a story owned by the approved author
// linked to accountID
func (s *storyService) AddChapterAsSelf(ctx context.Context, accountID string, storyID int64, req *models.ChapterCreateRequest) (*models.Chapter, error) {
	author, err := s.publisher(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, author, storyID); err != nil {
		return nil, err
	}
	return s.AddChapter(ctx, storyID, req)
}

// Chapter returns a single chapter with its content
func (s *storyService) Chapter(ctx context.Context, id int64) (*models.Chapter, error) {
	chapter, err := s.repos.Chapter.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	if chapter == nil {
		return nil, models.NewReferenceNotFound("chapter", id)
	}
	return chapter, nil
}

// UpdateChapter replaces a chapter's number, title and content
func (s *storyService) UpdateChapter(ctx context.Context, id int64, req *models.ChapterUpdateRequest) (*models.Chapter, error) {
	if err := checkChapter(req.Number, req.Content); err != nil {
		return nil, err
	}

	chapter := &models.Chapter{
		ID:      id,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
	}
	found, err := s.repos.Chapter.Update(ctx, chapter)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewReferenceNotFound("chapter", id)
	}

	s.log.Info().Int64("chapter_id", id).Int64("story_id", chapter.StoryID).Msg("Chapter updated")
	return chapter, nil
}

// UpdateChapterAsSelf updates a chapter of a story owned by the approved
// author linked to accountID
func (s *storyService) UpdateChapterAsSelf(ctx context.Context, accountID string, id int64, req *models.ChapterUpdateRequest) (*models.Chapter, error) {
	author, err := s.publisher(ctx, accountID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Chapter(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, author, existing.StoryID); err != nil {
		return nil, err
	}
	return s.UpdateChapter(ctx, id, req)
}

// DeleteChapter removes a chapter; reading events pointing at it keep the
// story and lose the chapter reference
func (s *storyService) DeleteChapter(ctx context.Context, id int64) error {
	found, err := s.repos.Chapter.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("chapter", id)
	}

	s.log.Info().Int64("chapter_id", id).Msg("Chapter deleted")
	return nil
}

func checkChapter(number int, content string) error {
	if number < 1 {
		return models.NewValidationError("chapter_number", "chapter_number must be at least 1")
	}
	if content == "" {
		return models.NewValidationError("content", "content is required")
	}
	return nil
}

// Chapters lists a story's chapters in order
func (s *storyService) Chapters(ctx context.Context, storyID int64) ([]models.ChapterListItem, error) {
	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	return s.repos.Chapter.ListByStory(ctx, storyID)
}

func (s *storyService) requireStory(ctx context.Context, id int64) error {
	ok, err := s.repos.Story.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check story: %w", err)
	}
	if !ok {
		return models.NewReferenceNotFound("story", id)
	}
	return nil
}
