package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
)

// rankingService computes leaderboards on demand from the event logs.
// Nothing is cached between requests.
type rankingService struct {
	repos *repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

func newRankingService(repos *repository.Repositories, log zerolog.Logger, now func() time.Time) *rankingService {
	return &rankingService{
		repos: repos,
		log:   log.With().Str("service", "ranking").Logger(),
		now:   now,
	}
}

// TopStories ranks stories by distinct readers inside the window, keeping the
// first limit entries. Ranked stories that no longer exist are dropped.
func (s *rankingService) TopStories(ctx context.Context, window models.RankingWindow, limit int) ([]models.TopStory, error) {
	if err := checkLimit("limit", limit); err != nil {
		return nil, err
	}
	if !window.Valid() {
		return nil, models.NewValidationError("window", "invalid window, must be one of: week, month, all")
	}

	events, err := s.repos.Reading.EventsSince(ctx, window.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("load reading events: %w", err)
	}

	ranked := CountReaders(events)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	summaries, err := s.repos.Story.Summaries(ctx, readIDs(ranked))
	if err != nil {
		return nil, fmt.Errorf("resolve stories: %w", err)
	}

	out := make([]models.TopStory, 0, len(ranked))
	for _, r := range ranked {
		summary, ok := summaries[r.StoryID]
		if !ok {
			// deleted since the event was recorded
			continue
		}
		out = append(out, models.TopStory{StorySummary: summary, ReadCount: r.ReadCount})
	}

	s.log.Debug().
		Str("window", string(window)).
		Int("events", len(events)).
		Int("results", len(out)).
		Msg("Top stories computed")

	return out, nil
}

// CountReaders groups events by story and counts distinct accounts, ordered
// by count descending with story id ascending on ties
func CountReaders(events []models.ReadingEvent) []models.StoryReadCount {
	readers := make(map[int64]map[string]struct{})
	for _, e := range events {
		set, ok := readers[e.StoryID]
		if !ok {
			set = make(map[string]struct{})
			readers[e.StoryID] = set
		}
		set[e.AccountID] = struct{}{}
	}

	out := make([]models.StoryReadCount, 0, len(readers))
	for id, set := range readers {
		out = append(out, models.StoryReadCount{StoryID: id, ReadCount: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReadCount != out[j].ReadCount {
			return out[i].ReadCount > out[j].ReadCount
		}
		return out[i].StoryID < out[j].StoryID
	})
	return out
}

func readIDs(counts []models.StoryReadCount) []int64 {
	ids := make([]int64, len(counts))
	for i, c := range counts {
		ids[i] = c.StoryID
	}
	return ids
}

// TopRated ranks stories by average score over ratings created inside the
// window: average desc, then rating count desc, then story id asc
func (s *rankingService) TopRated(ctx context.Context, window models.RankingWindow, page, pageSize int) ([]models.TopRatedStory, error) {
	if page < 1 {
		return nil, models.NewValidationError("page", "page must be at least 1")
	}
	if err := checkLimit("page_size", pageSize); err != nil {
		return nil, err
	}
	if !window.Valid() {
		return nil, models.NewValidationError("window", "invalid window, must be one of: week, month, all")
	}

	aggs, err := s.repos.Rating.AveragesSince(ctx, window.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	for i := range aggs {
		aggs[i].Average = roundScore(aggs[i].Average)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].Average != aggs[j].Average {
			return aggs[i].Average > aggs[j].Average
		}
		if aggs[i].Count != aggs[j].Count {
			return aggs[i].Count > aggs[j].Count
		}
		return aggs[i].StoryID < aggs[j].StoryID
	})

	pageAggs := Paginate(aggs, page, pageSize)
	ids := make([]int64, len(pageAggs))
	for i, a := range pageAggs {
		ids[i] = a.StoryID
	}

	summaries, err := s.repos.Story.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve stories: %w", err)
	}

	out := make([]models.TopRatedStory, 0, len(pageAggs))
	for _, a := range pageAggs {
		summary, ok := summaries[a.StoryID]
		if !ok {
			continue
		}
		out = append(out, models.TopRatedStory{
			StorySummary: summary,
			AverageScore: a.Average,
			TotalRatings: a.Count,
		})
	}
	return out, nil
}

// RecordRead upserts the caller's reading event for a story
func (s *rankingService) RecordRead(ctx context.Context, accountID string, storyID int64, chapterID *int64) error {
	if accountID == "" {
		return models.NewUnauthorized("account id is required")
	}
	if err := s.requireStory(ctx, storyID); err != nil {
		return err
	}
	if chapterID != nil {
		chapter, err := s.repos.Chapter.GetByID(ctx, *chapterID)
		if err != nil {
			return fmt.Errorf("load chapter: %w", err)
		}
		if chapter == nil || chapter.StoryID != storyID {
			return models.NewReferenceNotFound("chapter", *chapterID)
		}
	}

	return s.repos.Reading.Record(ctx, &models.ReadingEvent{
		AccountID:         accountID,
		StoryID:           storyID,
		LastReadChapterID: chapterID,
		UpdatedAt:         s.now(),
	})
}

// History lists the stories an account has read, most recent first.
// Stories deleted since the read are left out.
func (s *rankingService) History(ctx context.Context, accountID string) ([]models.ReadingHistoryEntry, error) {
	if accountID == "" {
		return nil, models.NewUnauthorized("account id is required")
	}

	events, err := s.repos.Reading.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load reading history: %w", err)
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.StoryID)
	}
	summaries, err := s.repos.Story.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve stories: %w", err)
	}

	out := make([]models.ReadingHistoryEntry, 0, len(events))
	for _, e := range events {
		summary, ok := summaries[e.StoryID]
		if !ok {
			continue
		}
		out = append(out, models.ReadingHistoryEntry{
			StoryID:           e.StoryID,
			Title:             summary.Title,
			LastReadChapterID: e.LastReadChapterID,
			UpdatedAt:         e.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteRead removes a story from the caller's reading history. The story
// stops counting toward the caller's share of the leaderboards.
func (s *rankingService) DeleteRead(ctx context.Context, accountID string, storyID int64) error {
	if accountID == "" {
		return models.NewUnauthorized("account id is required")
	}

	found, err := s.repos.Reading.Delete(ctx, accountID, storyID)
	if err != nil {
		return fmt.Errorf("delete reading event: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("reading history entry", storyID)
	}

	s.log.Info().Str("account_id", accountID).Int64("story_id", storyID).Msg("Reading history entry removed")
	return nil
}

// Rate stores the caller's 1-5 score and returns the story's new summary
func (s *rankingService) Rate(ctx context.Context, accountID string, storyID int64, score int) (*models.RatingSummary, error) {
	if accountID == "" {
		return nil, models.NewUnauthorized("account id is required")
	}
	if score < models.MinScore || score > models.MaxScore {
		return nil, models.NewValidationError("score", "score must be between 1 and 5")
	}
	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}

	err := s.repos.Rating.Upsert(ctx, &models.Rating{
		AccountID: accountID,
		StoryID:   storyID,
		Score:     score,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	return s.summary(ctx, storyID)
}

// RatingSummary returns a story's average score and rating count
func (s *rankingService) RatingSummary(ctx context.Context, storyID int64) (*models.RatingSummary, error) {
	if err := s.requireStory(ctx, storyID); err != nil {
		return nil, err
	}
	return s.summary(ctx, storyID)
}

func (s *rankingService) summary(ctx context.Context, storyID int64) (*models.RatingSummary, error) {
	sum, err := s.repos.Rating.Summary(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("load rating summary: %w", err)
	}
	sum.AverageScore = roundScore(sum.AverageScore)
	return sum, nil
}

func (s *rankingService) requireStory(ctx context.Context, id int64) error {
	ok, err := s.repos.Story.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check story: %w", err)
	}
	if !ok {
		return models.NewReferenceNotFound("story", id)
	}
	return nil
}

func checkLimit(field string, n int) error {
	if n < models.MinRankingLimit || n > models.MaxRankingLimit {
		return models.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d",
			field, models.MinRankingLimit, models.MaxRankingLimit))
	}
	return nil
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
