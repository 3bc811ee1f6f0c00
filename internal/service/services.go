package service

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
)

// StoryService is the catalog facade for stories and their chapters
type StoryService interface {
	Create(ctx context.Context, req *models.StoryCreateRequest) (*models.Story, error)
	Update(ctx context.Context, id int64, req *models.StoryUpdateRequest) (*models.Story, error)
	CreateAsSelf(ctx context.Context, accountID string, req *models.StoryCreateRequest) (*models.Story, error)
	UpdateAsSelf(ctx context.Context, accountID string, id int64, req *models.StoryUpdateRequest) (*models.Story, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Story, error)
	List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error)
	ListByGenres(ctx context.Context, genreIDs []int64) ([]*models.Story, error)
	AddChapter(ctx context.Context, storyID int64, req *models.ChapterCreateRequest) (*models.Chapter, error)
	AddChapterAsSelf(ctx context.Context, accountID string, storyID int64, req *models.ChapterCreateRequest) (*models.Chapter, error)
	Chapters(ctx context.Context, storyID int64) ([]models.ChapterListItem, error)
	Chapter(ctx context.Context, id int64) (*models.Chapter, error)
	UpdateChapter(ctx context.Context, id int64, req *models.ChapterUpdateRequest) (*models.Chapter, error)
	UpdateChapterAsSelf(ctx context.Context, accountID string, id int64, req *models.ChapterUpdateRequest) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id int64) error
}

// GenreService defines genre management operations
type GenreService interface {
	Create(ctx context.Context, req *models.GenreRequest) (*models.Genre, error)
	Rename(ctx context.Context, id int64, req *models.GenreRequest) (*models.Genre, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Genre, error)
	List(ctx context.Context) ([]*models.Genre, error)
	Stories(ctx context.Context, id int64) ([]models.StoryBrief, error)
}

// AuthorService is the author approval workflow plus administrative author management
type AuthorService interface {
	Submit(ctx context.Context, accountID string, req *models.AuthorRequest) (*models.Author, error)
	Approve(ctx context.Context, authorID int64, adminID string) (*models.Author, error)
	Reject(ctx context.Context, authorID int64, adminID string) error
	Status(ctx context.Context, accountID string) (*models.Author, error)
	Pending(ctx context.Context) ([]*models.PendingAuthor, error)

	Create(ctx context.Context, adminID string, req *models.AuthorCreateRequest) (*models.Author, error)
	Update(ctx context.Context, id int64, req *models.AuthorCreateRequest) (*models.Author, error)
	Delete(ctx context.Context, id int64, adminID string) error
	Get(ctx context.Context, id int64) (*models.Author, error)
	List(ctx context.Context) ([]*models.Author, error)
	ListApproved(ctx context.Context) ([]*models.Author, error)
	Stories(ctx context.Context, id int64) ([]models.StoryBrief, error)
	Audit(ctx context.Context, id int64) ([]*models.AuthorAuditEntry, error)
}

// RankingService derives leaderboards from reading and rating history
type RankingService interface {
	TopStories(ctx context.Context, window models.RankingWindow, limit int) ([]models.TopStory, error)
	TopRated(ctx context.Context, window models.RankingWindow, page, pageSize int) ([]models.TopRatedStory, error)
	RecordRead(ctx context.Context, accountID string, storyID int64, chapterID *int64) error
	Rate(ctx context.Context, accountID string, storyID int64, score int) (*models.RatingSummary, error)
	RatingSummary(ctx context.Context, storyID int64) (*models.RatingSummary, error)
	History(ctx context.Context, accountID string) ([]models.ReadingHistoryEntry, error)
	DeleteRead(ctx context.Context, accountID string, storyID int64) error
}

// FollowService manages the stories and authors an account follows
type FollowService interface {
	Follow(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) (*models.Follow, error)
	Unfollow(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) error
	IsFollowing(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) (*models.FollowStatus, error)
	Following(ctx context.Context, accountID string, kind models.FollowKind, page, pageSize int) ([]models.Follow, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamStories(ctx context.Context, w http.ResponseWriter, format string) error
	GetCount(ctx context.Context, resource string) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Story   StoryService
	Genre   GenreService
	Author  AuthorService
	Ranking RankingService
	Follow  FollowService
	Export  ExportService
}

// Option customizes NewServices
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock used for timestamps and ranking windows
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, log zerolog.Logger, opts ...Option) *Services {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}

	return &Services{
		Story:   newStoryService(repos, log),
		Genre:   newGenreService(repos, log),
		Author:  newAuthorService(repos, log, o.now),
		Ranking: newRankingService(repos, log, o.now),
		Follow:  newFollowService(repos, log, o.now),
		Export:  newExportService(repos, log),
	}
}
