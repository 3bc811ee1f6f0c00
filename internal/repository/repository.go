package repository

import (
	"context"
	"time"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// StoryRepository defines the interface for story data operations.
// Create and Update write the story row and its tag set in one transaction.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story, genreIDs []int64) (int64, error)
	Update(ctx context.Context, story *models.Story, genreIDs []int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Story, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error)
	ListByGenres(ctx context.Context, genreIDs []int64) ([]*models.Story, error)
	BriefsByAuthor(ctx context.Context, authorID int64) ([]models.StoryBrief, error)
	BriefsByGenre(ctx context.Context, genreID int64) ([]models.StoryBrief, error)
	Summaries(ctx context.Context, ids []int64) (map[int64]models.StorySummary, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Story) error) error
}

// GenreRepository defines the interface for genre data operations.
// nameKey is the case-folded name used for uniqueness.
type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre, nameKey string) error
	Rename(ctx context.Context, id int64, name, nameKey string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Genre, error)
	List(ctx context.Context) ([]*models.Genre, error)
	NameTaken(ctx context.Context, nameKey string, excludeID int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
	Count(ctx context.Context) (int, error)
}

// AuthorRepository defines the interface for author data operations
type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	Update(ctx context.Context, author *models.Author) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	GetByAccountID(ctx context.Context, accountID string) (*models.Author, error)
	List(ctx context.Context, status models.AuthorStatus) ([]*models.Author, error)
	ListPending(ctx context.Context) ([]*models.PendingAuthor, error)
	Approve(ctx context.Context, id int64, approvedBy string, at time.Time) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// ChapterRepository defines the interface for chapter data operations
type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id int64) (*models.Chapter, error)
	ListByStory(ctx context.Context, storyID int64) ([]models.ChapterListItem, error)
	Update(ctx context.Context, chapter *models.Chapter) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// ReadingEventLog is the per (account, story) reading history
type ReadingEventLog interface {
	EventsSince(ctx context.Context, since time.Time) ([]models.ReadingEvent, error)
	Record(ctx context.Context, event *models.ReadingEvent) error
	ListByAccount(ctx context.Context, accountID string) ([]models.ReadingEvent, error)
	Delete(ctx context.Context, accountID string, storyID int64) (bool, error)
}

// RatingLog stores one score per (account, story)
type RatingLog interface {
	AveragesSince(ctx context.Context, since time.Time) ([]models.RatingAggregate, error)
	Upsert(ctx context.Context, rating *models.Rating) error
	Summary(ctx context.Context, storyID int64) (*models.RatingSummary, error)
}

// FollowRepository stores the stories and authors an account follows.
// Follow reports false when the pair already exists.
type FollowRepository interface {
	Follow(ctx context.Context, follow *models.Follow) (bool, error)
	Unfollow(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error)
	IsFollowing(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error)
	ListByAccount(ctx context.Context, kind models.FollowKind, accountID string) ([]models.Follow, error)
}

// AuditRepository records author lifecycle transitions
type AuditRepository interface {
	Add(ctx context.Context, entry *models.AuthorAuditEntry) error
	ListByAuthor(ctx context.Context, authorID int64) ([]*models.AuthorAuditEntry, error)
}

// AccountDirectory is the read-only view of platform accounts
type AccountDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	DisplayName(ctx context.Context, id string) (string, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Story   StoryRepository
	Genre   GenreRepository
	Author  AuthorRepository
	Chapter ChapterRepository
	Reading ReadingEventLog
	Rating  RatingLog
	Follow  FollowRepository
	Audit   AuditRepository
	Account AccountDirectory
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Story:   NewStoryRepo(db),
		Genre:   NewGenreRepo(db),
		Author:  NewAuthorRepo(db),
		Chapter: NewChapterRepo(db),
		Reading: NewReadingRepo(db),
		Rating:  NewRatingRepo(db),
		Follow:  NewFollowRepo(db),
		Audit:   NewAuditRepo(db),
		Account: NewAccountRepo(db),
	}
}
