package models

import (
	"fmt"
	"strings"
	"time"
)

// StoryStatus is the publication state of a story
type StoryStatus string

const (
	StoryStatusOngoing   StoryStatus = "ongoing"
	StoryStatusCompleted StoryStatus = "completed"
)

// ParseStoryStatus maps external input onto the closed status set.
// An empty value defaults to ongoing.
func ParseStoryStatus(s string) (StoryStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ongoing":
		return StoryStatusOngoing, nil
	case "completed":
		return StoryStatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status %q, must be one of: ongoing, completed", s)
	}
}

func (s StoryStatus) Valid() bool {
	return s == StoryStatusOngoing || s == StoryStatusCompleted
}

func (s StoryStatus) String() string {
	return string(s)
}

// Story represents a serialized work in the catalog
type Story struct {
	ID             int64             `json:"story_id" db:"id"`
	Title          string            `json:"title" db:"title"`
	Description    string            `json:"description,omitempty" db:"description"`
	CoverImage     string            `json:"cover_image,omitempty" db:"cover_image"`
	BannerImage    string            `json:"banner_image,omitempty" db:"banner_image"`
	AuthorID       int64             `json:"author_id" db:"author_id"`
	PrimaryGenreID *int64            `json:"primary_genre_id" db:"primary_genre_id"`
	Status         StoryStatus       `json:"status" db:"status"`
	GenreIDs       []int64           `json:"genre_ids" db:"-"`
	Chapters       []ChapterListItem `json:"chapters,omitempty" db:"-"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// StoryFilter narrows a story listing. Zero values mean "no filter".
type StoryFilter struct {
	AuthorID *int64
	GenreID  *int64
	Query    string
	Status   StoryStatus
}

// StorySummary is the display metadata attached to ranked results
type StorySummary struct {
	StoryID       int64       `json:"story_id"`
	Title         string      `json:"title"`
	CoverImage    string      `json:"cover_image,omitempty"`
	AuthorName    string      `json:"author_name"`
	TotalChapters int         `json:"total_chapters"`
	Status        StoryStatus `json:"status"`
}

// StoryCreateRequest is the payload for creating a story
type StoryCreateRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	AuthorID       int64   `json:"author_id"`
	Description    string  `json:"description"`
	CoverImage     string  `json:"cover_image" validate:"max=500"`
	BannerImage    string  `json:"banner_image" validate:"max=500"`
	PrimaryGenreID *int64  `json:"primary_genre_id"`
	Status         string  `json:"status"`
	GenreIDs       []int64 `json:"genre_ids" validate:"max=50"`
}

// StoryUpdateRequest is the payload for replacing a story's fields and tags
type StoryUpdateRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	AuthorID       int64   `json:"author_id"`
	Description    string  `json:"description"`
	CoverImage     string  `json:"cover_image" validate:"max=500"`
	BannerImage    string  `json:"banner_image" validate:"max=500"`
	PrimaryGenreID *int64  `json:"primary_genre_id"`
	Status         string  `json:"status"`
	GenreIDs       []int64 `json:"genre_ids" validate:"max=50"`
}
