package models

import "time"

// Chapter is a single installment of a story
type Chapter struct {
	ID        int64     `json:"chapter_id" db:"id"`
	StoryID   int64     `json:"story_id" db:"story_id"`
	Number    int       `json:"chapter_number" db:"chapter_number"`
	Title     string    `json:"title,omitempty" db:"title"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ChapterListItem is a chapter without its content
type ChapterListItem struct {
	ID        int64     `json:"chapter_id"`
	Number    int       `json:"chapter_number"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChapterCreateRequest is the payload for appending a chapter
type ChapterCreateRequest struct {
	Number  int    `json:"chapter_number" validate:"required,min=1"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required"`
}

// ChapterUpdateRequest is the payload for replacing a chapter's number, title and content
type ChapterUpdateRequest struct {
	Number  int    `json:"chapter_number" validate:"required,min=1"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content" validate:"required"`
}
