package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// chapterRepo is the concrete implementation of ChapterRepository
type chapterRepo struct {
	db *database.DB
}

// NewChapterRepo creates a new chapter repository
func NewChapterRepo(db *database.DB) ChapterRepository {
	return &chapterRepo{db: db}
}

// Create appends a chapter and bumps the owning story's updated_at
func (r *chapterRepo) Create(ctx context.Context, chapter *models.Chapter) error {
	now := time.Now().UTC()

	err := r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chapters (story_id, chapter_number, title, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			chapter.StoryID, chapter.Number, nullString(chapter.Title), chapter.Content, now,
		).Scan(&chapter.ID)
		if err != nil {
			return mapPQError(err)
		}

		_, err = tx.ExecContext(ctx, "UPDATE stories SET updated_at = $2 WHERE id = $1", chapter.StoryID, now)
		return err
	})
	if err != nil {
		return err
	}

	chapter.CreatedAt = now
	chapter.UpdatedAt = now
	return nil
}

// GetByID retrieves a chapter with its content
func (r *chapterRepo) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	query := `
		SELECT id, story_id, chapter_number, COALESCE(title, ''), content, created_at, updated_at
		FROM chapters WHERE id = $1
	`
	var c models.Chapter
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.StoryID, &c.Number, &c.Title, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByStory lists a story's chapters in chapter-number order
func (r *chapterRepo) ListByStory(ctx context.Context, storyID int64) ([]models.ChapterListItem, error) {
	return listChapters(ctx, r.db, storyID)
}

// Update replaces a chapter's number, title and content and bumps the
// owning story's updated_at
func (r *chapterRepo) Update(ctx context.Context, chapter *models.Chapter) (bool, error) {
	now := time.Now().UTC()
	var found bool

	err := r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		query := `
			UPDATE chapters SET chapter_number = $2, title = $3, content = $4, updated_at = $5
			WHERE id = $1
			RETURNING story_id, created_at
		`
		err := tx.QueryRowContext(ctx, query,
			chapter.ID, chapter.Number, nullString(chapter.Title), chapter.Content, now,
		).Scan(&chapter.StoryID, &chapter.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return mapPQError(err)
		}
		found = true

		_, err = tx.ExecContext(ctx, "UPDATE stories SET updated_at = $2 WHERE id = $1", chapter.StoryID, now)
		return err
	})
	if err != nil || !found {
		return false, err
	}

	chapter.UpdatedAt = now
	return true, nil
}

// Delete removes a chapter
func (r *chapterRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chapters WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func listChapters(ctx context.Context, db *database.DB, storyID int64) ([]models.ChapterListItem, error) {
	query := `
		SELECT id, chapter_number, COALESCE(title, ''), created_at, updated_at
		FROM chapters WHERE story_id = $1
		ORDER BY chapter_number
	`
	rows, err := db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chapters := []models.ChapterListItem{}
	for rows.Next() {
		var c models.ChapterListItem
		if err := rows.Scan(&c.ID, &c.Number, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}
