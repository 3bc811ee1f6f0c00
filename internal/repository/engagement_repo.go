package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// readingRepo is the Postgres-backed ReadingEventLog
type readingRepo struct {
	db *database.DB
}

// NewReadingRepo creates a new reading event log
func NewReadingRepo(db *database.DB) ReadingEventLog {
	return &readingRepo{db: db}
}

// EventsSince returns reading events updated at or after since.
// A zero since returns the whole log.
func (r *readingRepo) EventsSince(ctx context.Context, since time.Time) ([]models.ReadingEvent, error) {
	query := "SELECT account_id, story_id, last_read_chapter_id, updated_at FROM reading_events"
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE updated_at >= $1"
		args = append(args, since)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.ReadingEvent{}
	for rows.Next() {
		var e models.ReadingEvent
		var chapterID sql.NullInt64
		if err := rows.Scan(&e.AccountID, &e.StoryID, &chapterID, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.LastReadChapterID = int64PtrFrom(chapterID)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Record upserts the (account, story) row and advances its timestamp.
// The last-read chapter is kept when the new event carries none.
func (r *readingRepo) Record(ctx context.Context, event *models.ReadingEvent) error {
	query := `
		INSERT INTO reading_events (account_id, story_id, last_read_chapter_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, story_id) DO UPDATE
		SET last_read_chapter_id = COALESCE(EXCLUDED.last_read_chapter_id, reading_events.last_read_chapter_id),
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		event.AccountID, event.StoryID, nullInt64(event.LastReadChapterID), event.UpdatedAt,
	)
	return mapPQError(err)
}

// ListByAccount returns one account's reading events, most recent first
func (r *readingRepo) ListByAccount(ctx context.Context, accountID string) ([]models.ReadingEvent, error) {
	query := `
		SELECT account_id, story_id, last_read_chapter_id, updated_at
		FROM reading_events WHERE account_id = $1
		ORDER BY updated_at DESC, story_id
	`
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.ReadingEvent{}
	for rows.Next() {
		var e models.ReadingEvent
		var chapterID sql.NullInt64
		if err := rows.Scan(&e.AccountID, &e.StoryID, &chapterID, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.LastReadChapterID = int64PtrFrom(chapterID)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Delete removes an account's reading event for a story
func (r *readingRepo) Delete(ctx context.Context, accountID string, storyID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM reading_events WHERE account_id = $1 AND story_id = $2", accountID, storyID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ratingRepo is the Postgres-backed RatingLog
type ratingRepo struct {
	db *database.DB
}

// NewRatingRepo creates a new rating log
func NewRatingRepo(db *database.DB) RatingLog {
	return &ratingRepo{db: db}
}

// AveragesSince returns the raw average and count per story over ratings
// created at or after since. A zero since covers all ratings.
func (r *ratingRepo) AveragesSince(ctx context.Context, since time.Time) ([]models.RatingAggregate, error) {
	query := "SELECT story_id, AVG(score)::float8, COUNT(*) FROM ratings"
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE created_at >= $1"
		args = append(args, since)
	}
	query += " GROUP BY story_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggs := []models.RatingAggregate{}
	for rows.Next() {
		var a models.RatingAggregate
		if err := rows.Scan(&a.StoryID, &a.Average, &a.Count); err != nil {
			return nil, err
		}
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// Upsert stores the account's score for a story, replacing any earlier one
func (r *ratingRepo) Upsert(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (account_id, story_id, score, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id, story_id) DO UPDATE
		SET score = EXCLUDED.score, created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, query, rating.AccountID, rating.StoryID, rating.Score, rating.CreatedAt)
	return mapPQError(err)
}

// Summary returns the raw average and count for one story
func (r *ratingRepo) Summary(ctx context.Context, storyID int64) (*models.RatingSummary, error) {
	s := &models.RatingSummary{StoryID: storyID}
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(score), 0)::float8, COUNT(*) FROM ratings WHERE story_id = $1",
		storyID,
	).Scan(&s.AverageScore, &s.TotalRatings)
	if err != nil {
		return nil, err
	}
	return s, nil
}
