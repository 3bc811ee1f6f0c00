package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/tagset"
)

// storyRepo is the concrete implementation of StoryRepository
type storyRepo struct {
	db *database.DB
}

// NewStoryRepo creates a new story repository
func NewStoryRepo(db *database.DB) StoryRepository {
	return &storyRepo{db: db}
}

const storyColumns = `
	s.id, s.title, COALESCE(s.description, ''), COALESCE(s.cover_image, ''), COALESCE(s.banner_image, ''),
	s.author_id, s.primary_genre_id, s.status, s.created_at, s.updated_at,
	ARRAY(SELECT sg.genre_id FROM story_genres sg WHERE sg.story_id = s.id ORDER BY sg.genre_id)
`

// matches a story whose primary genre or tag set contains the bound genre parameter
const genreMatch = `(s.primary_genre_id = %[1]s OR EXISTS (
	SELECT 1 FROM story_genres sg WHERE sg.story_id = s.id AND sg.genre_id = %[1]s))`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStory(row rowScanner) (*models.Story, error) {
	var story models.Story
	var primary sql.NullInt64
	var genreIDs []int64

	err := row.Scan(
		&story.ID, &story.Title, &story.Description, &story.CoverImage, &story.BannerImage,
		&story.AuthorID, &primary, &story.Status, &story.CreatedAt, &story.UpdatedAt,
		pq.Array(&genreIDs),
	)
	if err != nil {
		return nil, err
	}

	story.PrimaryGenreID = int64PtrFrom(primary)
	if genreIDs == nil {
		genreIDs = []int64{}
	}
	story.GenreIDs = genreIDs
	return &story, nil
}

// replaceTags swaps the whole tag set of a story. It must run inside the
// transaction that writes the story row.
func replaceTags(ctx context.Context, tx *sql.Tx, storyID int64, genreIDs []int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM story_genres WHERE story_id = $1", storyID); err != nil {
		return fmt.Errorf("clear story genres: %w", err)
	}
	if len(genreIDs) == 0 {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO story_genres (story_id, genre_id)
		SELECT $1, g FROM unnest($2::bigint[]) AS g
	`, storyID, pq.Array(genreIDs))
	return mapPQError(err)
}

// errPrimaryNotTagged rejects a write whose primary genre is missing from its tag set
func errPrimaryNotTagged() error {
	return models.NewValidationError("genre_ids", "primary genre must be one of the story's genres")
}

// Create inserts the story row and its tag set atomically
func (r *storyRepo) Create(ctx context.Context, story *models.Story, genreIDs []int64) (int64, error) {
	if !tagset.Consistent(story.PrimaryGenreID, genreIDs) {
		return 0, errPrimaryNotTagged()
	}
	now := time.Now().UTC()
	var id int64

	err := r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		query := `
			INSERT INTO stories (title, description, cover_image, banner_image, author_id, primary_genre_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING id
		`
		err := tx.QueryRowContext(ctx, query,
			story.Title, nullString(story.Description), nullString(story.CoverImage), nullString(story.BannerImage),
			story.AuthorID, nullInt64(story.PrimaryGenreID), story.Status, now,
		).Scan(&id)
		if err != nil {
			return mapPQError(err)
		}
		return replaceTags(ctx, tx, id, genreIDs)
	})
	if err != nil {
		return 0, err
	}

	story.ID = id
	story.CreatedAt = now
	story.UpdatedAt = now
	story.GenreIDs = genreIDs
	return id, nil
}

// Update rewrites the story row and replaces its tag set atomically.
// The row is locked first so concurrent writers on one story serialize.
func (r *storyRepo) Update(ctx context.Context, story *models.Story, genreIDs []int64) (bool, error) {
	if !tagset.Consistent(story.PrimaryGenreID, genreIDs) {
		return false, errPrimaryNotTagged()
	}
	now := time.Now().UTC()
	var createdAt time.Time
	found := false

	err := r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			"SELECT created_at FROM stories WHERE id = $1 FOR UPDATE", story.ID,
		).Scan(&createdAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		query := `
			UPDATE stories
			SET title = $2, description = $3, cover_image = $4, banner_image = $5,
			    author_id = $6, primary_genre_id = $7, status = $8, updated_at = $9
			WHERE id = $1
		`
		_, err = tx.ExecContext(ctx, query,
			story.ID, story.Title, nullString(story.Description), nullString(story.CoverImage),
			nullString(story.BannerImage), story.AuthorID, nullInt64(story.PrimaryGenreID), story.Status, now,
		)
		if err != nil {
			return mapPQError(err)
		}
		return replaceTags(ctx, tx, story.ID, genreIDs)
	})
	if err != nil || !found {
		return false, err
	}

	story.CreatedAt = createdAt
	story.UpdatedAt = now
	story.GenreIDs = genreIDs
	return true, nil
}

// Delete removes a story; chapters, tags and engagement rows cascade
func (r *storyRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM stories WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetByID retrieves a story with its tag set and chapter list
func (r *storyRepo) GetByID(ctx context.Context, id int64) (*models.Story, error) {
	query := "SELECT " + storyColumns + " FROM stories s WHERE s.id = $1"

	story, err := scanStory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	chapters, err := listChapters(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	story.Chapters = chapters
	return story, nil
}

// Exists checks if a story with the given ID exists
func (r *storyRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM stories WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// List returns stories matching the filter, most recently updated first
func (r *storyRepo) List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error) {
	var conds []string
	var args []interface{}

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conds = append(conds, fmt.Sprintf("s.author_id = $%d", len(args)))
	}
	if filter.GenreID != nil {
		args = append(args, *filter.GenreID)
		conds = append(conds, fmt.Sprintf(genreMatch, fmt.Sprintf("$%d", len(args))))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		conds = append(conds, fmt.Sprintf("s.title ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("s.status = $%d", len(args)))
	}

	query := "SELECT " + storyColumns + " FROM stories s"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY s.updated_at DESC, s.id DESC"

	return r.queryStories(ctx, query, args...)
}

// ListByGenres returns stories whose primary genre or tag set overlaps genreIDs
func (r *storyRepo) ListByGenres(ctx context.Context, genreIDs []int64) ([]*models.Story, error) {
	if len(genreIDs) == 0 {
		return []*models.Story{}, nil
	}

	query := "SELECT " + storyColumns + ` FROM stories s
		WHERE s.primary_genre_id = ANY($1)
		   OR EXISTS (SELECT 1 FROM story_genres sg WHERE sg.story_id = s.id AND sg.genre_id = ANY($1))
		ORDER BY s.updated_at DESC, s.id DESC`

	return r.queryStories(ctx, query, pq.Array(genreIDs))
}

func (r *storyRepo) queryStories(ctx context.Context, query string, args ...interface{}) ([]*models.Story, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []*models.Story{}
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

// BriefsByAuthor lists an author's stories
func (r *storyRepo) BriefsByAuthor(ctx context.Context, authorID int64) ([]models.StoryBrief, error) {
	return r.queryBriefs(ctx, "s.author_id = $1", authorID)
}

// BriefsByGenre lists the stories carrying a genre as primary or tag
func (r *storyRepo) BriefsByGenre(ctx context.Context, genreID int64) ([]models.StoryBrief, error) {
	return r.queryBriefs(ctx, fmt.Sprintf(genreMatch, "$1"), genreID)
}

func (r *storyRepo) queryBriefs(ctx context.Context, cond string, arg interface{}) ([]models.StoryBrief, error) {
	query := "SELECT s.id, s.title, s.status, s.updated_at FROM stories s WHERE " + cond +
		" ORDER BY s.updated_at DESC, s.id DESC"

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	briefs := []models.StoryBrief{}
	for rows.Next() {
		var b models.StoryBrief
		if err := rows.Scan(&b.StoryID, &b.Title, &b.Status, &b.UpdatedAt); err != nil {
			return nil, err
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}

// Summaries resolves display metadata for ranked story ids. Missing ids are
// absent from the result.
func (r *storyRepo) Summaries(ctx context.Context, ids []int64) (map[int64]models.StorySummary, error) {
	out := make(map[int64]models.StorySummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT s.id, s.title, COALESCE(s.cover_image, ''), a.display_name, s.status,
		       (SELECT COUNT(*) FROM chapters c WHERE c.story_id = s.id)
		FROM stories s
		JOIN authors a ON a.id = s.author_id
		WHERE s.id = ANY($1)
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.StorySummary
		if err := rows.Scan(&s.StoryID, &s.Title, &s.CoverImage, &s.AuthorName, &s.Status, &s.TotalChapters); err != nil {
			return nil, err
		}
		out[s.StoryID] = s
	}
	return out, rows.Err()
}

// Count returns the total number of stories
func (r *storyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stories").Scan(&count)
	return count, err
}

// StreamAll streams all stories for export
func (r *storyRepo) StreamAll(ctx context.Context, callback func(*models.Story) error) error {
	query := "SELECT " + storyColumns + " FROM stories s ORDER BY s.id"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return err
		}
		if err := callback(story); err != nil {
			return err
		}
	}

	return rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
