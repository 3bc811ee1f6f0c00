package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// genreRepo is the concrete implementation of GenreRepository
type genreRepo struct {
	db *database.DB
}

// NewGenreRepo creates a new genre repository
func NewGenreRepo(db *database.DB) GenreRepository {
	return &genreRepo{db: db}
}

// Create inserts a genre; a duplicate name key is a conflict
func (r *genreRepo) Create(ctx context.Context, genre *models.Genre, nameKey string) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO genres (name, name_key) VALUES ($1, $2) RETURNING id",
		genre.Name, nameKey,
	).Scan(&genre.ID)
	return mapPQError(err)
}

// Rename changes a genre's name
func (r *genreRepo) Rename(ctx context.Context, id int64, name, nameKey string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE genres SET name = $2, name_key = $3 WHERE id = $1",
		id, name, nameKey,
	)
	if err != nil {
		return false, mapPQError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a genre that no story references. The genre row is locked
// first, so a concurrent tag insert (which takes a key-share lock through the
// foreign key) cannot slip in between the check and the delete.
func (r *genreRepo) Delete(ctx context.Context, id int64) (bool, error) {
	found := false

	err := r.db.WithTx(ctx, nil, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM genres WHERE id = $1 FOR UPDATE", id).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		var inUse bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM stories WHERE primary_genre_id = $1)
			    OR EXISTS(SELECT 1 FROM story_genres WHERE genre_id = $1)
		`, id).Scan(&inUse)
		if err != nil {
			return err
		}
		if inUse {
			return models.NewInUseError(fmt.Sprintf("genre %d is used by one or more stories", id))
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM genres WHERE id = $1", id)
		return err
	})
	return found, err
}

// GetByID retrieves a genre by ID
func (r *genreRepo) GetByID(ctx context.Context, id int64) (*models.Genre, error) {
	var g models.Genre
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM genres WHERE id = $1", id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all genres ordered by name
func (r *genreRepo) List(ctx context.Context) ([]*models.Genre, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY name_key, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []*models.Genre{}
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, &g)
	}
	return genres, rows.Err()
}

// NameTaken checks whether another genre already uses the name key
func (r *genreRepo) NameTaken(ctx context.Context, nameKey string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM genres WHERE name_key = $1 AND id <> $2)",
		nameKey, excludeID,
	).Scan(&exists)
	return exists, err
}

// Exists checks if a genre with the given ID exists
func (r *genreRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM genres WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// MissingIDs returns the ids, in input order, that have no genre row
func (r *genreRepo) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT u.id
		FROM unnest($1::bigint[]) WITH ORDINALITY AS u(id, ord)
		WHERE NOT EXISTS (SELECT 1 FROM genres g WHERE g.id = u.id)
		ORDER BY u.ord
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

// Count returns the total number of genres
func (r *genreRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM genres").Scan(&count)
	return count, err
}
