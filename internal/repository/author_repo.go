package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// authorRepo is the concrete implementation of AuthorRepository
type authorRepo struct {
	db *database.DB
}

// NewAuthorRepo creates a new author repository
func NewAuthorRepo(db *database.DB) AuthorRepository {
	return &authorRepo{db: db}
}

const authorColumns = `
	a.id, a.display_name, COALESCE(a.bio, ''), COALESCE(a.avatar_url, ''), COALESCE(a.account_id, ''),
	a.status, a.created_at, a.approved_at, COALESCE(a.approved_by, '')
`

func scanAuthor(row rowScanner, extra ...interface{}) (*models.Author, error) {
	var a models.Author
	var approvedAt sql.NullTime

	dest := []interface{}{
		&a.ID, &a.DisplayName, &a.Bio, &a.AvatarURL, &a.AccountID,
		&a.Status, &a.CreatedAt, &approvedAt, &a.ApprovedBy,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if approvedAt.Valid {
		a.ApprovedAt = &approvedAt.Time
	}
	return &a, nil
}

// Create inserts an author. The unique index on account_id turns a second
// identity for the same account into a conflict.
func (r *authorRepo) Create(ctx context.Context, author *models.Author) error {
	var approvedAt sql.NullTime
	if author.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *author.ApprovedAt, Valid: true}
	}
	if author.CreatedAt.IsZero() {
		author.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO authors (display_name, bio, avatar_url, account_id, status, created_at, approved_at, approved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		author.DisplayName, nullString(author.Bio), nullString(author.AvatarURL), nullString(author.AccountID),
		author.Status, author.CreatedAt, approvedAt, nullString(author.ApprovedBy),
	).Scan(&author.ID)
	return mapPQError(err)
}

// Update changes an author's profile fields; status is only changed by Approve
func (r *authorRepo) Update(ctx context.Context, author *models.Author) (bool, error) {
	query := `
		UPDATE authors SET display_name = $2, bio = $3, avatar_url = $4, account_id = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		author.ID, author.DisplayName, nullString(author.Bio), nullString(author.AvatarURL), nullString(author.AccountID),
	)
	if err != nil {
		return false, mapPQError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes an author in any state; its stories cascade
func (r *authorRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM authors WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetByID retrieves an author by ID
func (r *authorRepo) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	query := "SELECT " + authorColumns + " FROM authors a WHERE a.id = $1"
	a, err := scanAuthor(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// GetByAccountID retrieves the author linked to a platform account
func (r *authorRepo) GetByAccountID(ctx context.Context, accountID string) (*models.Author, error) {
	query := "SELECT " + authorColumns + " FROM authors a WHERE a.account_id = $1"
	a, err := scanAuthor(r.db.QueryRowContext(ctx, query, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List returns authors ordered by display name, optionally limited to one status
func (r *authorRepo) List(ctx context.Context, status models.AuthorStatus) ([]*models.Author, error) {
	query := "SELECT " + authorColumns + " FROM authors a"
	var args []interface{}
	if status != "" {
		query += " WHERE a.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY a.display_name, a.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := []*models.Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// ListPending returns pending requests, oldest first, with the account name
func (r *authorRepo) ListPending(ctx context.Context) ([]*models.PendingAuthor, error) {
	query := "SELECT " + authorColumns + `, COALESCE(acc.display_name, '')
		FROM authors a
		LEFT JOIN accounts acc ON acc.id = a.account_id
		WHERE a.status = 'pending'
		ORDER BY a.created_at, a.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := []*models.PendingAuthor{}
	for rows.Next() {
		var accountName string
		a, err := scanAuthor(rows, &accountName)
		if err != nil {
			return nil, err
		}
		pending = append(pending, &models.PendingAuthor{Author: *a, AccountName: accountName})
	}
	return pending, rows.Err()
}

// Approve moves a pending author to approved. It returns false when the
// author is missing or no longer pending.
func (r *authorRepo) Approve(ctx context.Context, id int64, approvedBy string, at time.Time) (bool, error) {
	query := `
		UPDATE authors SET status = 'approved', approved_at = $2, approved_by = $3
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecContext(ctx, query, id, at, approvedBy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Exists checks if an author with the given ID exists
func (r *authorRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// Count returns the total number of authors
func (r *authorRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM authors").Scan(&count)
	return count, err
}
