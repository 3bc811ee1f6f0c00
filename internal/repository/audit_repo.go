package repository

import (
	"context"
	"database/sql"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// auditRepo is the concrete implementation of AuditRepository
type auditRepo struct {
	db *database.DB
}

// NewAuditRepo creates a new author audit repository
func NewAuditRepo(db *database.DB) AuditRepository {
	return &auditRepo{db: db}
}

// Add appends an audit entry
func (r *auditRepo) Add(ctx context.Context, entry *models.AuthorAuditEntry) error {
	query := `
		INSERT INTO author_audit (id, author_id, account_id, action, prev_status, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.AuthorID, nullString(entry.AccountID), entry.Action,
		nullString(string(entry.PrevStatus)), entry.Actor, entry.CreatedAt,
	)
	return err
}

// ListByAuthor returns an author's history, oldest first
func (r *auditRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*models.AuthorAuditEntry, error) {
	query := `
		SELECT id, author_id, account_id, action, prev_status, actor, created_at
		FROM author_audit WHERE author_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.AuthorAuditEntry{}
	for rows.Next() {
		var e models.AuthorAuditEntry
		var accountID, prevStatus sql.NullString
		if err := rows.Scan(&e.ID, &e.AuthorID, &accountID, &e.Action, &prevStatus, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		if accountID.Valid {
			e.AccountID = accountID.String
		}
		if prevStatus.Valid {
			e.PrevStatus = models.AuthorStatus(prevStatus.String)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// accountRepo reads the platform account directory
type accountRepo struct {
	db *database.DB
}

// NewAccountRepo creates a new account directory reader
func NewAccountRepo(db *database.DB) AccountDirectory {
	return &accountRepo{db: db}
}

// Exists checks if a platform account exists
func (r *accountRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// DisplayName returns an account's display name, empty when the account is unknown
func (r *accountRepo) DisplayName(ctx context.Context, id string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, "SELECT display_name FROM accounts WHERE id = $1", id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}
