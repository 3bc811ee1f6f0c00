package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/story-catalog-api/internal/models"
)

// Postgres error codes the repositories translate
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// mapPQError converts constraint violations into typed catalog errors.
// Other errors are returned unchanged.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return models.NewConflictError(conflictReason(pqErr.Constraint)).WithCause(err)
	case pqForeignKeyViolation:
		kind, id := referenceFromDetail(pqErr)
		return models.NewReferenceNotFound(kind, id).WithCause(err)
	}
	return err
}

func conflictReason(constraint string) string {
	switch constraint {
	case "idx_authors_account_id":
		return "account already has an author identity"
	case "idx_genres_name_key":
		return "genre name already exists"
	case "chapters_story_id_chapter_number_key":
		return "chapter number already exists for this story"
	default:
		return "duplicate record"
	}
}

// referenceFromDetail extracts the missing key from a detail such as
// `Key (genre_id)=(42) is not present in table "genres".`
func referenceFromDetail(pqErr *pq.Error) (string, string) {
	kind := strings.TrimSuffix(pqErr.Table, "s")
	switch {
	case strings.Contains(pqErr.Detail, "\"genres\""):
		kind = "genre"
	case strings.Contains(pqErr.Detail, "\"authors\""):
		kind = "author"
	case strings.Contains(pqErr.Detail, "\"stories\""):
		kind = "story"
	case strings.Contains(pqErr.Detail, "\"accounts\""):
		kind = "account"
	case strings.Contains(pqErr.Detail, "\"chapters\""):
		kind = "chapter"
	}

	id := ""
	if i := strings.Index(pqErr.Detail, ")=("); i >= 0 {
		rest := pqErr.Detail[i+3:]
		if j := strings.Index(rest, ")"); j >= 0 {
			id = rest[:j]
		}
	}
	return kind, id
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func int64PtrFrom(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
