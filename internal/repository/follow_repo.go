package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/story-catalog-api/internal/database"
	"github.com/story-catalog-api/internal/models"
)

// followRepo is the Postgres-backed FollowRepository.
// Each follow kind has its own table keyed by (account_id, target).
type followRepo struct {
	db *database.DB
}

// NewFollowRepo creates a new follow repository
func NewFollowRepo(db *database.DB) FollowRepository {
	return &followRepo{db: db}
}

type followTable struct {
	name   string
	target string
}

func tableFor(kind models.FollowKind) (followTable, error) {
	switch kind {
	case models.FollowStory:
		return followTable{name: "follow_stories", target: "story_id"}, nil
	case models.FollowAuthor:
		return followTable{name: "follow_authors", target: "author_id"}, nil
	default:
		return followTable{}, fmt.Errorf("unknown follow kind %q", kind)
	}
}

// Follow inserts the pair, reporting false if it was already present
func (r *followRepo) Follow(ctx context.Context, follow *models.Follow) (bool, error) {
	t, err := tableFor(follow.Kind)
	if err != nil {
		return false, err
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (account_id, %s, created_at) VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, t.name, t.target)
	res, err := r.db.ExecContext(ctx, query, follow.AccountID, follow.TargetID, follow.CreatedAt)
	if err != nil {
		return false, mapPQError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Unfollow removes the pair
func (r *followRepo) Unfollow(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE account_id = $1 AND %s = $2", t.name, t.target)
	res, err := r.db.ExecContext(ctx, query, accountID, targetID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IsFollowing checks whether the pair exists
func (r *followRepo) IsFollowing(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE account_id = $1 AND %s = $2)", t.name, t.target)
	err = r.db.QueryRowContext(ctx, query, accountID, targetID).Scan(&exists)
	return exists, err
}

// ListByAccount returns everything of one kind an account follows, newest first
func (r *followRepo) ListByAccount(ctx context.Context, kind models.FollowKind, accountID string) ([]models.Follow, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s, created_at FROM %s WHERE account_id = $1
		ORDER BY created_at DESC, %s
	`, t.target, t.name, t.target)
	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	follows := []models.Follow{}
	for rows.Next() {
		f := models.Follow{AccountID: accountID, Kind: kind}
		if err := rows.Scan(&f.TargetID, &f.CreatedAt); err != nil {
			return nil, err
		}
		follows = append(follows, f)
	}
	return follows, rows.Err()
}
