package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
)

// followService records which stories and authors a reader follows
type followService struct {
	repos *repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

func newFollowService(repos *repository.Repositories, log zerolog.Logger, now func() time.Time) *followService {
	return &followService{
		repos: repos,
		log:   log.With().Str("service", "follow").Logger(),
		now:   now,
	}
}

// Follow starts following a story or author. Following twice is a conflict.
func (s *followService) Follow(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) (*models.Follow, error) {
	if err := checkFollower(accountID, kind); err != nil {
		return nil, err
	}
	if err := s.requireTarget(ctx, kind, targetID); err != nil {
		return nil, err
	}

	follow := &models.Follow{
		AccountID: accountID,
		Kind:      kind,
		TargetID:  targetID,
		CreatedAt: s.now(),
	}
	created, err := s.repos.Follow.Follow(ctx, follow)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.NewConflictError(fmt.Sprintf("already following this %s", kind))
	}

	s.log.Info().
		Str("account_id", accountID).
		Str("kind", string(kind)).
		Int64("target_id", targetID).
		Msg("Follow added")

	return follow, nil
}

// Unfollow stops following a story or author
func (s *followService) Unfollow(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) error {
	if err := checkFollower(accountID, kind); err != nil {
		return err
	}

	found, err := s.repos.Follow.Unfollow(ctx, kind, accountID, targetID)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("followed "+string(kind), targetID)
	}

	s.log.Info().
		Str("account_id", accountID).
		Str("kind", string(kind)).
		Int64("target_id", targetID).
		Msg("Follow removed")
	return nil
}

// IsFollowing reports whether the account follows the target
func (s *followService) IsFollowing(ctx context.Context, accountID string, kind models.FollowKind, targetID int64) (*models.FollowStatus, error) {
	if err := checkFollower(accountID, kind); err != nil {
		return nil, err
	}

	ok, err := s.repos.Follow.IsFollowing(ctx, kind, accountID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	return &models.FollowStatus{Kind: kind, TargetID: targetID, Following: ok}, nil
}

// Following returns one page of what the account follows, newest first
func (s *followService) Following(ctx context.Context, accountID string, kind models.FollowKind, page, pageSize int) ([]models.Follow, error) {
	if err := checkFollower(accountID, kind); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, models.NewValidationError("page", "page must be at least 1")
	}
	if err := checkLimit("page_size", pageSize); err != nil {
		return nil, err
	}

	follows, err := s.repos.Follow.ListByAccount(ctx, kind, accountID)
	if err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}
	return Paginate(follows, page, pageSize), nil
}

func (s *followService) requireTarget(ctx context.Context, kind models.FollowKind, id int64) error {
	var (
		ok  bool
		err error
	)
	if kind == models.FollowStory {
		ok, err = s.repos.Story.Exists(ctx, id)
	} else {
		ok, err = s.repos.Author.Exists(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", kind, err)
	}
	if !ok {
		return models.NewReferenceNotFound(string(kind), id)
	}
	return nil
}

func checkFollower(accountID string, kind models.FollowKind) error {
	if accountID == "" {
		return models.NewUnauthorized("account id is required")
	}
	if !kind.Valid() {
		return models.NewValidationError("kind", "invalid kind, must be one of: story, author")
	}
	return nil
}
