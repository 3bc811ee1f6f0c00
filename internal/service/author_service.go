package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
	"github.com/story-catalog-api/internal/validation"
)

// authorService runs the author lifecycle:
//
//	Submit:  none -> pending
//	Approve: pending -> approved
//	Reject:  any -> deleted
//
// Admin-created authors start approved.
type authorService struct {
	repos *repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

func newAuthorService(repos *repository.Repositories, log zerolog.Logger, now func() time.Time) *authorService {
	return &authorService{
		repos: repos,
		log:   log.With().Str("service", "author").Logger(),
		now:   now,
	}
}

// Submit files a pending author request for an account. An account holds at
// most one author identity; the unique index on authors.account_id backs the
// check below when two submissions race.
func (s *authorService) Submit(ctx context.Context, accountID string, req *models.AuthorRequest) (*models.Author, error) {
	if accountID == "" {
		return nil, models.NewUnauthorized("account id is required")
	}

	in := validation.FromAuthorRequest(req, accountID)
	if errs := validation.ValidateAuthor(in); len(errs) > 0 {
		return nil, models.NewValidationErrors(errs)
	}

	if err := s.requireAccount(ctx, in.AccountID); err != nil {
		return nil, err
	}

	existing, err := s.repos.Author.GetByAccountID(ctx, in.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}
	if existing != nil {
		return nil, models.NewConflictError(fmt.Sprintf("account already has a %s author request", existing.Status))
	}

	author := &models.Author{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		AccountID:   in.AccountID,
		Status:      models.AuthorStatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.repos.Author.Create(ctx, author); err != nil {
		return nil, err
	}

	s.record(ctx, author, models.AuditSubmitted, "", accountID)
	s.log.Info().Int64("author_id", author.ID).Str("account_id", accountID).Msg("Author request submitted")
	return author, nil
}

// Approve moves a pending author to approved. Approving twice is a conflict.
func (s *authorService) Approve(ctx context.Context, authorID int64, adminID string) (*models.Author, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.Status == models.AuthorStatusApproved {
		return nil, models.NewConflictError("author is already approved")
	}

	at := s.now()
	ok, err := s.repos.Author.Approve(ctx, authorID, adminID, at)
	if err != nil {
		return nil, fmt.Errorf("approve author: %w", err)
	}
	if !ok {
		// Lost a race with another approve or a reject
		current, err := s.repos.Author.GetByID(ctx, authorID)
		if err != nil {
			return nil, fmt.Errorf("load author: %w", err)
		}
		if current == nil {
			return nil, models.NewReferenceNotFound("author", authorID)
		}
		return nil, models.NewConflictError("author is already approved")
	}

	author.Status = models.AuthorStatusApproved
	author.ApprovedAt = &at
	author.ApprovedBy = adminID

	s.record(ctx, author, models.AuditApproved, models.AuthorStatusPending, adminID)
	s.log.Info().Int64("author_id", authorID).Str("approved_by", adminID).Msg("Author approved")
	return author, nil
}

// Reject deletes the author whatever its status, freeing the account to apply
// again. Rejecting an approved author revokes it; the audit entry keeps the
// prior status.
func (s *authorService) Reject(ctx context.Context, authorID int64, adminID string) error {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return err
	}

	found, err := s.repos.Author.Delete(ctx, authorID)
	if err != nil {
		return fmt.Errorf("reject author: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("author", authorID)
	}

	s.record(ctx, author, models.AuditRejected, author.Status, adminID)
	s.log.Info().
		Int64("author_id", authorID).
		Str("prev_status", author.Status.String()).
		Str("rejected_by", adminID).
		Msg("Author rejected")
	return nil
}

// Status returns the account's author record, or nil when it never applied
func (s *authorService) Status(ctx context.Context, accountID string) (*models.Author, error) {
	if accountID == "" {
		return nil, models.NewUnauthorized("account id is required")
	}
	return s.repos.Author.GetByAccountID(ctx, accountID)
}

// Pending lists requests awaiting review, oldest first
func (s *authorService) Pending(ctx context.Context) ([]*models.PendingAuthor, error) {
	return s.repos.Author.ListPending(ctx)
}

// Create adds a pre-approved author directly
func (s *authorService) Create(ctx context.Context, adminID string, req *models.AuthorCreateRequest) (*models.Author, error) {
	in := validation.FromAuthorCreateRequest(req)
	if errs := validation.ValidateAuthor(in); len(errs) > 0 {
		return nil, models.NewValidationErrors(errs)
	}
	if in.AccountID != "" {
		if err := s.requireAccount(ctx, in.AccountID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	author := &models.Author{
		DisplayName: in.DisplayName,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		AccountID:   in.AccountID,
		Status:      models.AuthorStatusApproved,
		CreatedAt:   now,
		ApprovedAt:  &now,
		ApprovedBy:  adminID,
	}
	if err := s.repos.Author.Create(ctx, author); err != nil {
		return nil, err
	}

	s.record(ctx, author, models.AuditCreated, "", adminID)
	s.log.Info().Int64("author_id", author.ID).Str("created_by", adminID).Msg("Author created")
	return author, nil
}

// Update edits an author's profile; status is left unchanged
func (s *authorService) Update(ctx context.Context, id int64, req *models.AuthorCreateRequest) (*models.Author, error) {
	in := validation.FromAuthorCreateRequest(req)
	if errs := validation.ValidateAuthor(in); len(errs) > 0 {
		return nil, models.NewValidationErrors(errs)
	}

	author, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AccountID != "" && in.AccountID != author.AccountID {
		if err := s.requireAccount(ctx, in.AccountID); err != nil {
			return nil, err
		}
	}

	author.DisplayName = in.DisplayName
	author.Bio = in.Bio
	author.AvatarURL = in.AvatarURL
	author.AccountID = in.AccountID

	found, err := s.repos.Author.Update(ctx, author)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewReferenceNotFound("author", id)
	}
	return author, nil
}

// Delete removes an author and, through the cascade, their stories
func (s *authorService) Delete(ctx context.Context, id int64, adminID string) error {
	author, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.repos.Author.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if !found {
		return models.NewReferenceNotFound("author", id)
	}

	s.record(ctx, author, models.AuditDeleted, author.Status, adminID)
	return nil
}

func (s *authorService) Get(ctx context.Context, id int64) (*models.Author, error) {
	author, err := s.repos.Author.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author: %w", err)
	}
	if author == nil {
		return nil, models.NewReferenceNotFound("author", id)
	}
	return author, nil
}

func (s *authorService) List(ctx context.Context) ([]*models.Author, error) {
	return s.repos.Author.List(ctx, "")
}

func (s *authorService) ListApproved(ctx context.Context) ([]*models.Author, error) {
	return s.repos.Author.List(ctx, models.AuthorStatusApproved)
}

// Stories lists an author's stories, most recently updated first
func (s *authorService) Stories(ctx context.Context, id int64) ([]models.StoryBrief, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Story.BriefsByAuthor(ctx, id)
}

// Audit returns the lifecycle history of an author id, including deleted authors
func (s *authorService) Audit(ctx context.Context, id int64) ([]*models.AuthorAuditEntry, error) {
	entries, err := s.repos.Audit.ListByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, e := range entries {
		name, seen := names[e.Actor]
		if !seen {
			name, err = s.repos.Account.DisplayName(ctx, e.Actor)
			if err != nil {
				return nil, fmt.Errorf("resolve actor %s: %w", e.Actor, err)
			}
			names[e.Actor] = name
		}
		e.ActorName = name
	}
	return entries, nil
}

func (s *authorService) requireAccount(ctx context.Context, accountID string) error {
	ok, err := s.repos.Account.Exists(ctx, accountID)
	if err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if !ok {
		return models.NewReferenceNotFound("account", accountID)
	}
	return nil
}

// record writes an audit entry. The transition has already happened, so a
// failed write is logged and not returned.
func (s *authorService) record(ctx context.Context, author *models.Author, action models.AuditAction, prev models.AuthorStatus, actor string) {
	entry := &models.AuthorAuditEntry{
		ID:         uuid.NewString(),
		AuthorID:   author.ID,
		AccountID:  author.AccountID,
		Action:     action,
		PrevStatus: prev,
		Actor:      actor,
		CreatedAt:  s.now(),
	}
	if err := s.repos.Audit.Add(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Int64("author_id", author.ID).
			Str("action", string(action)).
			Msg("Failed to write author audit entry")
	}
}
