package models

import (
	"fmt"
	"strings"
	"time"
)

// AuthorStatus is the approval state of an author identity
type AuthorStatus string

const (
	AuthorStatusPending  AuthorStatus = "pending"
	AuthorStatusApproved AuthorStatus = "approved"
)

// ParseAuthorStatus maps external input onto the closed status set
func ParseAuthorStatus(s string) (AuthorStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return AuthorStatusPending, nil
	case "approved":
		return AuthorStatusApproved, nil
	default:
		return "", fmt.Errorf("invalid author status %q, must be one of: pending, approved", s)
	}
}

func (s AuthorStatus) String() string {
	return string(s)
}

// Author is a publishing identity, optionally linked to a platform account
type Author struct {
	ID          int64        `json:"author_id" db:"id"`
	DisplayName string       `json:"display_name" db:"display_name"`
	Bio         string       `json:"bio,omitempty" db:"bio"`
	AvatarURL   string       `json:"avatar_url,omitempty" db:"avatar_url"`
	AccountID   string       `json:"account_id,omitempty" db:"account_id"`
	Status      AuthorStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	ApprovedAt  *time.Time   `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy  string       `json:"approved_by,omitempty" db:"approved_by"`
}

// CanPublish reports whether the author may publish stories as themself
func (a *Author) CanPublish() bool {
	return a != nil && a.Status == AuthorStatusApproved
}

// PendingAuthor is a pending request together with the requesting account's name
type PendingAuthor struct {
	Author
	AccountName string `json:"account_name"`
}

// StoryBrief is a compact story row used in author and genre listings
type StoryBrief struct {
	StoryID   int64       `json:"story_id"`
	Title     string      `json:"title"`
	Status    StoryStatus `json:"status"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Author field limits
const (
	MaxAuthorNameLength = 150
	MaxImageRefLength   = 500
	MaxAccountIDLength  = 450
)

// AuthorRequest is the self-service payload for becoming an author
type AuthorRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=150"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url" validate:"max=500"`
}

// AuthorCreateRequest is the administrative payload for creating or updating an author
type AuthorCreateRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=150"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url" validate:"max=500"`
	AccountID   string `json:"account_id" validate:"max=450"`
}

// AuditAction names an author lifecycle transition
type AuditAction string

const (
	AuditSubmitted AuditAction = "submitted"
	AuditApproved  AuditAction = "approved"
	AuditRejected  AuditAction = "rejected"
	AuditCreated   AuditAction = "created"
	AuditDeleted   AuditAction = "deleted"
)

// AuthorAuditEntry records one lifecycle transition of an author
type AuthorAuditEntry struct {
	ID         string       `json:"id"`
	AuthorID   int64        `json:"author_id"`
	AccountID  string       `json:"account_id,omitempty"`
	Action     AuditAction  `json:"action"`
	PrevStatus AuthorStatus `json:"prev_status,omitempty"`
	Actor      string       `json:"actor"`
	ActorName  string       `json:"actor_name,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
