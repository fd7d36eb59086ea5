// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import "time"

// ─── Actor Types ────────────────────────────────────────────────────────────

// Role is the caller's role as supplied by the identity collaborator.
// The core trusts this input and performs no authentication itself.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// CanModerate reports whether the role may drive moderation transitions.
func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

// Valid reports whether the role is one of the three fixed roles.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleModerator || r == RoleAdmin
}

// Actor is the authenticated caller of an operation, as supplied by the
// identity collaborator. There is no ambient session state inside the core:
// every operation takes the actor explicitly.
type Actor struct {
	ID   string
	Role Role
}

// ─── Content Types ──────────────────────────────────────────────────────────

// ContentType is the closed, two-variant kind of unlockable content.
type ContentType string

const (
	ContentInterview  ContentType = "interview"
	ContentCorrection ContentType = "correction"
)

// Unlock prices in tokens, fixed per content type. Never user-supplied.
const (
	InterviewPrice  int64 = 5
	CorrectionPrice int64 = 10

	// SelectionReward is paid to a correction's author when the post
	// author (or a moderator) selects it as the chosen answer.
	SelectionReward int64 = 10
)

// Valid reports whether the content type is a known variant.
func (c ContentType) Valid() bool {
	return c == ContentInterview || c == ContentCorrection
}

// Price returns the fixed unlock price for the content type.
func (c ContentType) Price() int64 {
	switch c {
	case ContentInterview:
		return InterviewPrice
	case ContentCorrection:
		return CorrectionPrice
	default:
		return 0
	}
}

// ─── Moderation Status ──────────────────────────────────────────────────────

// ModerationStatus is the pending/approved/rejected lifecycle gate applied
// to posts and, separately, to corrections.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

// ─── Entities ───────────────────────────────────────────────────────────────

// Account holds a user's token balance. Mutated only by debit/credit
// operations issued by this core; the balance is never negative and every
// change is paired with exactly one ledger entry explaining it.
type Account struct {
	UserID       string    `json:"user_id"`
	TokenBalance int64     `json:"token_balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is an interview experience submitted by a member.
// Created pending, transitioned by moderators, never deleted by this core.
type Post struct {
	ID        string           `json:"id"`
	AuthorID  string           `json:"author_id"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	Status    ModerationStatus `json:"status"`
	IsPublic  bool             `json:"is_public"`
	Corrected bool             `json:"corrected"`
	CreatedAt time.Time        `json:"created_at"`
}

// VisibleTo applies the moderation gate: rejected and pending posts are
// never visible to non-owners, regardless of unlock status.
func (p *Post) VisibleTo(actor Actor) bool {
	if p.Status == StatusApproved {
		return true
	}
	return p.AuthorID == actor.ID || actor.Role.CanModerate()
}

// Correction is a user-submitted improved answer attached to a post.
// At most one correction per post may have IsSelected set, and that
// correction must be approved. TokensAwarded is write-once: set exactly
// at the moment of selection, never revised.
type Correction struct {
	ID            string           `json:"id"`
	PostID        string           `json:"post_id"`
	AuthorID      string           `json:"author_id"`
	Content       string           `json:"content,omitempty"`
	Status        ModerationStatus `json:"status"`
	IsSelected    bool             `json:"is_selected"`
	TokensAwarded int64            `json:"tokens_awarded"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PurchaseRecord is one row of the append-only purchase ledger:
// "user X unlocked content Y of kind K for N tokens." At most one record
// exists per (user, post, content type) — purchases are idempotent.
type PurchaseRecord struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	PostID      string      `json:"post_id"`
	ContentType ContentType `json:"content_type"`
	TokensSpent int64       `json:"tokens_spent"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UnlockResult is the outcome of an unlock attempt.
type UnlockResult struct {
	AlreadyOwned  bool  `json:"already_owned"`
	TokensCharged int64 `json:"tokens_charged"`
}
