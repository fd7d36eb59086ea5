package domain

import "context"

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.
// Composite operations (PurchaseContent, SelectCorrection) are single store
// transactions: all writes commit together or none do.

// AccountStore holds per-user token balances and the token ledger.
// Accounts are created by the provisioning collaborator alongside user
// registration; the core only reads and mutates existing rows.
type AccountStore interface {
	CreateAccount(ctx context.Context, userID string, seedBalance int64) error
	GetAccount(ctx context.Context, userID string) (*Account, error)
	LedgerEntries(ctx context.Context, userID string, limit int) ([]LedgerEntry, error)
}

// ContentRegistry holds posts and their attached corrections. The status
// and selection fields are exclusively written through the state machine
// operations below — no collaborator sets them directly.
type ContentRegistry interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	SetPostStatus(ctx context.Context, id string, to ModerationStatus) (*Post, error)
	ListPendingPosts(ctx context.Context, limit int) ([]Post, error)

	CreateCorrection(ctx context.Context, c *Correction) error
	GetCorrection(ctx context.Context, id string) (*Correction, error)
	SetCorrectionStatus(ctx context.Context, id string, to ModerationStatus) (*Correction, error)
	ListCorrections(ctx context.Context, postID string) ([]Correction, error)
	ListPendingCorrections(ctx context.Context, limit int) ([]Correction, error)

	// SelectCorrection atomically marks the correction selected, writes
	// tokens_awarded, credits the correction author, and sets the parent
	// post's corrected flag. Exactly one concurrent caller wins; losers
	// get ErrAlreadySelected.
	SelectCorrection(ctx context.Context, id string, reward int64) (*Correction, error)
}

// PurchaseLedger is the append-only record of unlocks.
type PurchaseLedger interface {
	HasPurchased(ctx context.Context, userID, postID string, ct ContentType) (bool, error)
	ListPurchases(ctx context.Context, userID string) ([]PurchaseRecord, error)

	// PurchaseContent atomically verifies the balance, debits the account,
	// and inserts the purchase record. Fails ErrInsufficientFunds without
	// mutating state, or ErrConflict if the purchase already exists.
	PurchaseContent(ctx context.Context, userID, postID string, ct ContentType, price int64) (*PurchaseRecord, int64, error)
}
