package domain

import "time"

// ─── Token Ledger Types ─────────────────────────────────────────────────────
// Every balance mutation writes exactly one ledger entry in the same
// transaction. The ledger is the audit trail for token movement.

// EntryType represents the accounting side of a ledger entry.
type EntryType string

const (
	EntryDebit  EntryType = "DEBIT"
	EntryCredit EntryType = "CREDIT"
)

// TxReason represents the business reason for a token movement.
type TxReason string

const (
	// TxUnlock is a debit paying for an interview or correction unlock.
	TxUnlock TxReason = "UNLOCK"
	// TxReward is a credit paid to a correction author on selection.
	TxReward TxReason = "REWARD"
	// TxSeed is the provisioning collaborator's initial balance grant.
	TxSeed TxReason = "SEED"
)

// LedgerEntry is a single row in the token ledger.
type LedgerEntry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	EntryType    EntryType `json:"entry_type"`
	Reason       TxReason  `json:"reason"`
	Amount       int64     `json:"amount"`
	PostID       string    `json:"post_id,omitempty"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
