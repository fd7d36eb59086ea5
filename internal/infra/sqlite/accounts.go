package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/candid-forum/candid/internal/domain"
)

// ─── Account Operations ─────────────────────────────────────────────────────

// CreateAccount inserts a new account row. Called by the provisioning
// collaborator alongside user registration. A positive seed balance is
// recorded as a SEED credit in the token ledger.
func (db *DB) CreateAccount(ctx context.Context, userID string, seedBalance int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (user_id, token_balance) VALUES (?, ?)
		`, userID, seedBalance)
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", userID, domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if seedBalance > 0 {
			return insertLedgerEntry(ctx, tx, domain.LedgerEntry{
				UserID:       userID,
				EntryType:    domain.EntryCredit,
				Reason:       domain.TxSeed,
				Amount:       seedBalance,
				BalanceAfter: seedBalance,
			})
		}
		return nil
	})
}

// GetAccount retrieves an account by user ID.
func (db *DB) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	var (
		acct       domain.Account
		createdStr string
	)
	err := db.db.QueryRowContext(ctx, `
		SELECT user_id, token_balance, created_at FROM accounts WHERE user_id = ?
	`, userID).Scan(&acct.UserID, &acct.TokenBalance, &createdStr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	acct.CreatedAt = parseTime(createdStr)
	return &acct, nil
}

// LedgerEntries returns the newest ledger entries for a user.
func (db *DB) LedgerEntries(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, user_id, entry_type, reason, amount, post_id, balance_after, created_at
		FROM token_ledger WHERE user_id = ? ORDER BY id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var result []domain.LedgerEntry
	for rows.Next() {
		var (
			e          domain.LedgerEntry
			postID     sql.NullString
			createdStr string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Reason, &e.Amount, &postID, &e.BalanceAfter, &createdStr); err != nil {
			return nil, err
		}
		e.PostID = postID.String
		e.CreatedAt = parseTime(createdStr)
		result = append(result, e)
	}
	return result, rows.Err()
}

// ─── Transactional Building Blocks ──────────────────────────────────────────
// debitTx and creditTx are only ever called inside a caller-owned
// transaction so the balance change and its ledger entry, plus whatever
// else the caller writes, commit as one unit.

// debitTx subtracts amount from the user's balance and records the ledger
// entry. The balance check happens in the UPDATE itself, so a race between
// check and debit cannot overdraw the account.
func debitTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, reason domain.TxReason, postID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET token_balance = token_balance - ?
		WHERE user_id = ? AND token_balance >= ?
	`, amount, userID, amount)
	if isCheckViolation(err) {
		return 0, fmt.Errorf("debit %d from %s: %w", amount, userID, domain.ErrInsufficientFunds)
	}
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if rows == 0 {
		// Missing account or insufficient balance — look once to tell apart.
		var bal int64
		err := tx.QueryRowContext(ctx, `SELECT token_balance FROM accounts WHERE user_id = ?`, userID).Scan(&bal)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("account %s: %w", userID, domain.ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("debit: %w", err)
		}
		return 0, fmt.Errorf("debit %d from %s (balance %d): %w", amount, userID, bal, domain.ErrInsufficientFunds)
	}

	newBalance, err := balanceTx(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	return newBalance, insertLedgerEntry(ctx, tx, domain.LedgerEntry{
		UserID:       userID,
		EntryType:    domain.EntryDebit,
		Reason:       reason,
		Amount:       amount,
		PostID:       postID,
		BalanceAfter: newBalance,
	})
}

// creditTx adds amount to the user's balance and records the ledger entry.
func creditTx(ctx context.Context, tx *sql.Tx, userID string, amount int64, reason domain.TxReason, postID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET token_balance = token_balance + ? WHERE user_id = ?
	`, amount, userID)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	if rows == 0 {
		return 0, fmt.Errorf("account %s: %w", userID, domain.ErrNotFound)
	}

	newBalance, err := balanceTx(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	return newBalance, insertLedgerEntry(ctx, tx, domain.LedgerEntry{
		UserID:       userID,
		EntryType:    domain.EntryCredit,
		Reason:       reason,
		Amount:       amount,
		PostID:       postID,
		BalanceAfter: newBalance,
	})
}

func balanceTx(ctx context.Context, tx *sql.Tx, userID string) (int64, error) {
	var balance int64
	if err := tx.QueryRowContext(ctx, `SELECT token_balance FROM accounts WHERE user_id = ?`, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return balance, nil
}

func insertLedgerEntry(ctx context.Context, tx *sql.Tx, e domain.LedgerEntry) error {
	var postID any
	if e.PostID != "" {
		postID = e.PostID
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO token_ledger (user_id, entry_type, reason, amount, post_id, balance_after)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.UserID, e.EntryType, e.Reason, e.Amount, postID, e.BalanceAfter)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
