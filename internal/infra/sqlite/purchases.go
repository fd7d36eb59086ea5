package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/candid-forum/candid/internal/domain"
)

// ─── Purchase Ledger Operations ─────────────────────────────────────────────

// HasPurchased reports whether a purchase record exists for the tuple.
func (db *DB) HasPurchased(ctx context.Context, userID, postID string, ct domain.ContentType) (bool, error) {
	var count int
	err := db.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM purchases
		WHERE user_id = ? AND post_id = ? AND content_type = ?
	`, userID, postID, string(ct)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has purchased: %w", err)
	}
	return count > 0, nil
}

// ListPurchases returns a user's purchase records, newest first.
func (db *DB) ListPurchases(ctx context.Context, userID string) ([]domain.PurchaseRecord, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, user_id, post_id, content_type, tokens_spent, created_at
		FROM purchases WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var result []domain.PurchaseRecord
	for rows.Next() {
		var (
			p          domain.PurchaseRecord
			createdStr string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.PostID, &p.ContentType, &p.TokensSpent, &createdStr); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdStr)
		result = append(result, p)
	}
	return result, rows.Err()
}

// PurchaseContent executes the debit-and-record transaction: verify the
// balance, debit the account (with its ledger entry), and insert the
// purchase record. Both writes commit together or neither does.
//
// The UNIQUE(user_id, post_id, content_type) constraint rejects a duplicate
// at commit time — when two concurrent unlocks race, exactly one purchase
// exists afterwards and the loser's debit is rolled back with ErrConflict.
func (db *DB) PurchaseContent(ctx context.Context, userID, postID string, ct domain.ContentType, price int64) (*domain.PurchaseRecord, int64, error) {
	record := &domain.PurchaseRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		PostID:      postID,
		ContentType: ct,
		TokensSpent: price,
	}

	var newBalance int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		balance, err := debitTx(ctx, tx, userID, price, domain.TxUnlock, postID)
		if err != nil {
			return err
		}
		newBalance = balance

		_, err = tx.ExecContext(ctx, `
			INSERT INTO purchases (id, user_id, post_id, content_type, tokens_spent)
			VALUES (?, ?, ?, ?, ?)
		`, record.ID, record.UserID, record.PostID, string(record.ContentType), record.TokensSpent)
		if isUniqueViolation(err) {
			return fmt.Errorf("purchase %s/%s/%s: %w", userID, postID, ct, domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return record, newBalance, nil
}
