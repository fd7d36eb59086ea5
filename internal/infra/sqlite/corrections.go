package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/candid-forum/candid/internal/domain"
)

// ─── Correction Operations ──────────────────────────────────────────────────

// CreateCorrection inserts a new correction in pending status.
func (db *DB) CreateCorrection(ctx context.Context, c *domain.Correction) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO corrections (id, post_id, author_id, content, status)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.PostID, c.AuthorID, c.Content, string(domain.StatusPending))
	if isUniqueViolation(err) {
		return fmt.Errorf("correction %s: %w", c.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create correction: %w", err)
	}
	c.Status = domain.StatusPending
	return nil
}

// GetCorrection retrieves a correction by ID.
func (db *DB) GetCorrection(ctx context.Context, id string) (*domain.Correction, error) {
	return getCorrection(ctx, db.db, id)
}

// SetCorrectionStatus transitions a pending correction to approved or
// rejected. No side effects beyond the status write.
func (db *DB) SetCorrectionStatus(ctx context.Context, id string, to domain.ModerationStatus) (*domain.Correction, error) {
	if to != domain.StatusApproved && to != domain.StatusRejected {
		return nil, fmt.Errorf("target status %q: %w", to, domain.ErrInvalidState)
	}

	res, err := db.db.ExecContext(ctx, `
		UPDATE corrections SET status = ? WHERE id = ? AND status = ?
	`, string(to), id, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("set correction status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("set correction status: %w", err)
	}
	if rows == 0 {
		c, err := db.GetCorrection(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("correction %s is %s: %w", id, c.Status, domain.ErrInvalidState)
	}
	return db.GetCorrection(ctx, id)
}

// ListCorrections returns all corrections attached to a post, oldest first.
func (db *DB) ListCorrections(ctx context.Context, postID string) ([]domain.Correction, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, post_id, author_id, content, status, is_selected, tokens_awarded, created_at
		FROM corrections WHERE post_id = ? ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	defer rows.Close()
	return scanCorrections(rows)
}

// ListPendingCorrections returns the correction moderation queue, oldest first.
func (db *DB) ListPendingCorrections(ctx context.Context, limit int) ([]domain.Correction, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, post_id, author_id, content, status, is_selected, tokens_awarded, created_at
		FROM corrections WHERE status = ? ORDER BY created_at LIMIT ?
	`, string(domain.StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending corrections: %w", err)
	}
	defer rows.Close()
	return scanCorrections(rows)
}

// SelectCorrection marks the correction as the chosen answer for its post.
// Four writes form one atomic unit: is_selected, tokens_awarded, the author's
// reward credit (with its ledger entry), and the parent post's corrected flag.
// A selection never leaves the flag set with the reward unpaid, or vice versa.
//
// Exactly one of two concurrent selections on the same post wins: the loser
// hits either the is_selected = 0 guard (same correction) or the partial
// unique index on (post_id) WHERE is_selected = 1 (sibling correction) and
// gets ErrAlreadySelected with no partial effects.
func (db *DB) SelectCorrection(ctx context.Context, id string, reward int64) (*domain.Correction, error) {
	var selected *domain.Correction
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getCorrection(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.IsSelected {
			return fmt.Errorf("correction %s: %w", id, domain.ErrAlreadySelected)
		}
		if c.Status != domain.StatusApproved {
			return fmt.Errorf("correction %s is %s: %w", id, c.Status, domain.ErrInvalidState)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE corrections SET is_selected = 1, tokens_awarded = ?
			WHERE id = ? AND status = ? AND is_selected = 0
		`, reward, id, string(domain.StatusApproved))
		if isUniqueViolation(err) {
			return fmt.Errorf("post %s: %w", c.PostID, domain.ErrAlreadySelected)
		}
		if err != nil {
			return fmt.Errorf("select correction: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("select correction: %w", err)
		}
		if rows == 0 {
			// Lost a race: the correction was selected or re-moderated
			// after our read.
			cur, err := getCorrection(ctx, tx, id)
			if err != nil {
				return err
			}
			if cur.IsSelected {
				return fmt.Errorf("correction %s: %w", id, domain.ErrAlreadySelected)
			}
			return fmt.Errorf("correction %s is %s: %w", id, cur.Status, domain.ErrInvalidState)
		}

		if _, err := creditTx(ctx, tx, c.AuthorID, reward, domain.TxReward, c.PostID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET corrected = 1 WHERE id = ?`, c.PostID); err != nil {
			return fmt.Errorf("mark post corrected: %w", err)
		}

		selected, err = getCorrection(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return selected, nil
}

func getCorrection(ctx context.Context, q queryRower, id string) (*domain.Correction, error) {
	var (
		c          domain.Correction
		isSelected int
		createdStr string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, post_id, author_id, content, status, is_selected, tokens_awarded, created_at
		FROM corrections WHERE id = ?
	`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Status, &isSelected, &c.TokensAwarded, &createdStr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("correction %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get correction: %w", err)
	}
	c.IsSelected = isSelected == 1
	c.CreatedAt = parseTime(createdStr)
	return &c, nil
}

func scanCorrections(rows *sql.Rows) ([]domain.Correction, error) {
	var result []domain.Correction
	for rows.Next() {
		var (
			c          domain.Correction
			isSelected int
			createdStr string
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.Status, &isSelected, &c.TokensAwarded, &createdStr); err != nil {
			return nil, err
		}
		c.IsSelected = isSelected == 1
		c.CreatedAt = parseTime(createdStr)
		result = append(result, c)
	}
	return result, rows.Err()
}
