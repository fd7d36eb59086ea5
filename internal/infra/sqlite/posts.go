package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/candid-forum/candid/internal/domain"
)

// ─── Post Operations ────────────────────────────────────────────────────────

// CreatePost inserts a new post in pending status.
func (db *DB) CreatePost(ctx context.Context, post *domain.Post) error {
	_, err := db.db.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, title, body, status, is_public)
		VALUES (?, ?, ?, ?, ?, ?)
	`, post.ID, post.AuthorID, post.Title, post.Body, string(domain.StatusPending), boolToInt(post.IsPublic))
	if isUniqueViolation(err) {
		return fmt.Errorf("post %s: %w", post.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	post.Status = domain.StatusPending
	return nil
}

// GetPost retrieves a post by ID.
func (db *DB) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return getPost(ctx, db.db, id)
}

// SetPostStatus transitions a pending post to approved or rejected.
// Both target states are terminal from this core's perspective; the guard is
// part of the UPDATE so concurrent transitions cannot both succeed.
func (db *DB) SetPostStatus(ctx context.Context, id string, to domain.ModerationStatus) (*domain.Post, error) {
	if to != domain.StatusApproved && to != domain.StatusRejected {
		return nil, fmt.Errorf("target status %q: %w", to, domain.ErrInvalidState)
	}

	res, err := db.db.ExecContext(ctx, `
		UPDATE posts SET status = ? WHERE id = ? AND status = ?
	`, string(to), id, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("set post status: %w", err)
	}
	if rows == 0 {
		post, err := db.GetPost(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("post %s is %s: %w", id, post.Status, domain.ErrInvalidState)
	}
	return db.GetPost(ctx, id)
}

// ListPendingPosts returns the moderation queue, oldest first.
func (db *DB) ListPendingPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, author_id, title, body, status, is_public, corrected, created_at
		FROM posts WHERE status = ? ORDER BY created_at LIMIT ?
	`, string(domain.StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// queryRower is satisfied by both *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getPost(ctx context.Context, q queryRower, id string) (*domain.Post, error) {
	var (
		p                    domain.Post
		isPublic, corrected  int
		createdStr           string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, author_id, title, body, status, is_public, corrected, created_at
		FROM posts WHERE id = ?
	`, id).Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.Status, &isPublic, &corrected, &createdStr)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	p.IsPublic = isPublic == 1
	p.Corrected = corrected == 1
	p.CreatedAt = parseTime(createdStr)
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]domain.Post, error) {
	var result []domain.Post
	for rows.Next() {
		var (
			p                   domain.Post
			isPublic, corrected int
			createdStr          string
		)
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.Status, &isPublic, &corrected, &createdStr); err != nil {
			return nil, err
		}
		p.IsPublic = isPublic == 1
		p.Corrected = corrected == 1
		p.CreatedAt = parseTime(createdStr)
		result = append(result, p)
	}
	return result, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
