package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/candid-forum/candid/internal/domain"
)

// newTestDB opens a fresh database in a temp dir, fully migrated.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "candid.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// mustAccount creates an account with the given balance.
func mustAccount(t *testing.T, db *DB, userID string, balance int64) {
	t.Helper()
	if err := db.CreateAccount(context.Background(), userID, balance); err != nil {
		t.Fatalf("CreateAccount(%s) error: %v", userID, err)
	}
}

// mustPost creates an approved post and returns it.
func mustPost(t *testing.T, db *DB, authorID string, isPublic bool) *domain.Post {
	t.Helper()
	ctx := context.Background()
	post := &domain.Post{
		ID:       uuid.NewString(),
		AuthorID: authorID,
		Title:    "Backend interview at Acme",
		Body:     "They asked about database transactions.",
		IsPublic: isPublic,
	}
	if err := db.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	approved, err := db.SetPostStatus(ctx, post.ID, domain.StatusApproved)
	if err != nil {
		t.Fatalf("SetPostStatus() error: %v", err)
	}
	return approved
}

// mustCorrection creates an approved correction on the post.
func mustCorrection(t *testing.T, db *DB, postID, authorID string) *domain.Correction {
	t.Helper()
	ctx := context.Background()
	c := &domain.Correction{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: authorID,
		Content:  "The actual answer involves serializable isolation.",
	}
	if err := db.CreateCorrection(ctx, c); err != nil {
		t.Fatalf("CreateCorrection() error: %v", err)
	}
	approved, err := db.SetCorrectionStatus(ctx, c.ID, domain.StatusApproved)
	if err != nil {
		t.Fatalf("SetCorrectionStatus() error: %v", err)
	}
	return approved
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}
}
