package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/candid-forum/candid/internal/app/review"
	"github.com/candid-forum/candid/internal/app/unlock"
	"github.com/candid-forum/candid/internal/domain"
	"github.com/candid-forum/candid/internal/infra/sqlite"
)

// ─── API Tests ──────────────────────────────────────────────────────────────

func setupAPI(t *testing.T) (http.Handler, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "candid.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := NewServer(db, db, db, unlock.New(db, db), review.New(db))
	return srv.Handler(), db
}

func doJSON(t *testing.T, h http.Handler, method, path, userID, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, w.Body.String())
	}
	return resp
}

// seedAccount creates a token account directly through the store.
func seedAccount(t *testing.T, db *sqlite.DB, userID string, balance int64) {
	t.Helper()
	if err := db.CreateAccount(context.Background(), userID, balance); err != nil {
		t.Fatalf("create account %s: %v", userID, err)
	}
}

// approvedPost submits a post as authorID and approves it as a moderator.
func approvedPost(t *testing.T, h http.Handler, authorID string, isPublic bool) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/posts", authorID, "member", map[string]interface{}{
		"title":     "Backend interview at Initech",
		"body":      "They asked about B-trees and consistent hashing.",
		"is_public": isPublic,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit post: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	postID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/moderate", postID), "mod-1", "moderator", map[string]string{
		"decision": "approved",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("approve post: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	return postID
}

func TestAPI_RequiresIdentity(t *testing.T) {
	h, _ := setupAPI(t)

	w := doJSON(t, h, http.MethodGet, "/api/accounts/balance", "", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without X-User-ID, got %d", w.Code)
	}
}

func TestAPI_Health(t *testing.T) {
	h, _ := setupAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decodeBody(t, w)["status"] != "ok" {
		t.Errorf("expected status ok, got %s", w.Body.String())
	}
}

func TestAPI_CreateAccount_AdminOnly(t *testing.T) {
	h, _ := setupAPI(t)

	body := map[string]interface{}{"user_id": "alice", "seed_balance": 50}

	w := doJSON(t, h, http.MethodPost, "/api/accounts", "alice", "member", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodPost, "/api/accounts", "root", "admin", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["token_balance"] != float64(50) {
		t.Errorf("expected token_balance=50, got %v", resp["token_balance"])
	}

	// Duplicate provisioning conflicts.
	w = doJSON(t, h, http.MethodPost, "/api/accounts", "root", "admin", body)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate account, got %d", w.Code)
	}
}

func TestAPI_Balance(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 25)

	w := doJSON(t, h, http.MethodGet, "/api/accounts/balance", "alice", "member", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if resp := decodeBody(t, w); resp["token_balance"] != float64(25) {
		t.Errorf("expected token_balance=25, got %v", resp["token_balance"])
	}

	w = doJSON(t, h, http.MethodGet, "/api/accounts/balance", "nobody", "member", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing account, got %d", w.Code)
	}
}

func TestAPI_UnlockFlow(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "bob", 20)
	postID := approvedPost(t, h, "alice", false)

	// Locked: body redacted for a stranger.
	w := doJSON(t, h, http.MethodGet, "/api/posts/"+postID, "bob", "member", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["unlocked"] != false {
		t.Fatalf("expected unlocked=false before purchase, got %v", resp["unlocked"])
	}
	post := resp["post"].(map[string]interface{})
	if body, ok := post["body"]; ok && body != "" {
		t.Errorf("expected redacted body, got %v", body)
	}

	// Unlock the interview.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "bob", "member", map[string]string{
		"content_type": "interview",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("unlock: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	resp = decodeBody(t, w)
	if resp["tokens_charged"] != float64(domain.InterviewPrice) {
		t.Errorf("expected tokens_charged=%d, got %v", domain.InterviewPrice, resp["tokens_charged"])
	}

	// Body now visible.
	w = doJSON(t, h, http.MethodGet, "/api/posts/"+postID, "bob", "member", nil)
	resp = decodeBody(t, w)
	if resp["unlocked"] != true {
		t.Errorf("expected unlocked=true after purchase, got %v", resp["unlocked"])
	}
	post = resp["post"].(map[string]interface{})
	if post["body"] == "" {
		t.Errorf("expected full body after purchase")
	}

	// Repeat unlock is an idempotent no-op.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "bob", "member", map[string]string{
		"content_type": "interview",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("repeat unlock: expected 200, got %d", w.Code)
	}
	if resp = decodeBody(t, w); resp["already_owned"] != true {
		t.Errorf("expected already_owned=true on repeat, got %v", resp["already_owned"])
	}

	// Purchase history records exactly one unlock.
	w = doJSON(t, h, http.MethodGet, "/api/purchases", "bob", "member", nil)
	if resp = decodeBody(t, w); resp["count"] != float64(1) {
		t.Errorf("expected 1 purchase, got %v", resp["count"])
	}
}

func TestAPI_Unlock_InsufficientFunds(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "poor", 2)
	postID := approvedPost(t, h, "alice", false)

	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "poor", "member", map[string]string{
		"content_type": "interview",
	})
	if w.Code != http.StatusPaymentRequired {
		t.Errorf("expected 402, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestAPI_Unlock_BadContentType(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "bob", 20)
	postID := approvedPost(t, h, "alice", false)

	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "bob", "member", map[string]string{
		"content_type": "bogus",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown content type, got %d", w.Code)
	}
}

func TestAPI_HiddenPostIsNotFound(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)

	w := doJSON(t, h, http.MethodPost, "/api/posts", "alice", "member", map[string]interface{}{
		"title": "Pending post", "body": "Still in review.",
	})
	postID := decodeBody(t, w)["id"].(string)

	// Author still sees it.
	w = doJSON(t, h, http.MethodGet, "/api/posts/"+postID, "alice", "member", nil)
	if w.Code != http.StatusOK {
		t.Errorf("author: expected 200 for own pending post, got %d", w.Code)
	}

	// Strangers get 404: pending posts do not exist for them.
	w = doJSON(t, h, http.MethodGet, "/api/posts/"+postID, "bob", "member", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stranger: expected 404 reading pending post, got %d", w.Code)
	}


	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/corrections", postID), "bob", "member", map[string]string{
		"content": "An improved answer.",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("stranger: expected 404 submitting correction to pending post, got %d", w.Code)
	}
}

func TestAPI_ModerationRequiresRole(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)

	w := doJSON(t, h, http.MethodPost, "/api/posts", "alice", "member", map[string]interface{}{
		"title": "A post", "body": "Body.",
	})
	postID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/moderate", postID), "alice", "member", map[string]string{
		"decision": "approved",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for member moderating, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/api/moderation/queue", "alice", "member", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for member reading queue, got %d", w.Code)
	}

	w = doJSON(t, h, http.MethodGet, "/api/moderation/queue", "mod-1", "moderator", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for moderator queue, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if posts := resp["posts"].([]interface{}); len(posts) != 1 {
		t.Errorf("expected 1 pending post in queue, got %d", len(posts))
	}
}

func TestAPI_CorrectionLifecycle(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "carol", 0)
	postID := approvedPost(t, h, "alice", true)

	// Carol submits a correction against the public post.
	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/corrections", postID), "carol", "member", map[string]string{
		"content": "The hashing question wants virtual nodes.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit correction: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	correctionID := decodeBody(t, w)["id"].(string)

	// Selecting before approval is an invalid state.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/select", correctionID), "alice", "member", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 selecting pending correction, got %d", w.Code)
	}

	// Moderator approves it.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/review", correctionID), "mod-1", "moderator", map[string]string{
		"decision": "approved",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	// A stranger cannot select for someone else's post.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/select", correctionID), "mallory", "member", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for stranger selecting, got %d", w.Code)
	}

	// The post author selects; carol is paid.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/select", correctionID), "alice", "member", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["is_selected"] != true {
		t.Errorf("expected is_selected=true, got %v", resp["is_selected"])
	}
	if resp["tokens_awarded"] != float64(domain.SelectionReward) {
		t.Errorf("expected tokens_awarded=%d, got %v", domain.SelectionReward, resp["tokens_awarded"])
	}

	w = doJSON(t, h, http.MethodGet, "/api/accounts/balance", "carol", "member", nil)
	if resp = decodeBody(t, w); resp["token_balance"] != float64(domain.SelectionReward) {
		t.Errorf("expected carol balance=%d, got %v", domain.SelectionReward, resp["token_balance"])
	}

	// Re-selecting is a conflict.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/select", correctionID), "alice", "member", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 re-selecting, got %d", w.Code)
	}
}

func TestAPI_ListCorrections_Redaction(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "carol", 0)
	seedAccount(t, db, "bob", 20)
	postID := approvedPost(t, h, "alice", true)

	w := doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/corrections", postID), "carol", "member", map[string]string{
		"content": "Use a min-heap instead.",
	})
	correctionID := decodeBody(t, w)["id"].(string)
	doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/corrections/%s/review", correctionID), "mod-1", "moderator", map[string]string{
		"decision": "approved",
	})

	// Bob sees the listing but not the paid content.
	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/posts/%s/corrections", postID), "bob", "member", nil)
	resp := decodeBody(t, w)
	if resp["unlocked"] != false {
		t.Fatalf("expected unlocked=false for bob, got %v", resp["unlocked"])
	}
	items := resp["corrections"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(items))
	}
	if content, ok := items[0].(map[string]interface{})["content"]; ok && content != "" {
		t.Errorf("expected redacted content for bob, got %v", content)
	}

	// Correction access still costs CorrectionPrice on public posts.
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "bob", "member", map[string]string{
		"content_type": "correction",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("unlock corrections: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if resp = decodeBody(t, w); resp["tokens_charged"] != float64(domain.CorrectionPrice) {
		t.Errorf("expected tokens_charged=%d, got %v", domain.CorrectionPrice, resp["tokens_charged"])
	}

	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/posts/%s/corrections", postID), "bob", "member", nil)
	resp = decodeBody(t, w)
	items = resp["corrections"].([]interface{})
	if items[0].(map[string]interface{})["content"] == "" {
		t.Errorf("expected content visible after unlock")
	}
}

func TestAPI_Ledger(t *testing.T) {
	h, db := setupAPI(t)
	seedAccount(t, db, "alice", 0)
	seedAccount(t, db, "bob", 20)
	postID := approvedPost(t, h, "alice", false)

	doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/posts/%s/unlock", postID), "bob", "member", map[string]string{
		"content_type": "interview",
	})

	w := doJSON(t, h, http.MethodGet, "/api/accounts/ledger", "bob", "member", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	// Seed credit plus the unlock debit.
	if resp["count"] != float64(2) {
		t.Fatalf("expected 2 ledger entries, got %v", resp["count"])
	}
	entries := resp["entries"].([]interface{})
	latest := entries[0].(map[string]interface{})
	if latest["entry_type"] != "DEBIT" || latest["reason"] != "UNLOCK" {
		t.Errorf("expected newest entry DEBIT/UNLOCK, got %v/%v", latest["entry_type"], latest["reason"])
	}
	if latest["balance_after"] != float64(20-domain.InterviewPrice) {
		t.Errorf("expected balance_after=%d, got %v", 20-domain.InterviewPrice, latest["balance_after"])
	}
}
