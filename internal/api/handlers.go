package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/candid-forum/candid/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

// handleCreateAccount provisions a token account. Restricted to admins:
// in production the provisioning collaborator calls this once per signup.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.Role != domain.RoleAdmin {
		writeError(w, http.StatusForbidden, "account provisioning requires admin role")
		return
	}

	var req struct {
		UserID      string `json:"user_id"`
		SeedBalance int64  `json:"seed_balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.SeedBalance < 0 {
		writeError(w, http.StatusBadRequest, "seed_balance cannot be negative")
		return
	}

	if err := s.accounts.CreateAccount(r.Context(), req.UserID, req.SeedBalance); err != nil {
		writeDomainError(w, err)
		return
	}
	account, err := s.accounts.GetAccount(r.Context(), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	account, err := s.accounts.GetAccount(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	entries, err := s.accounts.LedgerEntries(r.Context(), actor.ID, 100)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// ─── Posts ──────────────────────────────────────────────────────────────────

func (s *Server) handleSubmitPost(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		IsPublic bool   `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	post, err := s.review.SubmitPost(r.Context(), actor, req.Title, req.Body, req.IsPublic)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// handleGetPost returns the post with the body redacted unless the caller
// may view the interview (public post, author, moderator, or purchased).
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	postID := chi.URLParam(r, "id")

	post, err := s.content.GetPost(r.Context(), postID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !post.VisibleTo(actor) {
		// Rejected and pending posts do not exist for non-owners.
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	viewable, err := s.unlock.CanView(r.Context(), actor, postID, domain.ContentInterview)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !viewable {
		post.Body = ""
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":     post,
		"unlocked": viewable,
	})
}

func (s *Server) handleModeratePost(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	postID := chi.URLParam(r, "id")

	var req struct {
		Decision domain.ModerationStatus `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.review.ModeratePost(r.Context(), actor, postID, req.Decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// ─── Unlocks ────────────────────────────────────────────────────────────────

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	postID := chi.URLParam(r, "id")

	var req struct {
		ContentType domain.ContentType `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.unlock.Unlock(r.Context(), actor, postID, req.ContentType)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	records, err := s.purchases.ListPurchases(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purchases": records,
		"count":     len(records),
	})
}

// ─── Corrections ────────────────────────────────────────────────────────────

func (s *Server) handleSubmitCorrection(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	postID := chi.URLParam(r, "id")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	correction, err := s.review.SubmitCorrection(r.Context(), actor, postID, req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, correction)
}

// handleListCorrections lists a post's corrections with content redacted
// unless the caller has correction access on the post.
func (s *Server) handleListCorrections(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	postID := chi.URLParam(r, "id")

	post, err := s.content.GetPost(r.Context(), postID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !post.VisibleTo(actor) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	viewable, err := s.unlock.CanView(r.Context(), actor, postID, domain.ContentCorrection)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	corrections, err := s.content.ListCorrections(r.Context(), postID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for i := range corrections {
		// Approved corrections stay listed so the selection state is
		// visible, but paid content needs an unlock or authorship.
		if !viewable && corrections[i].AuthorID != actor.ID {
			corrections[i].Content = ""
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"corrections": corrections,
		"count":       len(corrections),
		"unlocked":    viewable,
	})
}

func (s *Server) handleReviewCorrection(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	correctionID := chi.URLParam(r, "id")

	var req struct {
		Decision domain.ModerationStatus `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	correction, err := s.review.ReviewCorrection(r.Context(), actor, correctionID, req.Decision)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, correction)
}

func (s *Server) handleSelectCorrection(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	correctionID := chi.URLParam(r, "id")

	correction, err := s.review.Select(r.Context(), actor, correctionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, correction)
}

// ─── Moderation Queue ───────────────────────────────────────────────────────

func (s *Server) handleModerationQueue(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !actor.Role.CanModerate() {
		writeError(w, http.StatusForbidden, "moderation queue requires moderator role")
		return
	}

	posts, err := s.content.ListPendingPosts(r.Context(), 100)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	corrections, err := s.content.ListPendingCorrections(r.Context(), 100)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"posts":       posts,
		"corrections": corrections,
	})
}
