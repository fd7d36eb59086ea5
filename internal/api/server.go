// Package api exposes the core's logical operation contracts over HTTP for
// the rendering, moderation UI, and provisioning collaborators.
//
// Authentication lives upstream: the identity collaborator injects the
// authenticated user and role as X-User-ID / X-User-Role headers, and the
// core trusts them.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/candid-forum/candid/internal/app/review"
	"github.com/candid-forum/candid/internal/app/unlock"
	"github.com/candid-forum/candid/internal/domain"
)

// Server is the candid HTTP API server.
type Server struct {
	accounts       domain.AccountStore
	content        domain.ContentRegistry
	purchases      domain.PurchaseLedger
	unlock         *unlock.Service
	review         *review.Service
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(accounts domain.AccountStore, content domain.ContentRegistry, purchases domain.PurchaseLedger, unlockSvc *unlock.Service, reviewSvc *review.Service) *Server {
	return &Server{
		accounts:  accounts,
		content:   content,
		purchases: purchases,
		unlock:    unlockSvc,
		review:    reviewSvc,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(identity)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleCreateAccount) // provisioning collaborator
			r.Get("/balance", s.handleBalance)
			r.Get("/ledger", s.handleLedger)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", s.handleSubmitPost)
			r.Get("/{id}", s.handleGetPost)
			r.Post("/{id}/moderate", s.handleModeratePost)
			r.Post("/{id}/unlock", s.handleUnlock)
			r.Get("/{id}/corrections", s.handleListCorrections)
			r.Post("/{id}/corrections", s.handleSubmitCorrection)
		})

		r.Route("/corrections", func(r chi.Router) {
			r.Post("/{id}/review", s.handleReviewCorrection)
			r.Post("/{id}/select", s.handleSelectCorrection)
		})

		r.Get("/purchases", s.handleListPurchases)
		r.Get("/moderation/queue", s.handleModerationQueue)
	})

	return r
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID, X-User-Role")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
