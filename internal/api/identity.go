package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/candid-forum/candid/internal/domain"
)

type contextKey string

const actorKey contextKey = "actor"

// identity extracts the authenticated actor from the X-User-ID and
// X-User-Role headers set by the identity collaborator. Requests without
// a user ID are rejected; an absent or unknown role falls back to member.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		role := domain.Role(r.Header.Get("X-User-Role"))
		if !role.Valid() {
			role = domain.RoleMember
		}
		actor := domain.Actor{ID: userID, Role: role}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom returns the actor stored by the identity middleware.
func actorFrom(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(actorKey).(domain.Actor)
	return actor
}

// statusFromErr maps domain errors onto HTTP status codes.
func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrAlreadySelected),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

// writeDomainError writes an error response with the mapped status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFromErr(err), err.Error())
}
