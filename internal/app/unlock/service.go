// Package unlock decides, for an (actor, post, content type) triple, whether
// content is visible in full — and if not yet purchased, executes the atomic
// debit-and-record transaction through the purchase ledger.
//
// The moderation gate is checked strictly before the unlock gate: a pending
// or rejected post is never unlockable (or even acknowledged) for anyone but
// its author or a moderator.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/candid-forum/candid/internal/app/notify"
	"github.com/candid-forum/candid/internal/domain"
	"github.com/candid-forum/candid/internal/infra/observability"
)

// Service is the unlock decision point.
type Service struct {
	content   domain.ContentRegistry
	purchases domain.PurchaseLedger
	hub       *notify.Hub            // nil disables notifications
	metrics   *observability.Metrics // nil disables metrics
}

// New creates an unlock service over the content registry and purchase ledger.
func New(content domain.ContentRegistry, purchases domain.PurchaseLedger) *Service {
	return &Service{content: content, purchases: purchases}
}

// SetNotifier sets the fire-and-forget notification hub.
func (s *Service) SetNotifier(h *notify.Hub) { s.hub = h }

// SetMetrics sets the metrics sink.
func (s *Service) SetMetrics(m *observability.Metrics) { s.metrics = m }

// Unlock grants the actor durable viewing rights to the post's content of
// the given kind, debiting the fixed price if a purchase is needed.
//
// Safe to retry: a repeat call is a no-op reporting alreadyOwned, and a
// concurrent duplicate loses cleanly at the ledger's unique constraint
// without double-charging.
func (s *Service) Unlock(ctx context.Context, actor domain.Actor, postID string, ct domain.ContentType) (domain.UnlockResult, error) {
	if !ct.Valid() {
		return domain.UnlockResult{}, fmt.Errorf("content type %q: %w", ct, domain.ErrNotFound)
	}

	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return domain.UnlockResult{}, err
	}
	if !post.VisibleTo(actor) {
		// Hide the post's existence from actors the moderation gate excludes.
		return domain.UnlockResult{}, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}

	if owned, err := s.owned(ctx, actor, post, ct); err != nil {
		return domain.UnlockResult{}, err
	} else if owned {
		if s.metrics != nil {
			s.metrics.UnlocksAlreadyOwned.Inc()
		}
		return domain.UnlockResult{AlreadyOwned: true}, nil
	}

	price := ct.Price()
	record, newBalance, err := s.purchases.PurchaseContent(ctx, actor.ID, postID, ct, price)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race against our own retry; the winner already paid.
		if s.metrics != nil {
			s.metrics.UnlocksAlreadyOwned.Inc()
		}
		return domain.UnlockResult{AlreadyOwned: true}, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) && s.metrics != nil {
			s.metrics.UnlocksDenied.Inc()
		}
		return domain.UnlockResult{}, err
	}

	log.Printf("[unlock] user=%s post=%s type=%s charged=%d balance=%d", actor.ID, postID, ct, price, newBalance)
	if s.metrics != nil {
		s.metrics.UnlocksTotal.WithLabelValues(string(ct)).Inc()
		s.metrics.TokensDebited.Add(float64(price))
	}
	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Kind:   notify.KindPurchase,
			UserID: actor.ID,
			PostID: postID,
			Tokens: record.TokensSpent,
		})
	}
	return domain.UnlockResult{TokensCharged: price}, nil
}

// CanView composes post visibility, authorship, and purchase state into the
// read-path boolean the rendering collaborator consumes. No purchase attempt
// is made.
func (s *Service) CanView(ctx context.Context, actor domain.Actor, postID string, ct domain.ContentType) (bool, error) {
	if !ct.Valid() {
		return false, fmt.Errorf("content type %q: %w", ct, domain.ErrNotFound)
	}
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if !post.VisibleTo(actor) {
		return false, nil
	}
	return s.owned(ctx, actor, post, ct)
}

// owned reports whether the actor already holds full viewing rights,
// assuming the moderation gate has passed.
func (s *Service) owned(ctx context.Context, actor domain.Actor, post *domain.Post, ct domain.ContentType) (bool, error) {
	if ct == domain.ContentInterview && post.IsPublic {
		return true, nil
	}
	if actor.ID == post.AuthorID {
		return true, nil
	}
	if actor.Role.CanModerate() {
		// Moderators read gated content for review without purchasing.
		return true, nil
	}
	return s.purchases.HasPurchased(ctx, actor.ID, post.ID, ct)
}
