// Package review drives the two moderation state machines: the post
// lifecycle (pending → approved/rejected) and the correction lifecycle
// (pending → approved/rejected, approved → selected).
//
// Selection is the only transition with side effects: marking the chosen
// correction pays its author the fixed platform reward and flags the parent
// post, all inside one store transaction.
package review

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/candid-forum/candid/internal/app/notify"
	"github.com/candid-forum/candid/internal/domain"
	"github.com/candid-forum/candid/internal/infra/observability"
)

// Service owns the status and selection fields of posts and corrections.
// No other collaborator writes them.
type Service struct {
	content domain.ContentRegistry
	hub     *notify.Hub
	metrics *observability.Metrics
}

// New creates a review service over the content registry.
func New(content domain.ContentRegistry) *Service {
	return &Service{content: content}
}

// SetNotifier sets the fire-and-forget notification hub.
func (s *Service) SetNotifier(h *notify.Hub) { s.hub = h }

// SetMetrics sets the metrics sink.
func (s *Service) SetMetrics(m *observability.Metrics) { s.metrics = m }

// ─── Submissions ────────────────────────────────────────────────────────────

// SubmitPost creates a new interview post in pending status.
func (s *Service) SubmitPost(ctx context.Context, actor domain.Actor, title, body string, isPublic bool) (*domain.Post, error) {
	post := &domain.Post{
		ID:       uuid.NewString(),
		AuthorID: actor.ID,
		Title:    title,
		Body:     body,
		IsPublic: isPublic,
	}
	if err := s.content.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	log.Printf("[review] post submitted id=%s author=%s", post.ID, actor.ID)
	return post, nil
}

// SubmitCorrection creates a new correction in pending status. The target
// post must be visible to the submitter.
func (s *Service) SubmitCorrection(ctx context.Context, actor domain.Actor, postID, content string) (*domain.Correction, error) {
	post, err := s.content.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.VisibleTo(actor) {
		return nil, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}

	c := &domain.Correction{
		ID:       uuid.NewString(),
		PostID:   postID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.content.CreateCorrection(ctx, c); err != nil {
		return nil, err
	}
	log.Printf("[review] correction submitted id=%s post=%s author=%s", c.ID, postID, actor.ID)
	return c, nil
}

// ─── Post Moderation ────────────────────────────────────────────────────────

// ModeratePost transitions a pending post to approved or rejected.
// Moderator-only. Both target states are terminal for this core.
func (s *Service) ModeratePost(ctx context.Context, actor domain.Actor, postID string, to domain.ModerationStatus) (*domain.Post, error) {
	if !actor.Role.CanModerate() {
		return nil, fmt.Errorf("moderate post as %s: %w", actor.Role, domain.ErrForbidden)
	}

	post, err := s.content.SetPostStatus(ctx, postID, to)
	if err != nil {
		return nil, err
	}
	log.Printf("[review] post %s %s by %s", postID, to, actor.ID)
	if s.metrics != nil {
		s.metrics.ModerationsTotal.WithLabelValues("post", string(to)).Inc()
	}
	return post, nil
}

// ─── Correction Review ──────────────────────────────────────────────────────

// ReviewCorrection transitions a pending correction to approved or rejected.
// Moderator-only. No side effects beyond the status write.
func (s *Service) ReviewCorrection(ctx context.Context, actor domain.Actor, correctionID string, to domain.ModerationStatus) (*domain.Correction, error) {
	if !actor.Role.CanModerate() {
		return nil, fmt.Errorf("review correction as %s: %w", actor.Role, domain.ErrForbidden)
	}

	c, err := s.content.SetCorrectionStatus(ctx, correctionID, to)
	if err != nil {
		return nil, err
	}
	log.Printf("[review] correction %s %s by %s", correctionID, to, actor.ID)
	if s.metrics != nil {
		s.metrics.ModerationsTotal.WithLabelValues("correction", string(to)).Inc()
	}
	return c, nil
}

// Select marks an approved correction as the chosen answer for its post.
// Allowed for the post author, or a moderator override. Competing approved
// corrections stay approved, simply not selected; once set, the selection
// is immutable.
func (s *Service) Select(ctx context.Context, actor domain.Actor, correctionID string) (*domain.Correction, error) {
	c, err := s.content.GetCorrection(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	post, err := s.content.GetPost(ctx, c.PostID)
	if err != nil {
		return nil, err
	}
	if actor.ID != post.AuthorID && !actor.Role.CanModerate() {
		return nil, fmt.Errorf("select correction as %s: %w", actor.ID, domain.ErrForbidden)
	}

	selected, err := s.content.SelectCorrection(ctx, correctionID, domain.SelectionReward)
	if err != nil {
		return nil, err
	}

	log.Printf("[review] correction %s selected for post %s, %d tokens to %s",
		correctionID, post.ID, selected.TokensAwarded, selected.AuthorID)
	if s.metrics != nil {
		s.metrics.SelectionsTotal.Inc()
		s.metrics.TokensCredited.Add(float64(selected.TokensAwarded))
	}
	if s.hub != nil {
		s.hub.Publish(notify.Event{
			Kind:         notify.KindSelection,
			UserID:       selected.AuthorID,
			PostID:       post.ID,
			CorrectionID: selected.ID,
			Tokens:       selected.TokensAwarded,
		})
	}
	return selected, nil
}
