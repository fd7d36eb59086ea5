// Package observability holds the Prometheus metrics for the token core:
// unlock outcomes, token flow, review transitions.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the core's counters.
type Metrics struct {
	// Unlock outcomes.
	UnlocksTotal        *prometheus.CounterVec // by content_type
	UnlocksAlreadyOwned prometheus.Counter
	UnlocksDenied       prometheus.Counter // insufficient funds

	// Token flow.
	TokensDebited  prometheus.Counter
	TokensCredited prometheus.Counter

	// Review activity.
	SelectionsTotal  prometheus.Counter
	ModerationsTotal *prometheus.CounterVec // by entity, outcome
}

// NewMetrics registers the core metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UnlocksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candid_unlocks_total",
			Help: "Successful paid unlocks by content type.",
		}, []string{"content_type"}),
		UnlocksAlreadyOwned: f.NewCounter(prometheus.CounterOpts{
			Name: "candid_unlocks_already_owned_total",
			Help: "Unlock requests short-circuited as already owned (public, author, or prior purchase).",
		}),
		UnlocksDenied: f.NewCounter(prometheus.CounterOpts{
			Name: "candid_unlocks_denied_total",
			Help: "Unlock requests rejected for insufficient token balance.",
		}),
		TokensDebited: f.NewCounter(prometheus.CounterOpts{
			Name: "candid_tokens_debited_total",
			Help: "Tokens debited from accounts by unlocks.",
		}),
		TokensCredited: f.NewCounter(prometheus.CounterOpts{
			Name: "candid_tokens_credited_total",
			Help: "Tokens credited to accounts by selection rewards.",
		}),
		SelectionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "candid_selections_total",
			Help: "Corrections selected as the chosen answer.",
		}),
		ModerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "candid_moderations_total",
			Help: "Moderation transitions by entity and outcome.",
		}, []string{"entity", "outcome"}),
	}
}
