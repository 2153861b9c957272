package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gate labels used in decision metrics.
const (
	GateRoute      = "route"
	GatePermission = "permission"
	GateRole       = "role"
	GateStoredRole = "stored_role"
)

var (
	// AuthzDecisionsTotal counts decisions by gate and outcome.
	AuthzDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"gate", "decision"},
	)

	// AuthzDeniedTotal tracks denials by reason for alerting.
	AuthzDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_denied_total",
			Help: "Total number of authorization denials",
		},
		[]string{"gate", "reason"},
	)

	// ClaimsRefreshTotal counts claims refreshes that had to read the identity store.
	ClaimsRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_claims_refresh_total",
			Help: "Total number of claims re-derivations from the identity store",
		},
		[]string{"outcome"},
	)
)

// RecordDecision updates the decision counters.
func RecordDecision(gate string, allowed bool, reason string) {
	decision := "allow"
	if !allowed {
		decision = "deny"
		AuthzDeniedTotal.WithLabelValues(gate, reason).Inc()
	}
	AuthzDecisionsTotal.WithLabelValues(gate, decision).Inc()
}

// RecordClaimsRefresh counts one refresh outcome ("resolved", "not_found", "error", "breaker_open").
func RecordClaimsRefresh(outcome string) {
	ClaimsRefreshTotal.WithLabelValues(outcome).Inc()
}
