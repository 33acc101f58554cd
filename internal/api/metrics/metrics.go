// Package metrics defines and registers the custom Prometheus metrics of the
// connect API. HTTP request metrics come from echoprometheus; the ones here
// describe authentication, navigation and approval outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "connect"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts successful self-registrations.
// Label:
//   - role: "GCC" or "STARTUP"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of identities registered, by role.",
	},
	[]string{"role"},
)

// ── Navigation ───────────────────────────────────────────────────────────────

// NavigationDecisionsTotal counts route access decisions.
// Labels:
//   - pattern: matched route pattern, or "unknown"
//   - decision: "allow" or "redirect"
var NavigationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "navigation_decisions_total",
		Help:      "Total number of route access decisions.",
	},
	[]string{"pattern", "decision"},
)

// ── Approvals ────────────────────────────────────────────────────────────────

// ApprovalTransitionsTotal counts admin approval decisions.
// Label:
//   - status: the new approval status
var ApprovalTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_transitions_total",
		Help:      "Total number of approval status changes made by admins.",
	},
	[]string{"status"},
)

// ApprovalStreamSubscribers tracks open approval websocket streams.
var ApprovalStreamSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "approval_stream_subscribers",
		Help:      "Current number of open approval event streams.",
	},
)
