// Package metrics defines and registers all custom Prometheus metrics for
// the rewards gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry via promauto at package
// load; the HTTP layer only needs to expose /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rewards"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionBootstrapsTotal counts bootstrap outcomes.
// Label:
//   - outcome: "active", "empty", "cleared" (stale session destroyed), or
//     "degraded" (backend unreachable, persisted copy kept)
var SessionBootstrapsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_bootstraps_total",
		Help:      "Total number of session bootstraps, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "unverified_email", "rejected", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Action metrics ────────────────────────────────────────────────────────────

// ActionsTotal counts point-affecting actions relayed to the backend.
// Labels:
//   - action: the orchestrated action name (e.g. "vote", "submit_prediction")
//   - result: "success", "rejected", "in_flight", or "error"
var ActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Total number of point-affecting actions, by action and result.",
	},
	[]string{"action", "result"},
)

// RefreshFailuresTotal counts post-action snapshot refreshes that failed,
// leaving a stale balance until the next refresh.
var RefreshFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_failures_total",
		Help:      "Total number of failed post-action user snapshot refreshes.",
	},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDecisionsTotal counts route guard evaluations.
// Label:
//   - action: "render", "redirect", or "loading"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by resulting action.",
	},
	[]string{"action"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatConversationsOpen tracks how many conversations currently have an
// active poller.
var ChatConversationsOpen = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chat_conversations_open",
		Help:      "Number of conversations currently being polled.",
	},
)
