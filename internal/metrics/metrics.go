// Package metrics defines all custom Prometheus metrics for the account
// service. It is the single source of truth for metric names, labels, and
// help strings.
//
// Collectors are created unregistered so that packages can record values in
// tests without a registry. Call Register once at startup with the registry
// served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "accounts"

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts signup attempts that reached the store.
// Label:
//   - result: "created" or "duplicate"
var RegistrationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "registrations_total",
		Help:      "Total number of registrations, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts session issuance attempts.
// Label:
//   - result: "accepted" or "rejected"
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UserMutationsTotal counts successful updates and deletes.
// Labels:
//   - op: "update" or "delete"
//   - scope: "self" or "admin"
var UserMutationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of persisted user mutations, by operation and scope.",
	},
	[]string{"op", "scope"},
)

// AuthorizationDenialsTotal counts admin operations refused for lack of role.
// Label:
//   - role: the role held by the refused caller
var AuthorizationDenialsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of admin operations refused, by caller role.",
	},
	[]string{"role"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts lifecycle events delivered to the stream.
// Label:
//   - type: the event type (e.g. "user.registered")
var EventsPublishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "events_published_total",
		Help:      "Total number of user lifecycle events published.",
	},
	[]string{"type"},
)

// EventsErrorsTotal counts lifecycle events that could not be published.
// Label:
//   - type: the event type
var EventsErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "events_errors_total",
		Help:      "Total number of user lifecycle events that failed to publish.",
	},
	[]string{"type"},
)

// EventsDroppedTotal counts lifecycle events discarded because the worker
// channel was full.
// Label:
//   - type: the event type
var EventsDroppedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of user lifecycle events dropped on a full queue.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// UserCacheTotal counts user view cache lookups.
// Label:
//   - result: "hit", "miss" or "tombstone"
var UserCacheTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "user_cache_total",
		Help:      "Total number of user cache lookups, labelled by result (hit/miss/tombstone).",
	},
	[]string{"result"},
)

// Register adds every collector above to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		UserMutationsTotal,
		AuthorizationDenialsTotal,
		EventsPublishedTotal,
		EventsErrorsTotal,
		EventsDroppedTotal,
		EventsQueueDepth,
		UserCacheTotal,
	)
}
