// Package metrics defines and registers the custom Prometheus metrics of the
// LingoLeap API. It is the single source of truth for metric names, labels and
// help strings. All metrics live on the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lingoleap"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts session protocol calls.
// Labels:
//   - operation: "register", "login", "refresh" or "logout"
//   - result: "success", or a short failure reason (e.g. "invalid_credentials", "rejected", "error")
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of session protocol operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenVerificationFailuresTotal counts rejected bearer tokens at the Auth Gate.
// Label:
//   - reason: "missing_header", "malformed_header" or "invalid_token"
var TokenVerificationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verification_failures_total",
		Help:      "Total number of requests rejected by the access token gate.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// SessionEventsDroppedTotal counts audit events discarded because a worker queue was full.
var SessionEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_dropped_total",
		Help:      "Total number of session audit events dropped due to a full queue.",
	},
)

// SessionEventsWrittenTotal counts audit events persisted, labelled by result ("ok" or "error").
var SessionEventsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_written_total",
		Help:      "Total number of session audit events handed to the repository, by result.",
	},
	[]string{"result"},
)
