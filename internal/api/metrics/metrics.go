// Package metrics defines and registers all custom Prometheus metrics for the
// circulation API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "circulation"

// ── Circulation metrics ───────────────────────────────────────────────────────

// CheckoutsTotal counts successful checkouts.
// Label:
//   - replayed: "true" when an idempotency key matched an earlier checkout
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkouts, by whether they were idempotent replays.",
	},
	[]string{"replayed"},
)

// CheckoutFailuresTotal counts rejected checkouts.
// Label:
//   - reason: e.g. "no_copies", "invalid_date", "user_inactive", "not_found", "conflict"
var CheckoutFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_failures_total",
		Help:      "Total number of checkouts rejected, by reason.",
	},
	[]string{"reason"},
)

// ReturnsTotal counts completed returns.
// Label:
//   - late: "true" when a fine was assessed
var ReturnsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_total",
		Help:      "Total number of books returned, by lateness.",
	},
	[]string{"late"},
)

// FinesAssessedCents sums the fines locked at return time.
var FinesAssessedCents = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_assessed_cents_total",
		Help:      "Total late fines assessed at return, in cents.",
	},
)

// FinesPaidCents sums the fines settled.
var FinesPaidCents = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fines_paid_cents_total",
		Help:      "Total late fines paid, in cents.",
	},
)

// OverdueSweepUpdated counts loans moved to overdue by the sweeper.
var OverdueSweepUpdated = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "overdue_sweep_updated_total",
		Help:      "Total number of loans marked overdue by the sweeper.",
	},
)

// ── Batch return queue ────────────────────────────────────────────────────────

// ReturnQueueDepth tracks the number of returns waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ReturnQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "return_queue_depth",
		Help:      "Current number of returns pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ReturnProcessingDuration measures how long a queued return takes to apply.
// Label:
//   - outcome: "returned" or a failure reason
var ReturnProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "return_processing_duration_seconds",
		Help:      "Duration of queued return processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"outcome"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method, route: the registered echo path (e.g. "/v1/books/:id")
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)
