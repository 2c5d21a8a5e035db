package routing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the routes_total counter.
const (
	outcomeRouted  = "routed"
	outcomeNoRoute = "no_route"
	outcomeExpired = "expired"
	outcomeGuard   = "guard_abort"
)

// Metrics is an optional Prometheus sink for router activity. All metrics
// are namespaced "sabre_". A nil *Metrics is valid and records nothing, so
// routers call through it unconditionally.
//
// Exposed series:
//
//	sabre_routes_total{router,outcome}  routing calls by result
//	sabre_cache_hits_total{router}      storage entries reused
//	sabre_pathfinding_runs_total{router} Dijkstra passes executed
//	sabre_guard_aborts_total            bundles rejected by the Guard
//	sabre_suppressions_total            contacts suppressed by CGR retries
type Metrics struct {
	routes          *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	pathfindingRuns *prometheus.CounterVec
	guardAborts     prometheus.Counter
	suppressions    prometheus.Counter
}

// NewMetrics registers the router metrics with reg (use
// prometheus.DefaultRegisterer for the process-global registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sabre",
			Name:      "routes_total",
			Help:      "Routing calls by router and outcome.",
		}, []string{"router", "outcome"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sabre",
			Name:      "cache_hits_total",
			Help:      "Route/tree storage entries reused after successful replay.",
		}, []string{"router"}),
		pathfindingRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sabre",
			Name:      "pathfinding_runs_total",
			Help:      "Dijkstra passes executed.",
		}, []string{"router"}),
		guardAborts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sabre",
			Name:      "guard_aborts_total",
			Help:      "Bundles aborted by the infeasibility guard without a search.",
		}),
		suppressions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sabre",
			Name:      "suppressions_total",
			Help:      "Contacts suppressed by CGR retry policies.",
		}),
	}
}

// Routed counts one routing call under its outcome.
func (m *Metrics) Routed(router, outcome string) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(router, outcome).Inc()
}

// CacheHit counts one storage reuse.
func (m *Metrics) CacheHit(router string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(router).Inc()
}

// PathfindingRun counts one Dijkstra pass.
func (m *Metrics) PathfindingRun(router string) {
	if m == nil {
		return
	}
	m.pathfindingRuns.WithLabelValues(router).Inc()
}

// GuardAbort counts one guard rejection.
func (m *Metrics) GuardAbort() {
	if m == nil {
		return
	}
	m.guardAborts.Inc()
}

// Suppression counts one suppressed contact.
func (m *Metrics) Suppression() {
	if m == nil {
		return
	}
	m.suppressions.Inc()
}
