// Package routing orchestrates the engine: the CGR and SPSN routers that
// take a bundle through storage lookup, pathfinding, dry-run verification
// and commitment, updating per-contact bookkeeping so later bundles see the
// committed load.
//
// Both routers implement Router. Absence of a route is a nil RoutingOutput,
// never an error. All calls on one router must come from a single goroutine
// with non-decreasing curr_time (see the multigraph's prune cursor).
//
// The source's compile-time capabilities are construction-time options
// here: WithPriorities, WithSuppression, WithNodeProcessing, WithDistance,
// WithMetrics.
package routing

import (
	"sort"

	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/distance"
	"github.com/dtnlab/sabre/pathfind"
	"github.com/dtnlab/sabre/route"
)

// Router computes and commits a forwarding plan for one bundle.
type Router interface {
	// Route returns the committed plan for bundle injected at source at
	// currTime, or nil when no destination is reachable. excluded lists
	// nodes the plan must avoid; it need not be sorted.
	Route(source core.NodeID, bundle *core.Bundle, currTime core.Date, excluded []core.NodeID) *RoutingOutput
}

// FirstHop is one entry of a routing output: a first-hop contact and the
// destination stages it serves (one for unicast; the subtree's reached
// destinations for multicast).
type FirstHop struct {
	Contact      *core.Contact
	Destinations []*route.RouteStage
}

// RoutingOutput groups a committed plan's first hops by stable contact ID.
type RoutingOutput struct {
	FirstHops map[int]FirstHop
}

// SuppressionPolicy selects CGR's recovery heuristic when a cached or
// freshly found route fails its pre-commit dry-run.
type SuppressionPolicy int

const (
	// SuppressNone disables retries: a failed dry-run ends the call.
	SuppressNone SuppressionPolicy = iota

	// SuppressFirstEnding marks the earliest-ending contact of the failed
	// route and searches again.
	SuppressFirstEnding

	// SuppressFirstDepleted marks the contact with the least remaining
	// volume (falling back to first-ending when managers expose none) and
	// searches again.
	SuppressFirstDepleted
)

// options carries the construction-time capabilities shared by the routers.
type options struct {
	withPriorities bool
	suppression    SuppressionPolicy
	dist           distance.Distance
	proc           pathfind.NodeProc
	metrics        *Metrics
}

func defaultOptions() options {
	return options{dist: distance.SABR{}}
}

// Option configures a router at construction.
type Option func(*options)

// WithPriorities enables the three-band priority semantics: the Guard keys
// records by bundle priority. The contact managers must have been built
// with their priority variants.
func WithPriorities() Option {
	return func(o *options) { o.withPriorities = true }
}

// WithSuppression selects CGR's retry heuristic. SPSN ignores it.
func WithSuppression(policy SuppressionPolicy) Option {
	return func(o *options) { o.suppression = policy }
}

// WithDistance overrides the SABR distance order (e.g. distance.Hop{}).
func WithDistance(d distance.Distance) Option {
	return func(o *options) { o.dist = d }
}

// WithNodeProcessing installs a per-node bundle rewriter applied before
// every hop, in search and replay alike.
func WithNodeProcessing(proc pathfind.NodeProc) Option {
	return func(o *options) { o.proc = proc }
}

// WithMetrics attaches a Prometheus metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// sortedExclusions returns a sorted copy of the exclusion list; storage
// predicates and the multigraph merge both require sorted input.
func sortedExclusions(excluded []core.NodeID) []core.NodeID {
	s := append([]core.NodeID(nil), excluded...)
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })

	return s
}

// singleHopOutput wraps a committed unicast plan.
func singleHopOutput(first *core.Contact, final *route.RouteStage) *RoutingOutput {
	return &RoutingOutput{FirstHops: map[int]FirstHop{
		first.ID: {Contact: first, Destinations: []*route.RouteStage{final}},
	}}
}
