package route

import (
	"math"

	"github.com/dtnlab/sabre/core"
)

// Via is the incoming edge of a route stage: the contact hopped over and
// the stage it was hopped from.
type Via struct {
	// Contact carries the transmission; shared with the multigraph.
	Contact *core.Contact

	// Parent is the stage the hop departs from.
	Parent *RouteStage
}

// RouteStage is a node of the pathfinding tree. Fields relax in place
// during Dijkstra (UpdateWith) and AtTime refreshes during replay walks;
// NextForDestination is populated post-hoc when a destination is committed.
type RouteStage struct {
	// ToNode is the node this stage reaches.
	ToNode core.NodeID

	// AtTime is the last-bit arrival time at ToNode.
	AtTime core.Date

	// HopCount is the number of contacts on the path from the source.
	HopCount int

	// Expiration is the minimum end-of-contact across the path: the moment
	// the route stops being usable.
	Expiration core.Date

	// Via is the incoming edge; nil on the source stage and on work-area
	// sentinels.
	Via *Via

	// NextForDestination maps a committed destination to the child stage on
	// its path. Populated by InitRoute.
	NextForDestination map[core.NodeID]*RouteStage

	// Bundle is the node-processing rewrite of the routed bundle as seen
	// when departing this stage; nil unless a node processor is configured.
	Bundle *core.Bundle
}

// NewSource returns the root stage: the bundle sits at node from atTime,
// zero hops, on a path that never expires.
func NewSource(atTime core.Date, node core.NodeID) *RouteStage {
	return &RouteStage{
		ToNode:             node,
		AtTime:             atTime,
		Expiration:         math.Inf(1),
		NextForDestination: make(map[core.NodeID]*RouteStage),
	}
}

// NewWorkArea returns the sentinel stage a node holds before the search
// reaches it: worse than any real stage under every distance policy.
func NewWorkArea(node core.NodeID) *RouteStage {
	return &RouteStage{
		ToNode:             node,
		AtTime:             math.Inf(1),
		HopCount:           math.MaxInt,
		Expiration:         math.Inf(-1),
		NextForDestination: make(map[core.NodeID]*RouteStage),
	}
}

// Reached reports whether the search ever relaxed this stage (false for an
// untouched work-area sentinel).
func (s *RouteStage) Reached() bool { return s.AtTime < math.Inf(1) }

// UpdateWith adopts the distance key and incoming edge of a better
// proposition, relaxing the stage in place.
func (s *RouteStage) UpdateWith(o *RouteStage) {
	s.AtTime = o.AtTime
	s.HopCount = o.HopCount
	s.Expiration = o.Expiration
	s.Via = o.Via
	s.Bundle = o.Bundle
}

// InitRoute converts the implicit parent-pointer chain ending at dest into
// a forward-walkable plan: every stage on the path gains a
// NextForDestination edge for dest's node.
func InitRoute(dest *RouteStage) {
	target := dest.ToNode
	child := dest
	for child.Via != nil {
		parent := child.Via.Parent
		if parent.NextForDestination == nil {
			parent.NextForDestination = make(map[core.NodeID]*RouteStage)
		}
		parent.NextForDestination[target] = child
		child = parent
	}
}

// DryRun replays this stage's hop for bundle departing at atTime, without
// mutating the contact manager, and refreshes AtTime with the granted
// arrival. It reports false when the hop no longer fits.
func (s *RouteStage) DryRun(atTime core.Date, bundle *core.Bundle) bool {
	data, ok := s.Via.Contact.Manager.DryRunTx(s.Via.Contact.Info, atTime, bundle)
	if !ok {
		return false
	}
	s.AtTime = data.Arrival

	return true
}

// Schedule commits this stage's hop, mutating the contact manager's
// bookkeeping, and refreshes AtTime with the committed arrival.
func (s *RouteStage) Schedule(atTime core.Date, bundle *core.Bundle) bool {
	data, ok := s.Via.Contact.Manager.ScheduleTx(s.Via.Contact.Info, atTime, bundle)
	if !ok {
		return false
	}
	s.AtTime = data.Arrival

	return true
}

// bundleAt resolves the bundle to use when departing stage s: the
// node-processing rewrite when one is attached, the routed bundle
// otherwise.
func bundleAt(s *RouteStage, bundle *core.Bundle) *core.Bundle {
	if s.Bundle != nil {
		return s.Bundle
	}

	return bundle
}
