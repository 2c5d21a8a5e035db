// Package storage memoizes pathfinding results between routing calls and
// hosts the Guard that prunes provably infeasible retries.
//
// Two stores share one idea — an entry is reusable only if it was computed
// under the same exclusion set AND a dry-run replay against current manager
// state still succeeds end-to-end:
//
//   - TreeCache: a bounded FIFO of pathfinding trees (SPSN);
//   - RoutingTable: one cached route per destination (CGR).
//
// Optional bundle shadowing narrows reuse further: the cached entry's
// bundle must be at least as demanding (size and/or priority) as the
// requested one.
package storage

import (
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/route"
)

// TreeStorage stores and retrieves whole pathfinding trees.
type TreeStorage interface {
	// Select returns a cached tree reusable for this request, with the
	// destinations reachable under replay when the request is multicast.
	// The third return is false on a miss.
	Select(bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) (*route.PathFindingOutput, []core.NodeID, bool)

	// Store inserts a freshly computed tree.
	Store(bundle *core.Bundle, tree *route.PathFindingOutput)
}

// RouteStorage stores and retrieves single-destination routes.
type RouteStorage interface {
	// Select returns a cached route whose replay still succeeds, or nil.
	Select(bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) *route.Route

	// Store inserts a route under the exclusion set it was computed for;
	// its destination is taken from the route's final stage.
	Store(bundle *core.Bundle, r *route.Route, excludedSorted []core.NodeID)
}

// equalNodeIDs reports whether two sorted node lists are identical.
func equalNodeIDs(a, b []core.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
