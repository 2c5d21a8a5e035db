package storage

import (
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/route"
)

// tableEntry is one cached route with the request context it was computed
// under.
type tableEntry struct {
	rt       *route.Route
	bundle   core.Bundle
	excluded []core.NodeID
}

// RoutingTable caches at most one route per destination, the CGR
// counterpart of TreeCache.
type RoutingTable struct {
	checkSize     bool
	checkPriority bool
	entries       map[core.NodeID]*tableEntry
}

// NewRoutingTable builds an empty routing table with the given shadowing
// flags.
func NewRoutingTable(checkSize, checkPriority bool) *RoutingTable {
	return &RoutingTable{
		checkSize:     checkSize,
		checkPriority: checkPriority,
		entries:       make(map[core.NodeID]*tableEntry),
	}
}

// Select returns the cached route toward the bundle's destination when it
// was computed under the same exclusion set, shadows the request, and its
// replay against current manager state still succeeds.
func (t *RoutingTable) Select(bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) *route.Route {
	entry, ok := t.entries[bundle.Destinations[0]]
	if !ok {
		return nil
	}
	if !entry.bundle.Shadows(bundle, t.checkSize, t.checkPriority) {
		return nil
	}
	if !equalNodeIDs(entry.excluded, excludedSorted) {
		return nil
	}

	// The stored route's forward plan was materialized before storing; no
	// re-initialization on replay.
	if route.DryRunUnicastPath(bundle, currTime, entry.rt.SourceStage, entry.rt.DestinationStage, false) == nil {
		return nil
	}

	return entry.rt
}

// Store records the route under its destination, replacing any previous
// entry, and snapshots the request context for the reuse predicate.
func (t *RoutingTable) Store(bundle *core.Bundle, r *route.Route, excludedSorted []core.NodeID) {
	t.entries[r.DestinationStage.ToNode] = &tableEntry{
		rt:       r,
		bundle:   bundle.Clone(),
		excluded: append([]core.NodeID(nil), excludedSorted...),
	}
}
