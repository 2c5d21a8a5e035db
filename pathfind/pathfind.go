// Package pathfind implements the Dijkstra variant at the heart of the
// engine: a shortest-route search over the time-varying contact multigraph,
// keyed by a pluggable distance order.
//
// Two search shapes share one implementation:
//
//   - NewTree builds the full shortest-route tree rooted at the source,
//     honouring the exclusion set (the SPSN router consumes these);
//   - NewPath stops as soon as the bundle's destination leaves the priority
//     queue and ignores the exclusion set (the CGR router applies
//     exclusions by other means).
//
// Complexity, with V nodes, R receiver buckets and C contacts:
//
//   - Time:  O((V + R·log V)·α + C) amortized over a router's lifetime —
//     each pop relaxes at most one contact per receiver bucket (the first
//     feasible one), and the per-bucket prune cursor advances over C
//     contacts once across all searches.
//   - Space: O(V + R) per search for stages and heap entries.
//
// The priority queue uses the lazy-decrease-key pattern: relaxation updates
// the stage in place and pushes a fresh snapshot; stale snapshots are
// recognized and skipped when popped.
package pathfind

import (
	"container/heap"

	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/distance"
	"github.com/dtnlab/sabre/multigraph"
	"github.com/dtnlab/sabre/route"
)

// NodeProc rewrites a bundle as it transits a node, modelling node-local
// processing (header growth, re-encapsulation). The returned bundle is used
// for every hop departing that node.
type NodeProc func(node core.NodeID, bundle *core.Bundle) core.Bundle

// Option configures a NodeGraph.
type Option func(*NodeGraph)

// WithNodeProcessing installs a per-node bundle rewriter applied before
// each hop during the search and carried on the resulting stages for
// replay.
func WithNodeProcessing(proc NodeProc) Option {
	return func(ng *NodeGraph) { ng.proc = proc }
}

// NodeGraph is a Dijkstra search over a contact multigraph under a distance
// order. The zero value is not usable; construct with NewTree or NewPath.
type NodeGraph struct {
	graph *multigraph.Multigraph
	dist  distance.Distance

	// tree selects full-tree output; otherwise the search terminates when
	// the first destination is popped.
	tree bool

	// useExclusions applies the exclusion set to receiver buckets.
	useExclusions bool

	proc NodeProc
}

// NewTree returns the full-tree search variant, honouring exclusions.
func NewTree(g *multigraph.Multigraph, dist distance.Distance, opts ...Option) *NodeGraph {
	ng := &NodeGraph{graph: g, dist: dist, tree: true, useExclusions: true}
	for _, opt := range opts {
		opt(ng)
	}

	return ng
}

// NewPath returns the early-terminating single-destination variant. It
// ignores the exclusion set.
func NewPath(g *multigraph.Multigraph, dist distance.Distance, opts ...Option) *NodeGraph {
	ng := &NodeGraph{graph: g, dist: dist}
	for _, opt := range opts {
		opt(ng)
	}

	return ng
}

// Graph exposes the underlying multigraph (routers share it between the
// search and the scheduling pass).
func (ng *NodeGraph) Graph() *multigraph.Multigraph { return ng.graph }

// Find runs the search for bundle from source at currentTime and returns
// the resulting output: per-node best stages, nil where unreached.
//
// excludedSorted must be sorted ascending; it is honoured by the tree
// variant and recorded on the output either way (storage keys on it).
func (ng *NodeGraph) Find(currentTime core.Date, source core.NodeID, bundle *core.Bundle, excludedSorted []core.NodeID) *route.PathFindingOutput {
	// 1) Apply exclusions when this variant honours them.
	if ng.useExclusions {
		ng.graph.ApplyExclusionsSorted(excludedSorted)
	}

	// 2) Seed the per-node stages: the source with its real arrival time,
	//    every other node with the work-area sentinel.
	n := ng.graph.NodeCount()
	sourceStage := route.NewSource(currentTime, source)
	stages := make([]*route.RouteStage, n)
	for i := range stages {
		if core.NodeID(i) == source {
			stages[i] = sourceStage
		} else {
			stages[i] = route.NewWorkArea(core.NodeID(i))
		}
	}

	r := &runner{
		ng:          ng,
		bundle:      bundle,
		currentTime: currentTime,
		stages:      stages,
		pq:          stagePQ{dist: ng.dist},
	}
	r.run(sourceStage)

	// 3) Assemble the output: only stages the search actually reached.
	out := &route.PathFindingOutput{
		Bundle:         bundle.Clone(),
		SourceStage:    sourceStage,
		ExcludedSorted: append([]core.NodeID(nil), excludedSorted...),
		ByDestination:  make([]*route.RouteStage, n),
	}
	for i, stage := range stages {
		if stage.Reached() {
			out.ByDestination[i] = stage
		}
	}

	return out
}

// runner holds the mutable state of a single search.
type runner struct {
	ng          *NodeGraph
	bundle      *core.Bundle
	currentTime core.Date
	stages      []*route.RouteStage
	pq          stagePQ
}

// run is the main Dijkstra loop.
func (r *runner) run(sourceStage *route.RouteStage) {
	heap.Init(&r.pq)
	heap.Push(&r.pq, newItem(sourceStage))

	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*stageItem)

		// Lazy decrease-key: drop snapshots made stale by a later
		// relaxation of the same stage.
		if item.stale() {
			continue
		}
		from := item.stage

		// The single-path variant is done once the destination is popped:
		// its distance is final.
		if !r.ng.tree && from.ToNode == r.bundle.Destinations[0] {
			return
		}

		r.relax(from)
	}
}

// relax expands every receiver bucket of the popped stage's node.
func (r *runner) relax(from *route.RouteStage) {
	sender := r.ng.graph.Sender(from.ToNode)

	for _, recv := range sender.Receivers {
		if r.ng.useExclusions && recv.Excluded() {
			continue
		}

		firstIdx, ok := recv.LazyPruneFirstIdx(r.currentTime)
		if !ok {
			continue
		}

		prop := r.tryMakeHop(firstIdx, from, recv)
		if prop == nil {
			continue
		}

		known := r.stages[recv.Node]
		if r.ng.dist.Less(prop, known) {
			known.UpdateWith(prop)
			heap.Push(&r.pq, newItem(known))
		}
	}
}

// tryMakeHop walks the receiver's contacts from firstIdx and builds a
// candidate stage from the first one whose dry-run admits the bundle.
// Contacts are ordered by end time, so under both distance orders the first
// feasible contact is the correct relaxation; the remaining parallel
// contacts are not enumerated.
func (r *runner) tryMakeHop(firstIdx int, from *route.RouteStage, recv *multigraph.Receiver) *route.RouteStage {
	b := r.bundle
	if from.Bundle != nil {
		b = from.Bundle
	}

	for i := firstIdx; i < len(recv.Contacts); i++ {
		c := recv.Contacts[i]
		if c.Suppressed {
			continue
		}

		data, ok := c.Manager.DryRunTx(c.Info, from.AtTime, b)
		if !ok {
			continue
		}

		expiration := from.Expiration
		if c.Info.End < expiration {
			expiration = c.Info.End
		}
		prop := &route.RouteStage{
			ToNode:     recv.Node,
			AtTime:     data.Arrival,
			HopCount:   from.HopCount + 1,
			Expiration: expiration,
			Via:        &route.Via{Contact: c, Parent: from},
		}
		if r.ng.proc != nil {
			rewritten := r.ng.proc(recv.Node, b)
			prop.Bundle = &rewritten
		}

		return prop
	}

	return nil
}

// stageItem is a heap entry: a stage plus the distance-key snapshot taken
// when it was pushed.
type stageItem struct {
	stage      *route.RouteStage
	atTime     core.Date
	hopCount   int
	expiration core.Date
}

func newItem(stage *route.RouteStage) *stageItem {
	return &stageItem{
		stage:      stage,
		atTime:     stage.AtTime,
		hopCount:   stage.HopCount,
		expiration: stage.Expiration,
	}
}

// stale reports whether the stage was relaxed again after this snapshot.
func (it *stageItem) stale() bool {
	return it.atTime != it.stage.AtTime ||
		it.hopCount != it.stage.HopCount ||
		it.expiration != it.stage.Expiration
}

// key materializes the snapshot as a stage for distance comparison.
func (it *stageItem) key() *route.RouteStage {
	return &route.RouteStage{
		AtTime:     it.atTime,
		HopCount:   it.hopCount,
		Expiration: it.expiration,
	}
}

// stagePQ is a min-heap of stage snapshots under the configured distance.
type stagePQ struct {
	items []*stageItem
	dist  distance.Distance
}

func (pq *stagePQ) Len() int { return len(pq.items) }

func (pq *stagePQ) Less(i, j int) bool {
	return pq.dist.Less(pq.items[i].key(), pq.items[j].key())
}

func (pq *stagePQ) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }

func (pq *stagePQ) Push(x interface{}) { pq.items = append(pq.items, x.(*stageItem)) }

func (pq *stagePQ) Pop() interface{} {
	old := pq.items
	n := len(old)
	item := old[n-1]
	pq.items = old[:n-1]

	return item
}
