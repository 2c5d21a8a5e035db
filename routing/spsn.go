package routing

import (
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/multigraph"
	"github.com/dtnlab/sabre/pathfind"
	"github.com/dtnlab/sabre/route"
	"github.com/dtnlab/sabre/storage"
)

// Spsn is the Shortest Path with Safety Nodes router: tree-based
// pathfinding with tree memoization, a per-(destination, priority)
// infeasibility guard, and multicast support.
type Spsn struct {
	pathfinding *pathfind.NodeGraph
	store       storage.TreeStorage
	guard       *storage.Guard
	opts        options
}

// NewSpsn builds an SPSN router over the given contact plan and tree
// storage.
func NewSpsn(nodes []core.Node, contacts []*core.Contact, store storage.TreeStorage, opts ...Option) (*Spsn, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	graph, err := multigraph.New(nodes, contacts)
	if err != nil {
		return nil, err
	}

	var pfOpts []pathfind.Option
	if o.proc != nil {
		pfOpts = append(pfOpts, pathfind.WithNodeProcessing(o.proc))
	}

	return &Spsn{
		pathfinding: pathfind.NewTree(graph, o.dist, pfOpts...),
		store:       store,
		guard:       storage.NewGuard(o.withPriorities),
		opts:        o,
	}, nil
}

// Graph exposes the router's multigraph, e.g. for external queue updates on
// manually-managed contacts.
func (s *Spsn) Graph() *multigraph.Multigraph { return s.pathfinding.Graph() }

// Route implements Router: unicast for a single destination, multicast
// otherwise.
func (s *Spsn) Route(source core.NodeID, bundle *core.Bundle, currTime core.Date, excluded []core.NodeID) *RoutingOutput {
	excludedSorted := sortedExclusions(excluded)

	if len(bundle.Destinations) == 1 {
		return s.routeUnicast(source, bundle, currTime, excludedSorted)
	}

	return s.routeMulticast(source, bundle, currTime, excludedSorted)
}

func (s *Spsn) routeUnicast(source core.NodeID, bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) *RoutingOutput {
	if s.guard.MustAbort(bundle) {
		s.opts.metrics.GuardAbort()
		s.opts.metrics.Routed("spsn", outcomeGuard)

		return nil
	}

	dest := bundle.Destinations[0]

	if tree, _, ok := s.store.Select(bundle, currTime, excludedSorted); ok {
		// The select replay already re-verified the cached plan; commit it.
		s.opts.metrics.CacheHit("spsn")
		s.opts.metrics.Routed("spsn", outcomeRouted)

		return s.scheduleUnicast(bundle, currTime, tree, false)
	}

	tree := s.pathfinding.Find(currTime, source, bundle, excludedSorted)
	s.opts.metrics.PathfindingRun("spsn")
	s.store.Store(bundle, tree)

	destStage := tree.RouteTo(dest)
	if destStage == nil {
		// Provably no route at this size: remember it so retries abort
		// without searching.
		s.guard.AddLimit(bundle, dest)
		s.opts.metrics.Routed("spsn", outcomeNoRoute)

		return nil
	}
	if destStage.AtTime > bundle.Expiration {
		s.opts.metrics.Routed("spsn", outcomeExpired)

		return nil
	}

	s.opts.metrics.Routed("spsn", outcomeRouted)

	return s.scheduleUnicast(bundle, currTime, tree, true)
}

// scheduleUnicast commits the tree's plan toward the bundle's destination.
// initTree materializes the forward edges first (fresh trees have only
// back-pointers; a cache hit was materialized during replay).
func (s *Spsn) scheduleUnicast(bundle *core.Bundle, currTime core.Date, tree *route.PathFindingOutput, initTree bool) *RoutingOutput {
	dest := bundle.Destinations[0]
	if initTree {
		tree.InitForDestination(dest)
	}

	first, final := route.UpdateUnicast(bundle, dest, currTime, tree.SourceStage)

	return singleHopOutput(first, final)
}

func (s *Spsn) routeMulticast(source core.NodeID, bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) *RoutingOutput {
	if tree, reachable, ok := s.store.Select(bundle, currTime, excludedSorted); ok {
		// A partially covering tree is not good enough: a fresh search may
		// reach more destinations.
		if len(reachable) == len(bundle.Destinations) {
			s.opts.metrics.CacheHit("spsn")

			return s.recordOutcome(s.scheduleMulticast(bundle, currTime, tree, reachable, false))
		}
	}

	tree := s.pathfinding.Find(currTime, source, bundle, excludedSorted)
	s.opts.metrics.PathfindingRun("spsn")
	s.store.Store(bundle, tree)

	return s.recordOutcome(s.scheduleMulticast(bundle, currTime, tree, nil, true))
}

// recordOutcome counts a multicast result under its outcome label.
func (s *Spsn) recordOutcome(out *RoutingOutput) *RoutingOutput {
	if out == nil {
		s.opts.metrics.Routed("spsn", outcomeNoRoute)
	} else {
		s.opts.metrics.Routed("spsn", outcomeRouted)
	}

	return out
}

// scheduleMulticast commits the tree for every reachable destination.
// dryRunFirst runs the replay on a fresh tree (a cache hit's replay already
// produced targets).
func (s *Spsn) scheduleMulticast(bundle *core.Bundle, currTime core.Date, tree *route.PathFindingOutput, targets []core.NodeID, dryRunFirst bool) *RoutingOutput {
	if dryRunFirst {
		targets = route.DryRunMulticast(bundle, currTime, tree)
	}
	if len(targets) == 0 {
		return nil
	}

	route.UpdateMulticast(bundle, currTime, tree, targets)

	out := &RoutingOutput{FirstHops: make(map[int]FirstHop)}
	for contact, stages := range route.FirstHops(tree, targets) {
		out.FirstHops[contact.ID] = FirstHop{Contact: contact, Destinations: stages}
	}

	return out
}
