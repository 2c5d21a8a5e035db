package routing

import (
	"math"
	"sort"

	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/multigraph"
	"github.com/dtnlab/sabre/pathfind"
	"github.com/dtnlab/sabre/route"
	"github.com/dtnlab/sabre/storage"
)

// Cgr is the Contact Graph Routing router: per-bundle single-destination
// pathfinding with a per-destination route table and, optionally,
// suppression-based recovery when a cached or fresh route fails its
// pre-commit dry-run.
//
// Cgr is unicast-only; a multi-destination bundle yields no route.
type Cgr struct {
	pathfinding *pathfind.NodeGraph
	store       storage.RouteStorage
	opts        options
}

// NewCgr builds a CGR router over the given contact plan and route table.
func NewCgr(nodes []core.Node, contacts []*core.Contact, store storage.RouteStorage, opts ...Option) (*Cgr, error) {
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

	return &Cgr{
		pathfinding: pathfind.NewPath(graph, o.dist, pfOpts...),
		store:       store,
		opts:        o,
	}, nil
}

// Graph exposes the router's multigraph.
func (c *Cgr) Graph() *multigraph.Multigraph { return c.pathfinding.Graph() }

// Route implements Router.
func (c *Cgr) Route(source core.NodeID, bundle *core.Bundle, currTime core.Date, excluded []core.NodeID) *RoutingOutput {
	if len(bundle.Destinations) != 1 {
		return nil
	}

	return c.routeUnicast(source, bundle, currTime, sortedExclusions(excluded))
}

func (c *Cgr) routeUnicast(source core.NodeID, bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) *RoutingOutput {
	dest := bundle.Destinations[0]
	graph := c.pathfinding.Graph()

	// Suppression marks do not outlive one routing call. Contacts toward
	// excluded nodes are suppressed for this call: the single-path search
	// does not read the receivers' exclusion bits.
	graph.EachContact(func(contact *core.Contact) {
		rx := contact.Info.RxNode
		i := sort.Search(len(excludedSorted), func(i int) bool { return excludedSorted[i] >= rx })
		contact.Suppressed = i < len(excludedSorted) && excludedSorted[i] == rx
	})

	graph.ApplyExclusionsSorted(excludedSorted)

	if rt := c.store.Select(bundle, currTime, excludedSorted); rt != nil {
		c.opts.metrics.CacheHit("cgr")
		c.opts.metrics.Routed("cgr", outcomeRouted)

		return c.scheduleUnicastPath(bundle, dest, currTime, rt)
	}

	// Pathfinding probes with a constraint-free copy of the bundle: volume
	// and priority feasibility is re-established by the real-bundle dry-run
	// below, and failures feed the suppression retry.
	probe := bundle.Clone()
	probe.Priority = core.PriorityStandard
	probe.Size = 0

	for {
		tree := c.pathfinding.Find(currTime, source, &probe, excludedSorted)
		c.opts.metrics.PathfindingRun("cgr")

		rt := route.FromTree(tree, dest)
		if rt == nil {
			c.opts.metrics.Routed("cgr", outcomeNoRoute)

			return nil
		}

		route.InitRoute(rt.DestinationStage)
		c.store.Store(bundle, rt, excludedSorted)

		if route.DryRunUnicastPath(bundle, currTime, rt.SourceStage, rt.DestinationStage, false) != nil {
			c.opts.metrics.Routed("cgr", outcomeRouted)

			return c.scheduleUnicastPath(bundle, dest, currTime, rt)
		}

		if c.opts.suppression == SuppressNone || !c.suppressOn(rt) {
			c.opts.metrics.Routed("cgr", outcomeNoRoute)

			return nil
		}
	}
}

func (c *Cgr) scheduleUnicastPath(bundle *core.Bundle, dest core.NodeID, currTime core.Date, rt *route.Route) *RoutingOutput {
	first, final := route.UpdateUnicast(bundle, dest, currTime, rt.SourceStage)

	return singleHopOutput(first, final)
}

// suppressOn marks one contact of a failed route according to the
// configured policy, removing it from the next search round. It reports
// false when the route carries nothing to suppress (retrying would not
// change the search).
func (c *Cgr) suppressOn(rt *route.Route) bool {
	vias := route.Hops(rt.DestinationStage)

	var victim *core.Contact
	if c.opts.suppression == SuppressFirstDepleted {
		victim = firstDepleted(vias)
	}
	if victim == nil {
		victim = firstEnding(vias)
	}
	if victim == nil {
		return false
	}

	victim.Suppressed = true
	c.opts.metrics.Suppression()

	return true
}

// firstEnding picks the earliest-ending contact on the route.
func firstEnding(vias []*route.Via) *core.Contact {
	var victim *core.Contact
	end := math.Inf(1)
	for _, via := range vias {
		if via.Contact.Info.End < end {
			victim, end = via.Contact, via.Contact.Info.End
		}
	}

	return victim
}

// firstDepleted picks the contact whose remaining volume is closest to
// exhaustion, among those whose managers report volumes; nil when none do.
func firstDepleted(vias []*route.Via) *core.Contact {
	var victim *core.Contact
	remaining := math.Inf(1)
	for _, via := range vias {
		orig, ok := via.Contact.Manager.(core.VolumeReporter)
		if !ok {
			continue
		}
		queued, ok := via.Contact.Manager.(core.QueueReporter)
		if !ok {
			continue
		}
		if left := orig.OriginalVolume() - queued.QueuedVolume(); left < remaining {
			victim, remaining = via.Contact, left
		}
	}

	return victim
}
