package route

import "github.com/dtnlab/sabre/core"

// PathFindingOutput is the result of one pathfinding pass: the source
// stage, the per-node best stage (nil where unreached), and the inputs the
// pass was keyed on, which storage uses as its reuse predicate.
type PathFindingOutput struct {
	// Bundle is a snapshot of the bundle the pass was computed for.
	Bundle core.Bundle

	// SourceStage is the root of the tree.
	SourceStage *RouteStage

	// ExcludedSorted is the sorted exclusion set the pass honoured.
	ExcludedSorted []core.NodeID

	// ByDestination holds, indexed by NodeID, the best stage reaching each
	// node, or nil when the search found none.
	ByDestination []*RouteStage
}

// RouteTo returns the best stage reaching dest, or nil when the node is
// out of range or unreached.
func (o *PathFindingOutput) RouteTo(dest core.NodeID) *RouteStage {
	if int(dest) >= len(o.ByDestination) {
		return nil
	}

	return o.ByDestination[dest]
}

// InitForDestination materializes the forward plan toward dest, if reached.
func (o *PathFindingOutput) InitForDestination(dest core.NodeID) {
	if stage := o.RouteTo(dest); stage != nil {
		InitRoute(stage)
	}
}

// Route pairs the two ends of a single-destination plan extracted from a
// tree; the CGR routing table stores these.
type Route struct {
	SourceStage      *RouteStage
	DestinationStage *RouteStage
}

// FromTree extracts the route toward dest from a pathfinding output, or
// nil when the tree does not reach it.
func FromTree(tree *PathFindingOutput, dest core.NodeID) *Route {
	destStage := tree.RouteTo(dest)
	if destStage == nil {
		return nil
	}

	return &Route{SourceStage: tree.SourceStage, DestinationStage: destStage}
}
