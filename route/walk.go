package route

import "github.com/dtnlab/sabre/core"

// This file holds the walk helpers shared by the routers: replaying a
// committed plan against current manager state (dry-run) and committing it
// (schedule), for a single destination chain or a whole multicast tree.

// DryRunUnicastPath replays the chain source→…→destination for bundle
// departing at atTime. With initFirst, the forward plan toward the
// destination is materialized first (a fresh route out of pathfinding has
// only back-pointers). It returns the destination stage on success, nil
// when any hop no longer fits.
func DryRunUnicastPath(bundle *core.Bundle, atTime core.Date, source, dest *RouteStage, initFirst bool) *RouteStage {
	if initFirst {
		InitRoute(dest)
	}
	target := bundle.Destinations[0]

	curr := source.NextForDestination[target]
	for curr != nil {
		if !curr.DryRun(atTime, bundleAt(curr.Via.Parent, bundle)) {
			return nil
		}
		atTime = curr.AtTime

		if curr.ToNode == target {
			return curr
		}
		curr = curr.NextForDestination[target]
	}

	return nil
}

// DryRunUnicastTree replays the unicast plan held by a tree for bundle's
// single destination, materializing the forward edges on the way.
func DryRunUnicastTree(bundle *core.Bundle, atTime core.Date, tree *PathFindingOutput) *RouteStage {
	dest := tree.RouteTo(bundle.Destinations[0])
	if dest == nil {
		return nil
	}

	return DryRunUnicastPath(bundle, atTime, tree.SourceStage, dest, true)
}

// UpdateUnicast commits the chain toward dest, calling ScheduleTx hop by
// hop and reading back the committed arrival at each stage. It returns the
// first-hop contact and the destination stage.
//
// A schedule failure here means the preceding dry-run lied (manager state
// changed between replay and commit) and the plan is corrupt: it panics.
func UpdateUnicast(bundle *core.Bundle, dest core.NodeID, atTime core.Date, source *RouteStage) (*core.Contact, *RouteStage) {
	var firstHop *core.Contact

	curr := source.NextForDestination[dest]
	for curr != nil {
		if firstHop == nil {
			firstHop = curr.Via.Contact
		}
		if !curr.Schedule(atTime, bundleAt(curr.Via.Parent, bundle)) {
			panic("route: schedule failed after a successful dry run")
		}
		atTime = curr.AtTime

		if curr.ToNode == dest {
			return firstHop, curr
		}
		curr = curr.NextForDestination[dest]
	}

	panic("route: destination unreachable in committed plan")
}

// DryRunMulticast replays a multicast tree for bundle and returns the
// subset of its destinations still reachable with this bundle under
// current manager state. Shared path prefixes are visited once: children
// are grouped by stage identity before descending.
func DryRunMulticast(bundle *core.Bundle, atTime core.Date, tree *PathFindingOutput) []core.NodeID {
	reachableInTree := make([]core.NodeID, 0, len(bundle.Destinations))
	for _, dest := range bundle.Destinations {
		if tree.RouteTo(dest) != nil {
			tree.InitForDestination(dest)
			reachableInTree = append(reachableInTree, dest)
		}
	}

	var reached []core.NodeID
	recDryRunMulticast(bundle, atTime, reachableInTree, &reached, tree.SourceStage, true)

	return reached
}

func recDryRunMulticast(bundle *core.Bundle, atTime core.Date, reachable []core.NodeID, reached *[]core.NodeID, stage *RouteStage, isSource bool) {
	if !isSource {
		if !stage.DryRun(atTime, bundle) {
			return
		}
		atTime = stage.AtTime
	}

	b := bundleAt(stage, bundle)
	for next, dests := range groupByNext(stage, reachable, reached) {
		recDryRunMulticast(b, atTime, dests, reached, next, false)
	}
}

// UpdateMulticast commits a multicast tree for the destinations that
// survived the dry-run, scheduling each shared edge exactly once.
func UpdateMulticast(bundle *core.Bundle, atTime core.Date, tree *PathFindingOutput, reached []core.NodeID) {
	recUpdateMulticast(bundle, atTime, reached, tree.SourceStage, true)
}

func recUpdateMulticast(bundle *core.Bundle, atTime core.Date, reached []core.NodeID, stage *RouteStage, isSource bool) {
	if !isSource {
		if !stage.Schedule(atTime, bundle) {
			panic("route: multicast schedule failed after a successful dry run")
		}
		atTime = stage.AtTime
	}

	b := bundleAt(stage, bundle)
	for next, dests := range groupByNext(stage, reached, nil) {
		recUpdateMulticast(b, atTime, dests, next, false)
	}
}

// groupByNext buckets the destinations below stage by the child stage that
// serves them, so shared children are descended once. Destinations equal to
// the stage's own node are terminal: they are appended to reached when it
// is non-nil, and skipped otherwise.
func groupByNext(stage *RouteStage, dests []core.NodeID, reached *[]core.NodeID) map[*RouteStage][]core.NodeID {
	groups := make(map[*RouteStage][]core.NodeID, len(dests))
	for _, dest := range dests {
		if stage.ToNode == dest {
			if reached != nil {
				*reached = append(*reached, dest)
			}
			continue
		}
		if next := stage.NextForDestination[dest]; next != nil {
			groups[next] = append(groups[next], dest)
		}
	}

	return groups
}

// FirstHops groups the reached destinations of a committed tree by their
// first-hop contact, pairing each contact with the destination stages it
// serves. Routers wrap this into their routing output.
func FirstHops(tree *PathFindingOutput, reached []core.NodeID) map[*core.Contact][]*RouteStage {
	hops := make(map[*core.Contact][]*RouteStage, len(reached))
	for _, dest := range reached {
		first := tree.SourceStage.NextForDestination[dest]
		if first == nil || first.Via == nil {
			panic("route: committed destination lost its first hop")
		}
		hops[first.Via.Contact] = append(hops[first.Via.Contact], tree.RouteTo(dest))
	}

	return hops
}
