// Package route defines the route-stage tree produced by pathfinding and
// the walk helpers that replay (dry-run) or commit (schedule) a plan over
// it.
//
// A RouteStage is one node of the search tree: "the bundle is at ToNode at
// AtTime, having made HopCount hops, over a path whose tightest contact
// ends at Expiration". During the search, stages link backward to their
// parent through Via; committing a destination materializes the forward
// NextForDestination edges, which is what the walk helpers traverse.
//
// The tree is a DAG of shared stages: multicast destinations share prefix
// stages, and the walks deduplicate shared children by pointer identity so
// a shared contact is dry-run and scheduled exactly once per bundle.
//
// All mutation happens on the single goroutine that owns the router: stages
// relax in place during Dijkstra, and replay walks refresh AtTime as
// manager state evolves.
package route
