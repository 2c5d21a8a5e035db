// Package pathfind_test validates the Dijkstra search: arrival optimality
// on the canonical chain, early termination of the path variant, exclusion
// and suppression handling, and parallel-contact selection.
package pathfind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtnlab/sabre/contactmgr"
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/distance"
	"github.com/dtnlab/sabre/multigraph"
	"github.com/dtnlab/sabre/pathfind"
)

func nodes(n int) []core.Node {
	out := make([]core.Node, n)
	for i := range out {
		out[i] = core.Node{ID: core.NodeID(i)}
	}

	return out
}

func evlContact(t *testing.T, id int, tx, rx core.NodeID, start, end core.Date, rate core.DataRate, delay core.Duration) *core.Contact {
	t.Helper()
	c, err := core.NewContact(id, core.ContactInfo{TxNode: tx, RxNode: rx, Start: start, End: end},
		contactmgr.NewEVL(rate, delay))
	require.NoError(t, err)

	return c
}

// chainGraph is the canonical 0→1→2→3 plan: (0→1,[0,100]), (1→2,[20,200]),
// (2→3,[40,300]), all rate 1, delay 10.
func chainGraph(t *testing.T) *multigraph.Multigraph {
	t.Helper()
	g, err := multigraph.New(nodes(4), []*core.Contact{
		evlContact(t, 0, 0, 1, 0, 100, 1, 10),
		evlContact(t, 1, 1, 2, 20, 200, 1, 10),
		evlContact(t, 2, 2, 3, 40, 300, 1, 10),
	})
	require.NoError(t, err)

	return g
}

func chainBundle() *core.Bundle {
	return &core.Bundle{Source: 0, Destinations: []core.NodeID{3}, Size: 10, Expiration: 1000}
}

func TestTree_LinearChainArrival(t *testing.T) {
	ng := pathfind.NewTree(chainGraph(t), distance.SABR{})
	out := ng.Find(0, 0, chainBundle(), nil)

	dest := out.RouteTo(3)
	require.NotNil(t, dest)
	require.Equal(t, 60.0, dest.AtTime, "tx 10 + delay 10 per hop over three hops")
	require.Equal(t, 3, dest.HopCount)
	require.Equal(t, 100.0, dest.Expiration, "bounded by the first contact's end")

	// Intermediate stages obey the per-hop invariants.
	mid := out.RouteTo(1)
	require.Equal(t, 20.0, mid.AtTime)
	require.Equal(t, 1, mid.HopCount)
	require.Same(t, mid, dest.Via.Parent.Via.Parent, "back-pointers chain through the tree")
}

func TestTree_UnreachableNodeHasNoRoute(t *testing.T) {
	// Node 3 exists but no contact reaches it.
	g, err := multigraph.New(nodes(4), []*core.Contact{
		evlContact(t, 0, 0, 1, 0, 100, 1, 0),
		evlContact(t, 1, 1, 2, 0, 100, 1, 0),
	})
	require.NoError(t, err)

	out := pathfind.NewTree(g, distance.SABR{}).Find(0, 0, chainBundle(), nil)
	require.Nil(t, out.RouteTo(3))
	require.NotNil(t, out.RouteTo(2))
}

func TestTree_HonoursExclusions(t *testing.T) {
	ng := pathfind.NewTree(chainGraph(t), distance.SABR{})

	out := ng.Find(0, 0, chainBundle(), []core.NodeID{1})
	require.Nil(t, out.RouteTo(3), "the only path crosses the excluded node")
	require.Equal(t, []core.NodeID{1}, out.ExcludedSorted)
}

func TestPath_IgnoresExclusions(t *testing.T) {
	ng := pathfind.NewPath(chainGraph(t), distance.SABR{})

	out := ng.Find(0, 0, chainBundle(), []core.NodeID{1})
	require.NotNil(t, out.RouteTo(3), "the path variant routes through excluded nodes")
}

func TestSearch_SkipsSuppressedContacts(t *testing.T) {
	short := evlContact(t, 0, 0, 1, 0, 50, 1, 0)
	long := evlContact(t, 1, 0, 1, 0, 100, 1, 0)
	g, err := multigraph.New(nodes(2), []*core.Contact{short, long})
	require.NoError(t, err)

	b := &core.Bundle{Source: 0, Destinations: []core.NodeID{1}, Size: 10, Expiration: 1000}
	ng := pathfind.NewTree(g, distance.SABR{})

	out := ng.Find(0, 0, b, nil)
	require.Same(t, short, out.RouteTo(1).Via.Contact, "first feasible is the earliest-ending contact")

	short.Suppressed = true
	out = ng.Find(0, 0, b, nil)
	require.Same(t, long, out.RouteTo(1).Via.Contact)
}

func TestSearch_FirstFeasibleParallelContact(t *testing.T) {
	// The earlier-ending parallel contact cannot carry the bundle (capacity
	// 5); the search must fall through to the next one.
	small := evlContact(t, 0, 0, 1, 0, 5, 1, 0)
	big := evlContact(t, 1, 0, 1, 0, 100, 1, 0)
	g, err := multigraph.New(nodes(2), []*core.Contact{small, big})
	require.NoError(t, err)

	b := &core.Bundle{Source: 0, Destinations: []core.NodeID{1}, Size: 10, Expiration: 1000}
	out := pathfind.NewTree(g, distance.SABR{}).Find(0, 0, b, nil)
	require.Same(t, big, out.RouteTo(1).Via.Contact)
}

func TestSearch_RespectsBundleExpiration(t *testing.T) {
	b := chainBundle()
	b.Expiration = 50 // final arrival would be 60

	out := pathfind.NewTree(chainGraph(t), distance.SABR{}).Find(0, 0, b, nil)
	require.Nil(t, out.RouteTo(3))
	require.NotNil(t, out.RouteTo(2), "arrival 40 still beats the expiration")
}

func TestSearch_PrunesEndedContacts(t *testing.T) {
	ng := pathfind.NewTree(chainGraph(t), distance.SABR{})

	// At t=150 the first contact (end 100) is gone.
	out := ng.Find(150, 0, chainBundle(), nil)
	require.Nil(t, out.RouteTo(1))
	require.Nil(t, out.RouteTo(3))
}

func TestNodeProcessingRewritesBundlePerHop(t *testing.T) {
	// Every node the bundle reaches inflates it by 5, and the next hop
	// transmits the grown size.
	grow := func(node core.NodeID, b *core.Bundle) core.Bundle {
		c := b.Clone()
		c.Size += 5

		return c
	}

	g, err := multigraph.New(nodes(3), []*core.Contact{
		evlContact(t, 0, 0, 1, 0, 100, 1, 0),
		evlContact(t, 1, 1, 2, 0, 100, 1, 0),
	})
	require.NoError(t, err)

	b := &core.Bundle{Source: 0, Destinations: []core.NodeID{2}, Size: 10, Expiration: 1000}
	out := pathfind.NewTree(g, distance.SABR{}, pathfind.WithNodeProcessing(grow)).Find(0, 0, b, nil)

	dest := out.RouteTo(2)
	require.NotNil(t, dest)
	require.Equal(t, 15.0, dest.Via.Parent.Bundle.Size, "stage carries the rewritten bundle")
	require.Equal(t, 25.0, dest.AtTime, "second hop transmits the inflated size")
}
