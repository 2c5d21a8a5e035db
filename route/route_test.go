// Package route_test validates the route-stage tree: invariants of hop
// construction, forward-plan materialization, replay walks, and the
// pointer-identity deduplication of multicast traversals.
package route_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dtnlab/sabre/contactmgr"
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/route"
)

// countingManager wraps a manager and counts calls, to assert that shared
// multicast edges are visited exactly once.
type countingManager struct {
	inner     core.ContactManager
	dryRuns   int
	schedules int
}

func (m *countingManager) TryInit(info core.ContactInfo) bool { return m.inner.TryInit(info) }

func (m *countingManager) DryRunTx(info core.ContactInfo, at core.Date, b *core.Bundle) (core.TxData, bool) {
	m.dryRuns++

	return m.inner.DryRunTx(info, at, b)
}

func (m *countingManager) ScheduleTx(info core.ContactInfo, at core.Date, b *core.Bundle) (core.TxData, bool) {
	m.schedules++

	return m.inner.ScheduleTx(info, at, b)
}

// contact builds an initialized EVL contact.
func contact(t *testing.T, id int, tx, rx core.NodeID, start, end core.Date) *core.Contact {
	t.Helper()
	c, err := core.NewContact(id, core.ContactInfo{TxNode: tx, RxNode: rx, Start: start, End: end},
		&countingManager{inner: contactmgr.NewEVL(1, 0)})
	require.NoError(t, err)

	return c
}

// hop extends a stage over a contact the way the search does.
func hop(parent *route.RouteStage, c *core.Contact, arrival core.Date) *route.RouteStage {
	expiration := parent.Expiration
	if c.Info.End < expiration {
		expiration = c.Info.End
	}

	return &route.RouteStage{
		ToNode:             c.Info.RxNode,
		AtTime:             arrival,
		HopCount:           parent.HopCount + 1,
		Expiration:         expiration,
		Via:                &route.Via{Contact: c, Parent: parent},
		NextForDestination: make(map[core.NodeID]*route.RouteStage),
	}
}

func TestHopInvariants(t *testing.T) {
	src := route.NewSource(0, 0)
	c1 := contact(t, 0, 0, 1, 0, 100)
	c2 := contact(t, 1, 1, 2, 20, 200)

	s1 := hop(src, c1, 10)
	s2 := hop(s1, c2, 30)

	require.Equal(t, 1, s1.HopCount)
	require.Equal(t, 2, s2.HopCount)
	require.Equal(t, 100.0, s1.Expiration, "expiration is the tightest contact end so far")
	require.Equal(t, 100.0, s2.Expiration, "a later-ending contact does not relax the expiration")
	require.True(t, s1.Reached())
	require.False(t, route.NewWorkArea(5).Reached())
}

func TestInitRouteMaterializesForwardPlan(t *testing.T) {
	src := route.NewSource(0, 0)
	c1 := contact(t, 0, 0, 1, 0, 100)
	c2 := contact(t, 1, 1, 2, 0, 100)
	s1 := hop(src, c1, 10)
	s2 := hop(s1, c2, 20)

	route.InitRoute(s2)

	require.Same(t, s1, src.NextForDestination[2])
	require.Same(t, s2, s1.NextForDestination[2])
}

func TestUnicastWalks(t *testing.T) {
	src := route.NewSource(0, 0)
	c1 := contact(t, 0, 0, 1, 0, 100)
	c2 := contact(t, 1, 1, 2, 0, 100)
	s1 := hop(src, c1, 0) // arrival fields refresh during replay
	s2 := hop(s1, c2, 0)

	b := &core.Bundle{Source: 0, Destinations: []core.NodeID{2}, Size: 10, Expiration: 1000}

	final := route.DryRunUnicastPath(b, 0, src, s2, true)
	require.Same(t, s2, final)
	require.Equal(t, 10.0, s1.AtTime, "replay refreshes arrival at each stage")
	require.Equal(t, 20.0, s2.AtTime)

	first, committed := route.UpdateUnicast(b, 2, 0, src)
	require.Same(t, c1, first)
	require.Same(t, s2, committed)
	require.Equal(t, 1, c1.Manager.(*countingManager).schedules)
	require.Equal(t, 1, c2.Manager.(*countingManager).schedules)
}

func TestMulticastSharedPrefixVisitedOnce(t *testing.T) {
	// 0 →(c1) 1 →(c2) 2, then 2 →(c3) 5 and 2 →(c4) 6: destinations 5 and 6
	// share the first two hops.
	src := route.NewSource(0, 0)
	c1 := contact(t, 0, 0, 1, 0, 1000)
	c2 := contact(t, 1, 1, 2, 0, 1000)
	c3 := contact(t, 2, 2, 5, 0, 1000)
	c4 := contact(t, 3, 2, 6, 0, 1000)

	s1 := hop(src, c1, 0)
	s2 := hop(s1, c2, 0)
	s5 := hop(s2, c3, 0)
	s6 := hop(s2, c4, 0)

	tree := &route.PathFindingOutput{
		SourceStage:   src,
		ByDestination: []*route.RouteStage{src, s1, s2, nil, nil, s5, s6},
	}
	tree.Bundle = core.Bundle{Source: 0, Destinations: []core.NodeID{5, 6}, Size: 4, Expiration: 1000}

	b := &core.Bundle{Source: 0, Destinations: []core.NodeID{5, 6}, Size: 4, Expiration: 1000}
	reached := route.DryRunMulticast(b, 0, tree)
	require.ElementsMatch(t, []core.NodeID{5, 6}, reached)

	shared := c1.Manager.(*countingManager)
	require.Equal(t, 1, shared.dryRuns, "shared prefix contact dry-run exactly once")

	route.UpdateMulticast(b, 0, tree, reached)
	require.Equal(t, 1, shared.schedules, "shared prefix contact scheduled exactly once")
	require.Equal(t, 4.0, contactQueue(c1), "a single size decrement on the shared contact")

	hops := route.FirstHops(tree, reached)
	require.Len(t, hops, 1, "both destinations share one first hop")
	require.ElementsMatch(t, []*route.RouteStage{s5, s6}, hops[c1])
}

func contactQueue(c *core.Contact) core.Volume {
	return c.Manager.(*countingManager).inner.(core.QueueReporter).QueuedVolume()
}

func TestDescribeWalksBackToSource(t *testing.T) {
	src := route.NewSource(0, 0)
	c1 := contact(t, 0, 0, 1, 0, 100)
	s1 := hop(src, c1, 10)

	vias := route.Hops(s1)
	require.Len(t, vias, 1)
	require.Same(t, c1, vias[0].Contact)

	text := route.Describe(s1)
	require.Contains(t, text, "route to node 1")
	require.Contains(t, text, "reach node 0")
}
