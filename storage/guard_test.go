package storage_test

import (
	"testing"

	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/storage"
)

func guardBundle(size core.Volume, priority core.Priority, dests ...core.NodeID) *core.Bundle {
	return &core.Bundle{Destinations: dests, Size: size, Priority: priority, Expiration: 1000}
}

func TestGuard_AbortsOnlyWhenEveryDestinationIsCondemned(t *testing.T) {
	g := storage.NewGuard(false)

	if g.MustAbort(guardBundle(5, 0, 3)) {
		t.Fatal("an empty guard must not abort")
	}

	g.AddLimit(guardBundle(10, 0, 3), 3)

	if !g.MustAbort(guardBundle(5, 0, 3)) {
		t.Error("a smaller bundle toward a condemned destination must abort")
	}
	if g.MustAbort(guardBundle(10, 0, 3)) {
		t.Error("a bundle at the recorded limit is retried, not aborted")
	}
	if g.MustAbort(guardBundle(5, 0, 3, 4)) {
		t.Error("one unconstrained destination keeps the bundle routable")
	}
}

func TestGuard_LimitsAreMonotone(t *testing.T) {
	g := storage.NewGuard(false)

	g.AddLimit(guardBundle(10, 0, 3), 3)
	g.AddLimit(guardBundle(50, 0, 3), 3) // larger: must not replace
	if g.MustAbort(guardBundle(20, 0, 3)) {
		t.Error("a larger limit must never replace a smaller one")
	}

	g.AddLimit(guardBundle(4, 0, 3), 3) // smaller: tightens
	if !g.MustAbort(guardBundle(3, 0, 3)) {
		t.Error("a smaller limit must tighten the record")
	}
}

func TestGuard_PriorityKeying(t *testing.T) {
	withPrio := storage.NewGuard(true)
	withPrio.AddLimit(guardBundle(10, core.PriorityBulk, 3), 3)

	if withPrio.MustAbort(guardBundle(5, core.PriorityExpedited, 3)) {
		t.Error("a record at bulk priority must not condemn expedited traffic")
	}
	if !withPrio.MustAbort(guardBundle(5, core.PriorityBulk, 3)) {
		t.Error("bulk traffic under the bulk record must abort")
	}

	// Without priorities every band collapses to 0.
	flat := storage.NewGuard(false)
	flat.AddLimit(guardBundle(10, core.PriorityExpedited, 3), 3)
	if !flat.MustAbort(guardBundle(5, core.PriorityBulk, 3)) {
		t.Error("with priorities disabled all bands share one record")
	}
}
