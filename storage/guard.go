package storage

import (
	"github.com/dtnlab/sabre/core"
)

// guardKey identifies a recorded infeasibility: a destination at an
// effective priority band.
type guardKey struct {
	dest     core.NodeID
	priority core.Priority
}

// Guard records, per (destination, priority), the smallest bundle size a
// router has proven infeasible, and short-circuits routing attempts the
// record already condemns. Limits are monotone over a router's lifetime:
// AddLimit only ever lowers them.
type Guard struct {
	withPriorities bool
	knownLimits    map[guardKey]core.Volume
}

// NewGuard builds an empty guard. With withPriorities false, every record
// and query collapses to band 0.
func NewGuard(withPriorities bool) *Guard {
	return &Guard{
		withPriorities: withPriorities,
		knownLimits:    make(map[guardKey]core.Volume),
	}
}

// effective maps a bundle priority to the guard's keying band.
func (g *Guard) effective(p core.Priority) core.Priority {
	if g.withPriorities {
		return p
	}

	return 0
}

// MustAbort reports whether every destination of the bundle carries a
// recorded limit that condemns this size, in which case routing is not
// attempted at all.
func (g *Guard) MustAbort(bundle *core.Bundle) bool {
	priority := g.effective(bundle.Priority)

	unreachable := 0
	for _, dest := range bundle.Destinations {
		limit, ok := g.knownLimits[guardKey{dest: dest, priority: priority}]
		if ok && bundle.Size < limit {
			unreachable++
		}
	}

	return unreachable == len(bundle.Destinations)
}

// AddLimit records that bundle.Size found no route toward dest. An existing
// smaller or equal record wins: limits never relax.
func (g *Guard) AddLimit(bundle *core.Bundle, dest core.NodeID) {
	key := guardKey{dest: dest, priority: g.effective(bundle.Priority)}
	if known, ok := g.knownLimits[key]; ok && known <= bundle.Size {
		return
	}
	g.knownLimits[key] = bundle.Size
}
