package storage

import (
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/route"
)

// TreeCache is a bounded FIFO of pathfinding trees keyed by their exclusion
// set, with optional bundle shadowing.
type TreeCache struct {
	// checkSize requires a cached tree's bundle to be at least as large as
	// the requested one.
	checkSize bool

	// checkPriority requires a cached tree's bundle to be of at least the
	// requested priority.
	checkPriority bool

	// maxEntries bounds the FIFO; storing beyond it drops the oldest tree.
	maxEntries int

	trees []*route.PathFindingOutput
}

// NewTreeCache builds a tree cache. maxEntries must be positive.
func NewTreeCache(checkSize, checkPriority bool, maxEntries int) *TreeCache {
	if maxEntries <= 0 {
		panic("storage: TreeCache maxEntries must be positive")
	}

	return &TreeCache{
		checkSize:     checkSize,
		checkPriority: checkPriority,
		maxEntries:    maxEntries,
	}
}

// Select scans the cache oldest-first for a tree matching the request's
// exclusion set (and shadowing, when enabled) whose replay with the current
// bundle still succeeds. For a multicast bundle the first predicate match
// is returned together with its replay-reachable destinations; the caller
// decides whether partial coverage warrants a fresh tree.
func (c *TreeCache) Select(bundle *core.Bundle, currTime core.Date, excludedSorted []core.NodeID) (*route.PathFindingOutput, []core.NodeID, bool) {
	multicast := len(bundle.Destinations) > 1

	for _, tree := range c.trees {
		if !tree.Bundle.Shadows(bundle, c.checkSize, c.checkPriority) {
			continue
		}
		if !equalNodeIDs(tree.ExcludedSorted, excludedSorted) {
			continue
		}

		if multicast {
			reachable := route.DryRunMulticast(bundle, currTime, tree)

			return tree, reachable, true
		}
		if route.DryRunUnicastTree(bundle, currTime, tree) != nil {
			return tree, nil, true
		}
	}

	return nil, nil, false
}

// Store inserts a tree, replacing any entry recorded under the same
// exclusion set, and evicts the oldest entry beyond the cache bound.
func (c *TreeCache) Store(_ *core.Bundle, tree *route.PathFindingOutput) {
	for i, existing := range c.trees {
		if equalNodeIDs(existing.ExcludedSorted, tree.ExcludedSorted) {
			c.trees[i] = tree

			return
		}
	}

	c.trees = append(c.trees, tree)
	if len(c.trees) > c.maxEntries {
		c.trees = c.trees[1:]
	}
}
