// Package distance defines the pluggable total orders over route stages
// that drive Dijkstra's relaxation: the standard SABR order and the
// hop-minimizing variant.
//
// A Distance compares two route stages and decides which is the better
// intermediate result. Both provided orders are strict weak orderings over
// (AtTime, HopCount, Expiration); under them every hop makes the key
// non-decreasing, which is what makes the Dijkstra output optimal.
package distance

import "github.com/dtnlab/sabre/route"

// Distance is a total order on route stages, used as the Dijkstra key.
// Less reports whether a is strictly better than b.
type Distance interface {
	Less(a, b *route.RouteStage) bool
}

// SABR is the Schedule-Aware Bundle Routing order: earlier arrival wins,
// then fewer hops, then later route expiration.
type SABR struct{}

// Less implements Distance.
func (SABR) Less(a, b *route.RouteStage) bool {
	if a.AtTime != b.AtTime {
		return a.AtTime < b.AtTime
	}
	if a.HopCount != b.HopCount {
		return a.HopCount < b.HopCount
	}

	return a.Expiration > b.Expiration
}

// Hop is the SABR variant that minimizes hop count before arrival time:
// fewer hops wins, then earlier arrival, then later route expiration.
type Hop struct{}

// Less implements Distance.
func (Hop) Less(a, b *route.RouteStage) bool {
	if a.HopCount != b.HopCount {
		return a.HopCount < b.HopCount
	}
	if a.AtTime != b.AtTime {
		return a.AtTime < b.AtTime
	}

	return a.Expiration > b.Expiration
}
