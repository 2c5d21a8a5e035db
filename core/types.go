// This file declares the scalar domain types shared by the whole engine and
// the package's sentinel errors.
package core

import (
	"errors"
	"math"
)

// Sentinel errors for contact construction.
var (
	// ErrInvalidContact indicates a contact window where start ≥ end.
	ErrInvalidContact = errors.New("core: contact start must precede end")

	// ErrManagerInit indicates that a contact manager rejected its contact
	// at initialization (e.g. gapped rate segments).
	ErrManagerInit = errors.New("core: contact manager initialization failed")
)

// NodeID identifies a node. IDs are dense non-negative integers: the
// multigraph and pathfinding outputs index arrays by NodeID.
type NodeID uint32

// Date is a point in time, in one monotonic real-valued unit chosen by the
// contact plan (typically seconds since plan epoch).
type Date = float64

// Duration is a span of time in the same unit as Date.
type Duration = float64

// Volume is an amount of data in bytes.
type Volume = float64

// DataRate is a transmission rate in Volume per Duration.
type DataRate = float64

// Priority is a bundle class-of-service band. With priorities enabled there
// are exactly three bands; otherwise a single band 0 is used.
type Priority int8

// The three priority bands of the priority-enabled managers.
const (
	PriorityBulk      Priority = 0
	PriorityStandard  Priority = 1
	PriorityExpedited Priority = 2

	// PriorityBands is the number of bands carried by priority-enabled
	// managers.
	PriorityBands = 3
)

// DateMax is the sentinel "never" / "unreached" time.
var DateMax = math.Inf(1)

// Node is a vertex of the contact plan. The engine only needs its identity;
// parsers may attach a display name.
type Node struct {
	// ID is the dense identifier used to index multigraph arrays.
	ID NodeID

	// Name is an optional human-readable alias carried from the plan.
	Name string
}
