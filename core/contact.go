package core

import "fmt"

// ContactInfo is the immutable descriptor of a scheduled, directed
// communication opportunity. A reverse link is a separate contact.
type ContactInfo struct {
	// TxNode is the transmitting node.
	TxNode NodeID

	// RxNode is the receiving node.
	RxNode NodeID

	// Start is the opening of the contact window.
	Start Date

	// End is the closing of the contact window. Invariant: Start < End.
	End Date
}

// Valid reports whether the window is well-formed (Start < End).
func (ci ContactInfo) Valid() bool { return ci.Start < ci.End }

// String renders the contact window for diagnostics.
func (ci ContactInfo) String() string {
	return fmt.Sprintf("contact %d→%d [%g, %g]", ci.TxNode, ci.RxNode, ci.Start, ci.End)
}

// Contact couples an immutable ContactInfo with its mutable resource
// manager. Contacts are shared by pointer: the multigraph buckets them,
// route stages reference the contact they hop over, and routing outputs key
// first hops by the contact identity.
type Contact struct {
	// ID is a dense identifier assigned at construction (position in the
	// contact plan). Routing outputs key first hops by it.
	ID int

	// Info is the immutable time/endpoint descriptor.
	Info ContactInfo

	// Manager is the admission and volume-accounting policy.
	Manager ContactManager

	// Suppressed removes the contact from pathfinding for the remainder of
	// the current routing call. CGR sets it on contacts toward excluded
	// nodes and on the victims of its first-ending / first-depleted retry
	// policies; every CGR route() call resets it.
	Suppressed bool
}

// NewContact validates the window, initializes the manager against it and
// returns the ready-to-route contact.
//
// Errors:
//
//   - ErrInvalidContact if info.Start ≥ info.End.
//   - ErrManagerInit if the manager rejects the contact (a load-time
//     configuration failure, e.g. gapped rate segments).
func NewContact(id int, info ContactInfo, manager ContactManager) (*Contact, error) {
	if !info.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, info)
	}
	if !manager.TryInit(info) {
		return nil, fmt.Errorf("%w: %v", ErrManagerInit, info)
	}

	return &Contact{ID: id, Info: info, Manager: manager}, nil
}
