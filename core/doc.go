// Package core defines the central types of the sabre routing engine:
// scalar domain types (NodeID, Date, Duration, Volume, DataRate, Priority),
// the Bundle being routed, the Contact time window with its resource
// manager, and the ContactManager contract every admission policy
// implements.
//
// Everything downstream (contact managers, the multigraph, pathfinding,
// storage, routers) is expressed in terms of this package. The package has
// no dependencies of its own.
//
// Ownership and mutability:
//
//   - ContactInfo is immutable after construction.
//   - A Contact is shared by pointer between the multigraph, route stages
//     and routing outputs; only its manager state and the Suppressed flag
//     mutate, and only on the single goroutine that owns the router.
//   - A Bundle is immutable for the duration of one routing call.
//
// Errors (sentinel):
//
//   - ErrInvalidContact  if a contact window has start ≥ end.
//   - ErrManagerInit     if a manager rejects its contact at initialization.
package core
