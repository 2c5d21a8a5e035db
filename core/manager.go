package core

// TxData is the outcome of a successful transmission simulation or commit:
// the timing a manager grants a bundle over one contact.
type TxData struct {
	// TxStart is the first-bit transmission time.
	// Invariant: TxStart ≥ max(at_time, contact start) for managers without
	// early-queue semantics (QD reports the contact start, which may precede
	// at_time, once the contact is open; see contactmgr).
	TxStart Date

	// TxEnd is the last-bit transmission time. Invariant: TxEnd ≤ contact end.
	TxEnd Date

	// Delay is the one-way light/processing delay applied to the last bit.
	Delay Duration

	// Expiration is the end of the interval that granted the transmission
	// (contact end for queue managers, free-segment end for segmentation).
	Expiration Date

	// Arrival is the last-bit arrival time: TxEnd + Delay.
	Arrival Date
}

// ContactManager is the admission, timing and volume-accounting policy of a
// single contact. Implementations are per-contact state machines: DryRunTx
// simulates without mutating, ScheduleTx commits and updates bookkeeping.
//
// Contract:
//
//   - TryInit is called exactly once, when the contact is constructed; it
//     derives capacity from the contact window and reports whether the
//     manager's configuration is consistent. A false return makes
//     NewContact fail with ErrManagerInit, rejecting the contact at load
//     time.
//   - DryRunTx returns (TxData, true) when the bundle fits, and false
//     otherwise. Infeasibility is a normal outcome, not an error. Two
//     back-to-back calls with identical arguments return identical results.
//   - ScheduleTx must only be called after DryRunTx returned true for the
//     same (at_time, bundle); implementations may panic otherwise, and their
//     bookkeeping is undefined.
type ContactManager interface {
	// TryInit finalizes initialization against the contact window and
	// reports whether the configuration is consistent.
	TryInit(info ContactInfo) bool

	// DryRunTx simulates transmitting bundle at atTime without mutating any
	// state.
	DryRunTx(info ContactInfo, atTime Date, bundle *Bundle) (TxData, bool)

	// ScheduleTx commits the transmission simulated by a preceding DryRunTx
	// with identical arguments, updating the manager's bookkeeping.
	ScheduleTx(info ContactInfo, atTime Date, bundle *Bundle) (TxData, bool)
}

// Enqueuer is implemented by manually-updated managers (ETO and its priority
// variant): external callers push and pop traffic as it actually flows, and
// ScheduleTx leaves the queue untouched.
//
// Enqueue panics when the added volume would overflow the contact's original
// volume; Dequeue panics when removing more than is queued. Both are
// programmer contract violations, not routing outcomes.
type Enqueuer interface {
	Enqueue(bundle *Bundle)
	Dequeue(bundle *Bundle)
}

// VolumeReporter exposes the volume a contact had at initialization. The
// first-depleted suppression heuristic requires it.
type VolumeReporter interface {
	OriginalVolume() Volume
}

// QueueReporter exposes the volume currently booked on a contact, summed
// across bands.
type QueueReporter interface {
	QueuedVolume() Volume
}

// DelayReporter exposes a manager's one-way delay when it is uniform over
// the contact.
type DelayReporter interface {
	Delay() Duration
}

// MAVReporter exposes the per-band Maximum Available Volume of a
// priority-enabled manager.
type MAVReporter interface {
	MAV() [PriorityBands]Volume
}
