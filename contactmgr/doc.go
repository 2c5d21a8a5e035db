// Package contactmgr implements the contact resource managers: the
// per-contact state machines that decide whether a bundle fits a contact and
// with what timing, and that account for committed volume.
//
// Two families are provided:
//
//   - QueueManager — a single parameterized type covering the six classic
//     policies (EVL, ETO, QD, each with or without the three priority
//     bands). The policy axes are: whether queued volume delays the
//     transmission start (ETO/QD), whether scheduling updates the queue
//     automatically (EVL/QD) or leaves it to external Enqueue/Dequeue calls
//     (ETO), and whether one or three priority bands are carried.
//   - SegmentationManager / PSegmentationManager — contacts whose rate and
//     delay vary over sub-intervals. The plain variant books transmissions
//     out of a shrinking free-interval list; the priority variant tracks the
//     highest booked priority per sub-interval and lets higher bands preempt
//     lower ones.
//
// Every manager obeys the core.ContactManager contract: DryRunTx is pure
// and idempotent, ScheduleTx commits what an identical DryRunTx granted,
// and infeasibility is a normal (data, false) outcome.
//
// Policy summary for a bundle of size s, rate r, queue q, at time t on a
// contact [start, end]:
//
//	EVL: tx_start = max(t, start)                   (volume-limited only)
//	ETO: tx_start = max(t, start) + q/r             (queue drains after start)
//	QD:  tx_start = start + q/r  if start > t       (queue drains before start)
//	     tx_start = start        otherwise
package contactmgr
