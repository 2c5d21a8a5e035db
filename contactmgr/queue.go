package contactmgr

import (
	"fmt"

	"github.com/dtnlab/sabre/core"
)

// QueueManager is the parameterized queue/volume manager behind the EVL,
// ETO and QD policies and their three-band priority variants.
//
// Construction goes through the six policy constructors (NewEVL, NewETO,
// NewQD, NewPEVL, NewPETO, NewPQD); the zero value is not usable.
type QueueManager struct {
	rate  core.DataRate
	delay core.Duration

	// addDelay offsets the transmission start by the queued volume's drain
	// time (ETO, QD). Without it the queue only limits volume (EVL).
	addDelay bool

	// autoUpdate makes ScheduleTx grow the queue (EVL, QD). Manual managers
	// (ETO) expect external Enqueue/Dequeue calls as real traffic flows.
	autoUpdate bool

	// bands is 1 or core.PriorityBands.
	bands int

	queue          [core.PriorityBands]core.Volume
	mav            [core.PriorityBands]core.Volume
	originalVolume core.Volume
}

// NewEVL returns an Earliest-Volume-Limit manager: no queue delay,
// automatically updated volume accounting.
func NewEVL(rate core.DataRate, delay core.Duration) *QueueManager {
	return &QueueManager{rate: rate, delay: delay, autoUpdate: true, bands: 1}
}

// NewETO returns an Earliest-Transmission-Opportunity manager: queued volume
// delays the transmission start, and the queue is maintained manually via
// Enqueue/Dequeue.
func NewETO(rate core.DataRate, delay core.Duration) *QueueManager {
	return &QueueManager{rate: rate, delay: delay, addDelay: true, bands: 1}
}

// NewQD returns a Queue-Delay manager: queued volume delays the start
// relative to the contact opening, and scheduling updates the queue.
func NewQD(rate core.DataRate, delay core.Duration) *QueueManager {
	return &QueueManager{rate: rate, delay: delay, addDelay: true, autoUpdate: true, bands: 1}
}

// NewPEVL returns the three-band priority variant of NewEVL. mav is the
// initial Maximum Available Volume per band.
func NewPEVL(rate core.DataRate, delay core.Duration, mav [core.PriorityBands]core.Volume) *QueueManager {
	m := NewEVL(rate, delay)
	m.bands, m.mav = core.PriorityBands, mav

	return m
}

// NewPETO returns the three-band priority variant of NewETO.
func NewPETO(rate core.DataRate, delay core.Duration, mav [core.PriorityBands]core.Volume) *QueueManager {
	m := NewETO(rate, delay)
	m.bands, m.mav = core.PriorityBands, mav

	return m
}

// NewPQD returns the three-band priority variant of NewQD.
func NewPQD(rate core.DataRate, delay core.Duration, mav [core.PriorityBands]core.Volume) *QueueManager {
	m := NewQD(rate, delay)
	m.bands, m.mav = core.PriorityBands, mav

	return m
}

// TryInit derives the contact's original volume from its duration and rate.
// A non-positive rate is a configuration failure.
func (m *QueueManager) TryInit(info core.ContactInfo) bool {
	if m.rate <= 0 {
		return false
	}
	m.originalVolume = (info.End - info.Start) * m.rate

	return true
}

// band clamps the bundle priority to the manager's band count.
func (m *QueueManager) band(p core.Priority) int {
	if m.bands == 1 || p < 0 {
		return 0
	}
	if int(p) >= m.bands {
		return m.bands - 1
	}

	return int(p)
}

// queuedAhead is the volume transmitted before a bundle of band p: bands of
// higher or equal priority go first.
func (m *QueueManager) queuedAhead(p int) core.Volume {
	var total core.Volume
	for i := p; i < m.bands; i++ {
		total += m.queue[i]
	}

	return total
}

// DryRunTx simulates the transmission without mutating any state.
//
// The single-band policies reject upfront when the bundle exceeds the
// unbooked volume; the priority policies instead bound the size by the
// spanned sub-interval's capacity and the band's MAV. Every policy rejects
// a transmission that would end after the contact or arrive after the
// bundle's expiration.
func (m *QueueManager) DryRunTx(info core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	p := m.band(bundle.Priority)

	if m.bands == 1 && bundle.Size > m.originalVolume-m.queue[0] {
		return core.TxData{}, false
	}

	txStart := atTime
	if info.Start > txStart {
		txStart = info.Start
	}

	if m.addDelay {
		drain := m.queuedAhead(p) / m.rate
		if !m.autoUpdate {
			// ETO: the queue drains after the transmission opportunity.
			txStart += drain
		} else if info.Start > atTime {
			// QD: the queue drains from the contact opening.
			txStart = info.Start + drain
		} else {
			// QD with the contact already open: the queue is assumed drained.
			txStart = info.Start
		}
	}

	txEnd := txStart + bundle.Size/m.rate
	if txEnd > info.End {
		return core.TxData{}, false
	}

	arrival := m.delay + txEnd
	if arrival > bundle.Expiration {
		return core.TxData{}, false
	}

	if m.bands > 1 {
		limit := (txEnd - txStart) * m.rate
		if m.mav[p] < limit {
			limit = m.mav[p]
		}
		if bundle.Size > limit {
			return core.TxData{}, false
		}
	}

	return core.TxData{
		TxStart:    txStart,
		TxEnd:      txEnd,
		Delay:      m.delay,
		Expiration: info.End,
		Arrival:    arrival,
	}, true
}

// ScheduleTx commits the transmission granted by an identical DryRunTx:
// the bundle's size erodes the MAV of every lower band (priority variants)
// and, for auto-updated policies, grows the queue.
func (m *QueueManager) ScheduleTx(info core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	data, ok := m.DryRunTx(info, atTime, bundle)
	if !ok {
		return core.TxData{}, false
	}

	p := m.band(bundle.Priority)
	if m.bands > 1 {
		m.updateMAV(bundle.Size, p)
	}
	if m.autoUpdate {
		m.queue[p] += bundle.Size
	}

	return data, true
}

// updateMAV erodes the Maximum Available Volume of every band below p by
// vol, saturating at zero. The scheduled band's own MAV is untouched: equal
// and higher bands are served first and their budget already bounded the
// admission.
func (m *QueueManager) updateMAV(vol core.Volume, p int) {
	for i := 0; i < p; i++ {
		if m.mav[i] > vol {
			m.mav[i] -= vol
		} else {
			m.mav[i] = 0
		}
	}
}

// Enqueue registers externally flowing traffic on a manually-updated
// manager (ETO/PETO). It panics on an auto-updated policy and when the
// queue, summed across bands, would overflow the contact's volume; both are
// caller contract violations.
func (m *QueueManager) Enqueue(bundle *core.Bundle) {
	if m.autoUpdate {
		panic("contactmgr: Enqueue on an auto-updated manager")
	}
	p := m.band(bundle.Priority)
	if queued := m.QueuedVolume(); queued+bundle.Size > m.originalVolume {
		panic(fmt.Sprintf("contactmgr: queue overflow (%g + %g > %g)",
			queued, bundle.Size, m.originalVolume))
	}
	m.queue[p] += bundle.Size
}

// Dequeue removes previously enqueued traffic. It panics when removing more
// than is queued on the bundle's band.
func (m *QueueManager) Dequeue(bundle *core.Bundle) {
	if m.autoUpdate {
		panic("contactmgr: Dequeue on an auto-updated manager")
	}
	p := m.band(bundle.Priority)
	if m.queue[p] < bundle.Size {
		panic(fmt.Sprintf("contactmgr: dequeue of %g exceeds queued %g", bundle.Size, m.queue[p]))
	}
	m.queue[p] -= bundle.Size
}

// OriginalVolume reports the volume the contact had at initialization.
func (m *QueueManager) OriginalVolume() core.Volume { return m.originalVolume }

// QueuedVolume reports the booked volume summed across bands.
func (m *QueueManager) QueuedVolume() core.Volume {
	var total core.Volume
	for i := 0; i < m.bands; i++ {
		total += m.queue[i]
	}

	return total
}

// Delay reports the manager's uniform one-way delay.
func (m *QueueManager) Delay() core.Duration { return m.delay }

// MAV reports the per-band Maximum Available Volume. Single-band managers
// report zeros.
func (m *QueueManager) MAV() [core.PriorityBands]core.Volume { return m.mav }
