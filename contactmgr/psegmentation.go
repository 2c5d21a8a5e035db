package contactmgr

import "github.com/dtnlab/sabre/core"

// unbooked marks a booking segment that no bundle has claimed yet; any
// priority may claim it.
const unbooked core.Priority = -1

// PSegmentationManager is the priority-aware segmentation manager. Instead
// of a free-interval list it tracks, per sub-interval, the highest priority
// currently booked over it; a bundle may transmit across any run of
// sub-intervals booked strictly below its own priority, preempting them.
type PSegmentationManager struct {
	booking        []Segment[core.Priority]
	rates          []Segment[core.DataRate]
	delays         []Segment[core.Duration]
	originalVolume core.Volume
}

// NewPSegmentation builds a priority segmentation manager from its rate and
// delay plans.
func NewPSegmentation(rates []Segment[core.DataRate], delays []Segment[core.Duration]) *PSegmentationManager {
	return &PSegmentationManager{rates: rates, delays: delays}
}

// TryInit verifies the plans tile the contact window and opens the single
// initial booking segment, unbooked.
func (m *PSegmentationManager) TryInit(info core.ContactInfo) bool {
	if !contiguous(m.rates, info.Start, info.End) || !contiguous(m.delays, info.Start, info.End) {
		return false
	}
	if len(m.booking) != 0 {
		return false
	}
	m.originalVolume = planVolume(m.rates)
	m.booking = append(m.booking, Segment[core.Priority]{Start: info.Start, End: info.End, Val: unbooked})

	return true
}

// DryRunTx finds the earliest transmission window claimable at the bundle's
// priority: a run of consecutive booking segments, each booked strictly
// below the bundle's band, long enough to carry the whole size under the
// rate plan.
func (m *PSegmentationManager) DryRunTx(info core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	i := 0
	for i < len(m.booking) {
		seg := m.booking[i]
		if seg.End <= atTime || bundle.Priority <= seg.Val {
			i++
			continue
		}

		txStart := seg.Start
		if atTime > txStart {
			txStart = atTime
		}
		txEnd, ok := txEndAcross(m.rates, txStart, bundle.Size, info.End)
		if !ok {
			// Starting any later only shrinks the remaining plan.
			return core.TxData{}, false
		}

		// The transmission must stay within segments claimable at this
		// priority; find the segment holding the last bit.
		j := i
		claimable := true
		for txEnd > m.booking[j].End {
			j++
			if j == len(m.booking) || bundle.Priority <= m.booking[j].Val {
				claimable = false
				break
			}
		}

		if claimable {
			delay := delayAt(txEnd, m.delays)
			arrival := txEnd + delay
			if arrival > bundle.Expiration {
				return core.TxData{}, false
			}

			return core.TxData{
				TxStart:    txStart,
				TxEnd:      txEnd,
				Delay:      delay,
				Expiration: m.booking[j].End,
				Arrival:    arrival,
			}, true
		}

		// Restart the search past the blocking segment.
		i = j + 1
	}

	return core.TxData{}, false
}

// ScheduleTx commits the transmission granted by an identical DryRunTx,
// splitting the booking segments around [TxStart, TxEnd] and stamping the
// covered portion with the bundle's priority.
func (m *PSegmentationManager) ScheduleTx(info core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	data, ok := m.DryRunTx(info, atTime, bundle)
	if !ok {
		return core.TxData{}, false
	}

	rebooked := make([]Segment[core.Priority], 0, len(m.booking)+2)
	for _, seg := range m.booking {
		if seg.End <= data.TxStart || seg.Start >= data.TxEnd {
			rebooked = append(rebooked, seg)
			continue
		}
		if seg.Start < data.TxStart {
			rebooked = append(rebooked, Segment[core.Priority]{Start: seg.Start, End: data.TxStart, Val: seg.Val})
		}
		if seg.End > data.TxEnd {
			rebooked = append(rebooked, Segment[core.Priority]{Start: maxDate(seg.Start, data.TxStart), End: data.TxEnd, Val: bundle.Priority})
			rebooked = append(rebooked, Segment[core.Priority]{Start: data.TxEnd, End: seg.End, Val: seg.Val})
			continue
		}
		rebooked = append(rebooked, Segment[core.Priority]{Start: maxDate(seg.Start, data.TxStart), End: seg.End, Val: bundle.Priority})
	}
	m.booking = mergeBookings(rebooked)

	return data, true
}

func maxDate(a, b core.Date) core.Date {
	if a > b {
		return a
	}

	return b
}

// mergeBookings coalesces adjacent segments carrying the same priority.
func mergeBookings(segs []Segment[core.Priority]) []Segment[core.Priority] {
	if len(segs) == 0 {
		return segs
	}
	merged := segs[:1]
	for _, seg := range segs[1:] {
		last := &merged[len(merged)-1]
		if last.Val == seg.Val && last.End == seg.Start {
			last.End = seg.End
			continue
		}
		merged = append(merged, seg)
	}

	return merged
}

// OriginalVolume reports the deliverable volume the contact had at
// initialization.
func (m *PSegmentationManager) OriginalVolume() core.Volume { return m.originalVolume }

// QueuedVolume reports the committed volume: the rate-plan integral over
// every booked sub-interval.
func (m *PSegmentationManager) QueuedVolume() core.Volume {
	var total core.Volume
	for _, seg := range m.booking {
		if seg.Val != unbooked {
			total += rateVolumeBetween(m.rates, seg.Start, seg.End)
		}
	}

	return total
}
