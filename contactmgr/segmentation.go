package contactmgr

import (
	"math"

	"github.com/dtnlab/sabre/core"
)

// Segment is a sub-interval of a contact carrying a value: a data rate, a
// delay, or a booking priority.
type Segment[T any] struct {
	Start core.Date
	End   core.Date
	Val   T
}

// contiguous reports whether segs covers [start, end] with no gaps.
func contiguous[T any](segs []Segment[T], start, end core.Date) bool {
	if len(segs) == 0 {
		return false
	}
	at := start
	for _, seg := range segs {
		if seg.Start != at {
			return false
		}
		at = seg.End
	}

	return at == end
}

// planVolume sums the deliverable volume over the rate plan.
func planVolume(rates []Segment[core.DataRate]) core.Volume {
	var total core.Volume
	for _, seg := range rates {
		total += (seg.End - seg.Start) * seg.Val
	}

	return total
}

// txEndAcross walks the rate plan from atTime, accumulating volume until it
// is exhausted, and returns the last-bit time. It fails when the deadline is
// exceeded or the plan runs out of capacity.
func txEndAcross(rates []Segment[core.DataRate], atTime core.Date, volume core.Volume, deadline core.Date) (core.Date, bool) {
	for _, seg := range rates {
		if seg.End < atTime {
			continue
		}

		txEnd := atTime + volume/seg.Val
		if txEnd > seg.End {
			// Drain this segment and carry the remainder into the next one.
			volume -= seg.Val * (seg.End - atTime)
			atTime = seg.End
			continue
		}
		if txEnd > deadline {
			return 0, false
		}

		return txEnd, true
	}

	return 0, false
}

// delayAt returns the delay in force at txEnd, or +Inf past the plan.
func delayAt(txEnd core.Date, delays []Segment[core.Duration]) core.Duration {
	for _, seg := range delays {
		if txEnd > seg.End {
			continue
		}

		return seg.Val
	}

	return math.Inf(1)
}

// SegmentationManager models a contact whose rate and delay vary over
// sub-intervals. Transmissions are booked out of a free-interval list that
// starts as the whole contact window and shrinks as schedules commit.
type SegmentationManager struct {
	free           []Segment[struct{}]
	rates          []Segment[core.DataRate]
	delays         []Segment[core.Duration]
	originalVolume core.Volume
}

// NewSegmentation builds a segmentation manager from its rate and delay
// plans. The plans must cover the contact window contiguously; TryInit
// verifies this.
func NewSegmentation(rates []Segment[core.DataRate], delays []Segment[core.Duration]) *SegmentationManager {
	return &SegmentationManager{rates: rates, delays: delays}
}

// TryInit verifies that the rate and delay plans tile the contact window
// with no gaps, derives the original volume, and opens the single initial
// free interval.
func (m *SegmentationManager) TryInit(info core.ContactInfo) bool {
	if !contiguous(m.rates, info.Start, info.End) || !contiguous(m.delays, info.Start, info.End) {
		return false
	}
	if len(m.free) != 0 {
		return false
	}
	m.originalVolume = planVolume(m.rates)
	m.free = append(m.free, Segment[struct{}]{Start: info.Start, End: info.End})

	return true
}

// DryRunTx walks the free intervals at or after atTime and grants the first
// one in which the whole bundle fits before the interval closes.
func (m *SegmentationManager) DryRunTx(_ core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	for _, seg := range m.free {
		if seg.End < atTime {
			continue
		}
		txStart := seg.Start
		if atTime > txStart {
			txStart = atTime
		}
		txEnd, ok := txEndAcross(m.rates, txStart, bundle.Size, seg.End)
		if !ok {
			continue
		}

		delay := delayAt(txEnd, m.delays)
		arrival := txEnd + delay
		if arrival > bundle.Expiration {
			return core.TxData{}, false
		}

		return core.TxData{
			TxStart:    txStart,
			TxEnd:      txEnd,
			Delay:      delay,
			Expiration: seg.End,
			Arrival:    arrival,
		}, true
	}

	return core.TxData{}, false
}

// ScheduleTx commits the transmission granted by an identical DryRunTx,
// splitting the chosen free interval around [TxStart, TxEnd]. Empty
// remainders are dropped rather than kept as zero-length intervals.
func (m *SegmentationManager) ScheduleTx(info core.ContactInfo, atTime core.Date, bundle *core.Bundle) (core.TxData, bool) {
	data, ok := m.DryRunTx(info, atTime, bundle)
	if !ok {
		return core.TxData{}, false
	}

	for i := range m.free {
		seg := m.free[i]
		if seg.End < atTime || data.TxEnd > seg.End || data.TxStart < seg.Start {
			continue
		}

		replacement := make([]Segment[struct{}], 0, 2)
		if seg.Start < data.TxStart {
			replacement = append(replacement, Segment[struct{}]{Start: seg.Start, End: data.TxStart})
		}
		if data.TxEnd < seg.End {
			replacement = append(replacement, Segment[struct{}]{Start: data.TxEnd, End: seg.End})
		}

		m.free = append(m.free[:i], append(replacement, m.free[i+1:]...)...)

		return data, true
	}

	return core.TxData{}, false
}

// OriginalVolume reports the deliverable volume the contact had at
// initialization.
func (m *SegmentationManager) OriginalVolume() core.Volume { return m.originalVolume }

// QueuedVolume reports the committed volume: the original volume minus what
// the remaining free intervals can still carry.
func (m *SegmentationManager) QueuedVolume() core.Volume {
	var free core.Volume
	for _, seg := range m.free {
		free += rateVolumeBetween(m.rates, seg.Start, seg.End)
	}

	return m.originalVolume - free
}

// rateVolumeBetween integrates the rate plan over [from, to].
func rateVolumeBetween(rates []Segment[core.DataRate], from, to core.Date) core.Volume {
	var total core.Volume
	for _, seg := range rates {
		lo, hi := seg.Start, seg.End
		if lo < from {
			lo = from
		}
		if hi > to {
			hi = to
		}
		if hi > lo {
			total += (hi - lo) * seg.Val
		}
	}

	return total
}
