package contactplan

import (
	"fmt"

	"github.com/dtnlab/sabre/contactmgr"
	"github.com/dtnlab/sabre/core"
)

// ManagerParser consumes a manager's parameters from the token stream and
// builds the manager.
type ManagerParser func(lx *Lexer) (core.ContactManager, error)

// Dispatcher maps contact markers to manager parsers, so one plan can mix
// manager policies per contact.
type Dispatcher struct {
	parsers map[string]ManagerParser
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{parsers: make(map[string]ManagerParser)}
}

// Add registers a parser for a marker, replacing any previous one.
func (d *Dispatcher) Add(marker string, p ManagerParser) { d.parsers[marker] = p }

// dispatch resolves a marker and runs its parser.
func (d *Dispatcher) dispatch(marker string, lx *Lexer) (core.ContactManager, error) {
	p, ok := d.parsers[marker]
	if !ok {
		return nil, fmt.Errorf("%w: %q (token %d)", ErrUnknownMarker, marker, lx.Position())
	}

	return p(lx)
}

// StandardDispatcher registers the eight built-in managers under their
// canonical markers.
func StandardDispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Add("evl", ParseEVL)
	d.Add("eto", ParseETO)
	d.Add("qd", ParseQD)
	d.Add("seg", ParseSeg)
	d.Add("pevl", ParsePEVL)
	d.Add("peto", ParsePETO)
	d.Add("pqd", ParsePQD)
	d.Add("pseg", ParsePSeg)

	return d
}

// rateAndDelay reads the two floats every queue manager starts with.
func rateAndDelay(lx *Lexer) (core.DataRate, core.Duration, error) {
	rate, err := lx.Float()
	if err != nil {
		return 0, 0, err
	}
	delay, err := lx.Float()
	if err != nil {
		return 0, 0, err
	}

	return rate, delay, nil
}

// mavTriple reads the three per-band MAV floats of a priority manager.
func mavTriple(lx *Lexer) ([core.PriorityBands]core.Volume, error) {
	var mav [core.PriorityBands]core.Volume
	for i := range mav {
		v, err := lx.Float()
		if err != nil {
			return mav, fmt.Errorf("parsing MAV of priority %d: %w", i, err)
		}
		mav[i] = v
	}

	return mav, nil
}

// ParseEVL parses "rate delay" into an EVL manager.
func ParseEVL(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewEVL(rate, delay), nil
}

// ParseETO parses "rate delay" into an ETO manager.
func ParseETO(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewETO(rate, delay), nil
}

// ParseQD parses "rate delay" into a QD manager.
func ParseQD(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewQD(rate, delay), nil
}

// ParsePEVL parses "rate delay mav0 mav1 mav2" into a priority EVL manager.
func ParsePEVL(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}
	mav, err := mavTriple(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewPEVL(rate, delay, mav), nil
}

// ParsePETO parses "rate delay mav0 mav1 mav2" into a priority ETO manager.
func ParsePETO(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}
	mav, err := mavTriple(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewPETO(rate, delay, mav), nil
}

// ParsePQD parses "rate delay mav0 mav1 mav2" into a priority QD manager.
func ParsePQD(lx *Lexer) (core.ContactManager, error) {
	rate, delay, err := rateAndDelay(lx)
	if err != nil {
		return nil, err
	}
	mav, err := mavTriple(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewPQD(rate, delay, mav), nil
}

// segmentPlans reads the repeated "rate <start> <end> <value>" and
// "delay <start> <end> <value>" groups of a segmented contact, stopping at
// the first token that is neither keyword.
func segmentPlans(lx *Lexer) ([]contactmgr.Segment[core.DataRate], []contactmgr.Segment[core.Duration], error) {
	var rates []contactmgr.Segment[core.DataRate]
	var delays []contactmgr.Segment[core.Duration]

	for {
		tok, ok := lx.Peek()
		if !ok || (tok != "rate" && tok != "delay") {
			return rates, delays, nil
		}
		lx.Next()

		start, err := lx.Float()
		if err != nil {
			return nil, nil, err
		}
		end, err := lx.Float()
		if err != nil {
			return nil, nil, err
		}
		val, err := lx.Float()
		if err != nil {
			return nil, nil, err
		}

		if tok == "rate" {
			rates = append(rates, contactmgr.Segment[core.DataRate]{Start: start, End: end, Val: val})
		} else {
			delays = append(delays, contactmgr.Segment[core.Duration]{Start: start, End: end, Val: val})
		}
	}
}

// ParseSeg parses a segmented contact's rate/delay plans.
func ParseSeg(lx *Lexer) (core.ContactManager, error) {
	rates, delays, err := segmentPlans(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewSegmentation(rates, delays), nil
}

// ParsePSeg parses a priority segmented contact's rate/delay plans.
func ParsePSeg(lx *Lexer) (core.ContactManager, error) {
	rates, delays, err := segmentPlans(lx)
	if err != nil {
		return nil, err
	}

	return contactmgr.NewPSegmentation(rates, delays), nil
}
