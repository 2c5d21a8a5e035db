package contactplan

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dtnlab/sabre/contactmgr"
	"github.com/dtnlab/sabre/core"
)

// ManagerFactory builds a manager for a contact described only by an
// average rate and a one-way delay (the ION and TVGUtil formats carry no
// manager selection of their own).
type ManagerFactory func(rate core.DataRate, delay core.Duration) core.ContactManager

// Option configures the ION and TVGUtil loaders.
type Option func(*loaderOptions)

type loaderOptions struct {
	factory ManagerFactory
}

func defaultLoaderOptions() loaderOptions {
	return loaderOptions{
		factory: func(rate core.DataRate, delay core.Duration) core.ContactManager {
			return contactmgr.NewEVL(rate, delay)
		},
	}
}

// WithManagerFactory overrides the default EVL manager construction.
func WithManagerFactory(f ManagerFactory) Option {
	return func(o *loaderOptions) { o.factory = f }
}

// ParseION reads an ION-style plan, one statement per line:
//
//	a contact +<start> +<end> <tx> <rx> <rate>
//	a range   +<start> +<end> <tx> <rx> <owlt>
//
// Range statements feed the one-way light time used as the delay of the
// matching directed pair's contacts; pairs without a range get delay 0.
// Blank lines and lines starting with '#' are skipped. The node list is the
// dense range [0, maxID].
func ParseION(r io.Reader, opts ...Option) ([]core.Node, []*core.Contact, error) {
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	type rawContact struct {
		info core.ContactInfo
		rate core.DataRate
	}
	var raw []rawContact
	owlt := make(map[[2]core.NodeID]core.Duration)
	maxID := core.NodeID(0)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 7 || fields[0] != "a" {
			return nil, nil, fmt.Errorf("%w: line %d is not an ION statement", ErrSyntax, line)
		}

		start, err1 := parseIONDate(fields[2])
		end, err2 := parseIONDate(fields[3])
		tx, err3 := strconv.ParseUint(fields[4], 10, 32)
		rx, err4 := strconv.ParseUint(fields[5], 10, 32)
		val, err5 := strconv.ParseFloat(fields[6], 64)
		for _, err := range []error{err1, err2, err3, err4, err5} {
			if err != nil {
				return nil, nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, line, err)
			}
		}

		pair := [2]core.NodeID{core.NodeID(tx), core.NodeID(rx)}
		if pair[0] > maxID {
			maxID = pair[0]
		}
		if pair[1] > maxID {
			maxID = pair[1]
		}

		switch fields[1] {
		case "contact":
			raw = append(raw, rawContact{
				info: core.ContactInfo{TxNode: pair[0], RxNode: pair[1], Start: start, End: end},
				rate: val,
			})
		case "range":
			owlt[pair] = val
		default:
			return nil, nil, fmt.Errorf("%w: line %d: unknown statement %q", ErrSyntax, line, fields[1])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}

	nodes := make([]core.Node, maxID+1)
	for i := range nodes {
		nodes[i] = core.Node{ID: core.NodeID(i)}
	}

	contacts := make([]*core.Contact, 0, len(raw))
	for _, rc := range raw {
		delay := owlt[[2]core.NodeID{rc.info.TxNode, rc.info.RxNode}]
		contact, err := core.NewContact(len(contacts), rc.info, o.factory(rc.rate, delay))
		if err != nil {
			return nil, nil, err
		}
		contacts = append(contacts, contact)
	}

	return nodes, contacts, nil
}

// parseIONDate strips ION's leading '+' from a relative time.
func parseIONDate(tok string) (core.Date, error) {
	return strconv.ParseFloat(strings.TrimPrefix(tok, "+"), 64)
}
