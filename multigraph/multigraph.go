// Package multigraph provides the node-indexed view of a contact plan used
// by pathfinding: for each transmitting node, its receivers, and for each
// receiver the parallel contacts serving that directed pair, ordered by end
// time.
//
// The structure carries two pieces of per-search state that exploit the
// engine's time monotonicity:
//
//   - a per-receiver prune cursor that skips contacts already ended at the
//     current routing time; since curr_time never decreases across route()
//     calls, the cursor only ever advances;
//   - a per-receiver exclusion bit, rewritten from a sorted node list at the
//     start of a search.
//
// Errors (sentinel):
//
//   - ErrNoNodes      if the plan has no nodes.
//   - ErrUnknownNode  if a contact references a node outside the dense ID
//     range.
package multigraph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dtnlab/sabre/core"
)

// Sentinel errors for multigraph construction.
var (
	// ErrNoNodes indicates an empty node list.
	ErrNoNodes = errors.New("multigraph: contact plan has no nodes")

	// ErrUnknownNode indicates a contact endpoint outside [0, len(nodes)).
	ErrUnknownNode = errors.New("multigraph: contact references unknown node")
)

// Receiver is one directed neighbour of a sender: the parallel contacts
// toward a single receiving node, ordered by end time ascending.
type Receiver struct {
	// Node is the receiving node.
	Node core.NodeID

	// Contacts are the parallel contacts to Node, sorted by Info.End.
	Contacts []*core.Contact

	excluded bool
	cursor   int
}

// Excluded reports whether the receiver is excluded from the current
// search.
func (r *Receiver) Excluded() bool { return r.excluded }

// LazyPruneFirstIdx advances the prune cursor past contacts whose window
// has closed by currentTime and returns the index of the first live
// contact, or false when every contact has expired. The cursor is
// monotone: callers must present non-decreasing times.
func (r *Receiver) LazyPruneFirstIdx(currentTime core.Date) (int, bool) {
	for r.cursor < len(r.Contacts) && r.Contacts[r.cursor].Info.End <= currentTime {
		r.cursor++
	}
	if r.cursor == len(r.Contacts) {
		return 0, false
	}

	return r.cursor, true
}

// Sender groups the receivers of one transmitting node, ordered by
// receiving node ID.
type Sender struct {
	// Node is the transmitting node.
	Node core.NodeID

	// Receivers are the sender's neighbours, sorted by Node.
	Receivers []*Receiver
}

// Multigraph is the node-indexed contact plan.
type Multigraph struct {
	nodes   []core.Node
	senders []*Sender
}

// New assembles the multigraph from a dense node list and validated
// contacts. Self-loop contacts (tx == rx) are dropped: no route ever
// traverses one.
func New(nodes []core.Node, contacts []*core.Contact) (*Multigraph, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}

	g := &Multigraph{nodes: nodes, senders: make([]*Sender, len(nodes))}
	for i := range g.senders {
		g.senders[i] = &Sender{Node: core.NodeID(i)}
	}

	buckets := make(map[[2]core.NodeID]*Receiver)
	for _, c := range contacts {
		if int(c.Info.TxNode) >= len(nodes) || int(c.Info.RxNode) >= len(nodes) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownNode, c.Info)
		}
		if c.Info.TxNode == c.Info.RxNode {
			continue
		}

		key := [2]core.NodeID{c.Info.TxNode, c.Info.RxNode}
		recv, ok := buckets[key]
		if !ok {
			recv = &Receiver{Node: c.Info.RxNode}
			buckets[key] = recv
			sender := g.senders[c.Info.TxNode]
			sender.Receivers = append(sender.Receivers, recv)
		}
		recv.Contacts = append(recv.Contacts, c)
	}

	for _, sender := range g.senders {
		sort.Slice(sender.Receivers, func(i, j int) bool {
			return sender.Receivers[i].Node < sender.Receivers[j].Node
		})
		for _, recv := range sender.Receivers {
			sort.SliceStable(recv.Contacts, func(i, j int) bool {
				return recv.Contacts[i].Info.End < recv.Contacts[j].Info.End
			})
		}
	}

	return g, nil
}

// NodeCount is the number of nodes in the plan.
func (g *Multigraph) NodeCount() int { return len(g.nodes) }

// Nodes returns the plan's node list.
func (g *Multigraph) Nodes() []core.Node { return g.nodes }

// Sender returns the adjacency of a transmitting node.
func (g *Multigraph) Sender(node core.NodeID) *Sender { return g.senders[node] }

// ApplyExclusionsSorted rewrites every receiver's exclusion bit from a
// sorted node list. The walk is a sorted merge per sender, and the call is
// re-entrant within one search: bits not named are cleared.
func (g *Multigraph) ApplyExclusionsSorted(excludedSorted []core.NodeID) {
	for _, sender := range g.senders {
		i := 0
		for _, recv := range sender.Receivers {
			for i < len(excludedSorted) && excludedSorted[i] < recv.Node {
				i++
			}
			recv.excluded = i < len(excludedSorted) && excludedSorted[i] == recv.Node
		}
	}
}

// EachContact visits every contact in the plan once; routers use it to
// clear suppression marks between routing calls.
func (g *Multigraph) EachContact(fn func(*core.Contact)) {
	for _, sender := range g.senders {
		for _, recv := range sender.Receivers {
			for _, c := range recv.Contacts {
				fn(c)
			}
		}
	}
}
