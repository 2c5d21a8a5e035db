package contactplan

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/dtnlab/sabre/core"
)

// json is the decoder used for TVGUtil documents; plans can run to hundreds
// of thousands of contacts.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tvgContact is one entry of the TVGUtil "contacts" array.
type tvgContact struct {
	Source core.NodeID   `json:"source"`
	Dest   core.NodeID   `json:"dest"`
	Start  core.Date     `json:"start"`
	End    core.Date     `json:"end"`
	Rate   core.DataRate `json:"rate"`
}

// tvgDocument is the TVGUtil JSON layout.
type tvgDocument struct {
	Contacts []tvgContact `json:"contacts"`
}

// ParseTVGUtil reads a TVGUtil JSON plan. The format carries no delay and
// no manager selection; the factory (default EVL, delay 0) decides the
// policy. The node list is the dense range [0, maxID].
func ParseTVGUtil(r io.Reader, opts ...Option) ([]core.Node, []*core.Contact, error) {
	o := defaultLoaderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var doc tvgDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	maxID := core.NodeID(0)
	for _, tc := range doc.Contacts {
		if tc.Source > maxID {
			maxID = tc.Source
		}
		if tc.Dest > maxID {
			maxID = tc.Dest
		}
	}

	nodes := make([]core.Node, maxID+1)
	for i := range nodes {
		nodes[i] = core.Node{ID: core.NodeID(i)}
	}

	contacts := make([]*core.Contact, 0, len(doc.Contacts))
	for _, tc := range doc.Contacts {
		info := core.ContactInfo{TxNode: tc.Source, RxNode: tc.Dest, Start: tc.Start, End: tc.End}
		contact, err := core.NewContact(len(contacts), info, o.factory(tc.Rate, 0))
		if err != nil {
			return nil, nil, err
		}
		contacts = append(contacts, contact)
	}

	return nodes, contacts, nil
}
