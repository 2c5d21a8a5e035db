package contactplan

import (
	"fmt"
	"io"

	"github.com/dtnlab/sabre/core"
)

// ParseASABR reads an A-SABR token-stream plan:
//
//	node <id> [<name>]
//	contact <tx> <rx> <start> <end> <marker> <manager parameters…>
//
// The marker selects the contact's manager through the dispatcher (see
// StandardDispatcher). A nil dispatcher uses the standard one.
//
// Every contact is validated at load time: a manager whose TryInit rejects
// its window (e.g. a segmented contact with gapped plans) fails the whole
// load with core.ErrManagerInit.
func ParseASABR(r io.Reader, dispatcher *Dispatcher) ([]core.Node, []*core.Contact, error) {
	if dispatcher == nil {
		dispatcher = StandardDispatcher()
	}
	lx := NewLexer(r)

	var nodes []core.Node
	var contacts []*core.Contact

	for {
		tok, ok := lx.Next()
		if !ok {
			return nodes, contacts, nil
		}

		switch tok {
		case "node":
			id, err := lx.Uint()
			if err != nil {
				return nil, nil, err
			}
			node := core.Node{ID: core.NodeID(id)}
			// An optional alias follows when the next token opens no entity.
			if next, ok := lx.Peek(); ok && next != "node" && next != "contact" {
				lx.Next()
				node.Name = next
			}
			nodes = append(nodes, node)

		case "contact":
			info, marker, err := contactHeader(lx)
			if err != nil {
				return nil, nil, err
			}
			manager, err := dispatcher.dispatch(marker, lx)
			if err != nil {
				return nil, nil, err
			}
			contact, err := core.NewContact(len(contacts), info, manager)
			if err != nil {
				return nil, nil, err
			}
			contacts = append(contacts, contact)

		default:
			return nil, nil, fmt.Errorf("%w: unexpected token %q (token %d)", ErrSyntax, tok, lx.Position())
		}
	}
}

// contactHeader reads "<tx> <rx> <start> <end> <marker>".
func contactHeader(lx *Lexer) (core.ContactInfo, string, error) {
	tx, err := lx.Uint()
	if err != nil {
		return core.ContactInfo{}, "", err
	}
	rx, err := lx.Uint()
	if err != nil {
		return core.ContactInfo{}, "", err
	}
	start, err := lx.Float()
	if err != nil {
		return core.ContactInfo{}, "", err
	}
	end, err := lx.Float()
	if err != nil {
		return core.ContactInfo{}, "", err
	}
	marker, ok := lx.Next()
	if !ok {
		return core.ContactInfo{}, "", fmt.Errorf("%w: missing manager marker (token %d)", ErrSyntax, lx.Position())
	}

	info := core.ContactInfo{
		TxNode: core.NodeID(tx),
		RxNode: core.NodeID(rx),
		Start:  start,
		End:    end,
	}

	return info, marker, nil
}
