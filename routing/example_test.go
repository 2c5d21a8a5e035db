package routing_test

import (
	"fmt"
	"strings"

	"github.com/dtnlab/sabre/contactplan"
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/route"
	"github.com/dtnlab/sabre/routing"
	"github.com/dtnlab/sabre/storage"
)

// ExampleSpsn routes a bundle over a small A-SABR plan and prints the
// committed route.
func ExampleSpsn() {
	plan := `
node 0 relay-a
node 1 relay-b
node 2 ground
contact 0 1 0 100 evl 1 10
contact 1 2 20 200 evl 1 10
`
	nodes, contacts, err := contactplan.ParseASABR(strings.NewReader(plan), nil)
	if err != nil {
		fmt.Println("load:", err)

		return
	}

	router, err := routing.NewSpsn(nodes, contacts, storage.NewTreeCache(false, false, 10))
	if err != nil {
		fmt.Println("router:", err)

		return
	}

	bundle := &core.Bundle{
		Source:       0,
		Destinations: []core.NodeID{2},
		Size:         10,
		Expiration:   10000,
	}
	out := router.Route(0, bundle, 0, nil)
	if out == nil {
		fmt.Println("no route")

		return
	}

	for _, hop := range out.FirstHops {
		for _, dest := range hop.Destinations {
			fmt.Println(route.Describe(dest))
		}
	}
	// Output:
	// route to node 2 at t=40 with 2 hop(s):
	// 	- reach node 0 at t=0 with 0 hop(s)
	// 	- reach node 1 at t=20 with 1 hop(s)
	// 	- reach node 2 at t=40 with 2 hop(s)
}
