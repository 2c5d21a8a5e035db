package routing_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/dtnlab/sabre/contactmgr"
	"github.com/dtnlab/sabre/core"
	"github.com/dtnlab/sabre/distance"
	"github.com/dtnlab/sabre/routing"
	"github.com/dtnlab/sabre/storage"
)

// buildLayeredPlan constructs a layered random plan: `layers` ranks of
// `width` nodes each, every node linked to every node of the next rank by a
// contact with a jittered window. Deterministic seed for reproducibility.
func buildLayeredPlan(layers, width int, seed int64) ([]core.Node, []*core.Contact) {
	r := rand.New(rand.NewSource(seed))
	n := layers * width
	nodes := make([]core.Node, n)
	for i := range nodes {
		nodes[i] = core.Node{ID: core.NodeID(i)}
	}

	var contacts []*core.Contact
	for layer := 0; layer < layers-1; layer++ {
		for from := 0; from < width; from++ {
			for to := 0; to < width; to++ {
				start := float64(layer*10) + r.Float64()*5
				end := start + 50 + r.Float64()*100
				info := core.ContactInfo{
					TxNode: core.NodeID(layer*width + from),
					RxNode: core.NodeID((layer+1)*width + to),
					Start:  start,
					End:    end,
				}
				c, err := core.NewContact(len(contacts), info, contactmgr.NewEVL(1e6, 0.05))
				if err != nil {
					panic(err)
				}
				contacts = append(contacts, c)
			}
		}
	}

	return nodes, contacts
}

// BenchmarkRouters measures one unicast routing call per router flavour on
// layered plans of increasing size. Contact capacities are large enough
// that repeated commits stay feasible across iterations.
func BenchmarkRouters(b *testing.B) {
	shapes := []struct{ layers, width int }{
		{4, 4},
		{8, 8},
		{16, 8},
	}

	for _, shape := range shapes {
		name := fmt.Sprintf("%dx%d", shape.layers, shape.width)
		dest := core.NodeID(shape.layers*shape.width - 1)
		// Size 1 against megabit contacts: iterations stay volume-neutral
		// enough that every commit in a benchmark run remains feasible.
		bundle := &core.Bundle{
			Source:       0,
			Destinations: []core.NodeID{dest},
			Size:         1,
			Expiration:   1e9,
		}

		b.Run("Spsn/"+name, func(b *testing.B) {
			nodes, contacts := buildLayeredPlan(shape.layers, shape.width, 42)
			router, err := routing.NewSpsn(nodes, contacts, storage.NewTreeCache(true, false, 10))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if out := router.Route(0, bundle, 0, nil); out == nil {
					b.Fatal("no route")
				}
			}
		})

		b.Run("SpsnHop/"+name, func(b *testing.B) {
			nodes, contacts := buildLayeredPlan(shape.layers, shape.width, 42)
			router, err := routing.NewSpsn(nodes, contacts, storage.NewTreeCache(true, false, 10),
				routing.WithDistance(distance.Hop{}))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if out := router.Route(0, bundle, 0, nil); out == nil {
					b.Fatal("no route")
				}
			}
		})

		b.Run("Cgr/"+name, func(b *testing.B) {
			nodes, contacts := buildLayeredPlan(shape.layers, shape.width, 42)
			router, err := routing.NewCgr(nodes, contacts, storage.NewRoutingTable(true, false),
				routing.WithSuppression(routing.SuppressFirstEnding))
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if out := router.Route(0, bundle, 0, nil); out == nil {
					b.Fatal("no route")
				}
			}
		})
	}
}
