package route

import (
	"fmt"
	"strings"
)

// Hops returns the incoming edges of a committed stage, oldest hop first.
func Hops(stage *RouteStage) []*Via {
	var vias []*Via
	for curr := stage; curr.Via != nil; curr = curr.Via.Parent {
		vias = append(vias, curr.Via)
	}
	for i, j := 0, len(vias)-1; i < j; i, j = i+1, j-1 {
		vias[i], vias[j] = vias[j], vias[i]
	}

	return vias
}

// Describe renders a committed stage as a human-readable backtrace, one
// line per traversed stage in transmission order.
func Describe(stage *RouteStage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "route to node %d at t=%g with %d hop(s):\n",
		stage.ToNode, stage.AtTime, stage.HopCount)

	var lines []string
	for curr := stage; curr != nil; {
		lines = append(lines, fmt.Sprintf("\t- reach node %d at t=%g with %d hop(s)",
			curr.ToNode, curr.AtTime, curr.HopCount))
		if curr.Via == nil {
			break
		}
		curr = curr.Via.Parent
	}
	for i := len(lines) - 1; i >= 0; i-- {
		b.WriteString(lines[i])
		if i > 0 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}
