package codepath

import (
	"fmt"
	"strings"
)

// Dot renders the path as a Graphviz digraph. Unreachable segments are
// dashed boxes, loop back-edges dashed arrows, and the pseudo nodes
// "initial", "final" and "thrown" mark the entry and exits.
func Dot(p *Path) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", p.id)
	b.WriteString("  node [shape=box];\n")
	b.WriteString("  initial [label=\"\", shape=circle, style=filled, fillcolor=black, width=0.25, height=0.25];\n")
	if len(p.final) > 0 {
		b.WriteString("  final [label=\"\", shape=doublecircle, style=filled, fillcolor=black, width=0.25, height=0.25];\n")
	}
	if len(p.thrown) > 0 {
		b.WriteString("  thrown [label=\"✘\", shape=circle, width=0.3, height=0.3, fixedsize=true];\n")
	}

	segments := p.Segments()
	for _, s := range segments {
		if s.reachable {
			fmt.Fprintf(&b, "  %q;\n", s.id)
		} else {
			fmt.Fprintf(&b, "  %q [style=dashed];\n", s.id)
		}
	}

	fmt.Fprintf(&b, "  initial->%q;\n", p.initial.id)
	for _, s := range segments {
		for _, n := range s.allNext {
			var attrs []string
			if n.IsLoopedPrevSegment(s) {
				attrs = append(attrs, "style=dashed")
			}
			if !s.reachable || !n.reachable {
				attrs = append(attrs, "color=gray")
			}
			if len(attrs) > 0 {
				fmt.Fprintf(&b, "  %q->%q [%s];\n", s.id, n.id, strings.Join(attrs, ", "))
			} else {
				fmt.Fprintf(&b, "  %q->%q;\n", s.id, n.id)
			}
		}
	}
	for _, s := range p.final {
		if containsSegment(p.thrown, s) {
			fmt.Fprintf(&b, "  %q->thrown;\n", s.id)
		} else {
			fmt.Fprintf(&b, "  %q->final;\n", s.id)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
