package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/dronectl/internal/ir"
)

// edge styling per relation kind
var dotEdgeAttrs = map[ir.RelationKind]string{
	ir.Requires:  `label="requires"`,
	ir.Implies:   `label="implies", style=dashed`,
	ir.Conflicts: `label="conflicts", dir=none, color=red`,
	ir.Preempts:  `label="preempts", color=orange`,
}

// DOT renders the graph in GraphViz DOT format.
//
// Subsystems are clustered by group. Subsystems for which enabled returns
// true are drawn filled; enabled may be nil. Edges follow relation
// declaration order, then the implicit conflicts of exclusive groups.
func (g *Graph) DOT(enabled func(i int) bool) string {
	var b strings.Builder

	b.WriteString("digraph subsystems {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, grp := range g.profile.Groups {
		fmt.Fprintf(&b, "  subgraph %q {\n", "cluster_"+grp.Name)
		fmt.Fprintf(&b, "    label=%q;\n", grp.Name)
		for _, name := range grp.Members {
			if enabled != nil && enabled(g.index[name]) {
				fmt.Fprintf(&b, "    %q [style=\"rounded,filled\", fillcolor=palegreen];\n", name)
			} else {
				fmt.Fprintf(&b, "    %q;\n", name)
			}
		}
		b.WriteString("  }\n\n")
	}

	seen := make(map[ir.Relation]bool)
	for _, r := range g.profile.Relations {
		if seen[r] {
			continue
		}
		seen[r] = true
		fmt.Fprintf(&b, "  %q -> %q [%s];\n", r.From, r.To, dotEdgeAttrs[r.Kind])
	}
	for _, grp := range g.profile.Groups {
		if !grp.Exclusive {
			continue
		}
		for i, a := range grp.Members {
			for _, c := range grp.Members[i+1:] {
				fmt.Fprintf(&b, "  %q -> %q [label=\"exclusive\", dir=none, color=red];\n", a, c)
			}
		}
	}

	b.WriteString("}\n")
	return b.String()
}
