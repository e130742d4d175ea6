package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/roach88/dronectl/internal/ir"
)

// ErrRequiresCycle is returned by New when Requires edges form a cycle.
var ErrRequiresCycle = errors.New("requires relations form a cycle")

// Graph is the compiled, read-only constraint graph of a profile.
type Graph struct {
	profile *ir.Profile

	names []string
	index map[string]int
	group []string

	requires   [][]int
	requiredBy [][]int
	implies    [][]int
	conflicts  [][]int
	preempts   [][]int
	latch      [][]int

	rank        []int
	flightModes []int
	armRequired []int
	fingerprint string
}

// New builds a Graph from a profile.
//
// New checks only what it needs to build index tables: every relation
// endpoint must be a registered subsystem, names must be unique, and
// Requires must be acyclic. Richer diagnostics live in the compiler.
func New(p *ir.Profile) (*Graph, error) {
	if p == nil {
		return nil, errors.New("graph: nil profile")
	}

	g := &Graph{
		profile: p,
		index:   make(map[string]int),
	}

	for _, grp := range p.Groups {
		for _, name := range grp.Members {
			if name == "" {
				return nil, fmt.Errorf("graph: group %q has an empty member name", grp.Name)
			}
			if _, dup := g.index[name]; dup {
				return nil, fmt.Errorf("graph: subsystem %q registered twice", name)
			}
			g.index[name] = len(g.names)
			g.names = append(g.names, name)
			g.group = append(g.group, grp.Name)
		}
	}

	n := len(g.names)
	g.requires = make([][]int, n)
	g.requiredBy = make([][]int, n)
	g.implies = make([][]int, n)
	g.conflicts = make([][]int, n)
	g.preempts = make([][]int, n)
	g.latch = make([][]int, n)

	for _, r := range p.Relations {
		from, ok := g.index[r.From]
		if !ok {
			return nil, fmt.Errorf("graph: %s relation from unknown subsystem %q", r.Kind, r.From)
		}
		to, ok := g.index[r.To]
		if !ok {
			return nil, fmt.Errorf("graph: %s relation to unknown subsystem %q", r.Kind, r.To)
		}
		if from == to {
			return nil, fmt.Errorf("graph: %s relation on %q refers to itself", r.Kind, r.From)
		}

		switch r.Kind {
		case ir.Requires:
			g.requires[from] = appendUnique(g.requires[from], to)
			g.requiredBy[to] = appendUnique(g.requiredBy[to], from)
		case ir.Implies:
			g.implies[from] = appendUnique(g.implies[from], to)
		case ir.Conflicts:
			g.conflicts[from] = appendUnique(g.conflicts[from], to)
			g.conflicts[to] = appendUnique(g.conflicts[to], from)
		case ir.Preempts:
			g.preempts[from] = appendUnique(g.preempts[from], to)
		default:
			return nil, fmt.Errorf("graph: unknown relation kind %q", r.Kind)
		}
	}

	for _, grp := range p.Groups {
		if !grp.Exclusive {
			continue
		}
		for i, a := range grp.Members {
			for _, b := range grp.Members[i+1:] {
				ai, bi := g.index[a], g.index[b]
				g.conflicts[ai] = appendUnique(g.conflicts[ai], bi)
				g.conflicts[bi] = appendUnique(g.conflicts[bi], ai)
			}
		}
	}

	// Adjacency lists are reported in registration order.
	for i := 0; i < n; i++ {
		slices.Sort(g.requiredBy[i])
		slices.Sort(g.conflicts[i])
	}

	if err := g.computeRank(); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		g.latch[i] = g.computeLatch(i)
	}

	if p.FlightModes != "" {
		grp, ok := p.Group(p.FlightModes)
		if !ok {
			return nil, fmt.Errorf("graph: flight mode group %q not found", p.FlightModes)
		}
		for _, m := range grp.Members {
			g.flightModes = append(g.flightModes, g.index[m])
		}
	}

	for _, name := range p.ArmRequired {
		i, ok := g.index[name]
		if !ok {
			return nil, fmt.Errorf("graph: arm requirement names unknown subsystem %q", name)
		}
		g.armRequired = append(g.armRequired, i)
	}

	fp, err := ir.ProfileHash(p)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	g.fingerprint = fp

	return g, nil
}

// computeRank orders subsystems so that every subsystem comes before the
// subsystems it requires.
func (g *Graph) computeRank() error {
	dg := core.NewGraph(core.WithDirected(true))
	for _, name := range g.names {
		if err := dg.AddVertex(name); err != nil {
			return fmt.Errorf("graph: add vertex %q: %w", name, err)
		}
	}
	for from, targets := range g.requires {
		for _, to := range targets {
			if _, err := dg.AddEdge(g.names[from], g.names[to], 0); err != nil {
				return fmt.Errorf("graph: add edge %s -> %s: %w", g.names[from], g.names[to], err)
			}
		}
	}

	order, err := dfs.TopologicalSort(dg)
	if err != nil {
		if errors.Is(err, dfs.ErrCycleDetected) {
			return ErrRequiresCycle
		}
		return fmt.Errorf("graph: topological sort: %w", err)
	}

	g.rank = make([]int, len(g.names))
	for pos, name := range order {
		g.rank[g.index[name]] = pos
	}
	return nil
}

// computeLatch returns the subsystems held disabled while s is enabled:
// each preempted target plus everything that transitively requires it.
func (g *Graph) computeLatch(s int) []int {
	if len(g.preempts[s]) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, t := range g.preempts[s] {
		for _, x := range append([]int{t}, g.TransitiveRequirers(t)...) {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	slices.Sort(out)
	return out
}

// TransitiveRequirers returns every subsystem that requires i directly or
// through a chain of Requires edges, in registration order.
func (g *Graph) TransitiveRequirers(i int) []int {
	seen := make(map[int]bool)
	queue := append([]int(nil), g.requiredBy[i]...)
	var out []int
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
		queue = append(queue, g.requiredBy[x]...)
	}
	slices.Sort(out)
	return out
}

func appendUnique(s []int, v int) []int {
	if slices.Contains(s, v) {
		return s
	}
	return append(s, v)
}

// Len returns the number of registered subsystems.
func (g *Graph) Len() int { return len(g.names) }

// Name returns the subsystem name at index i.
func (g *Graph) Name(i int) string { return g.names[i] }

// Names returns all subsystem names in registration order.
func (g *Graph) Names() []string { return slices.Clone(g.names) }

// Index resolves a subsystem name.
func (g *Graph) Index(name string) (int, bool) {
	i, ok := g.index[name]
	return i, ok
}

// GroupOf returns the group name subsystem i was registered under.
func (g *Graph) GroupOf(i int) string { return g.group[i] }

// Groups returns the profile's groups.
func (g *Graph) Groups() []ir.Group { return g.profile.Groups }

// Profile returns the profile the graph was built from.
func (g *Graph) Profile() *ir.Profile { return g.profile }

// Requires returns the direct Requires targets of i in declaration order.
func (g *Graph) Requires(i int) []int { return g.requires[i] }

// RequiredBy returns the subsystems that directly require i.
func (g *Graph) RequiredBy(i int) []int { return g.requiredBy[i] }

// Implies returns the direct Implies targets of i.
func (g *Graph) Implies(i int) []int { return g.implies[i] }

// Conflicts returns every subsystem that conflicts with i, including
// members of a shared exclusive group.
func (g *Graph) Conflicts(i int) []int { return g.conflicts[i] }

// Preempts returns the direct Preempts targets of i.
func (g *Graph) Preempts(i int) []int { return g.preempts[i] }

// Latch returns the subsystems inhibited while i is enabled.
func (g *Graph) Latch(i int) []int { return g.latch[i] }

// Preempting reports whether a preempts b.
func (g *Graph) Preempting(a, b int) bool { return slices.Contains(g.preempts[a], b) }

// Rank returns i's position in dependents-first order.
func (g *Graph) Rank(i int) int { return g.rank[i] }

// FlightModes returns the flight mode subsystems in scan order.
func (g *Graph) FlightModes() []int { return g.flightModes }

// IsFlightMode reports whether i belongs to the flight mode group.
func (g *Graph) IsFlightMode(i int) bool { return slices.Contains(g.flightModes, i) }

// ArmRequired returns the subsystems that must be enabled before arming.
func (g *Graph) ArmRequired() []int { return g.armRequired }

// Fingerprint returns the profile hash.
func (g *Graph) Fingerprint() string { return g.fingerprint }
