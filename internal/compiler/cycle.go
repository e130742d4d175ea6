package compiler

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"

	"github.com/roach88/dronectl/internal/ir"
)

// AnalyzeRequires performs static satisfiability analysis on a profile
// whose relation endpoints are known to resolve.
//
// Unlike cycles between sync rules, every finding here is an error: a
// subsystem on a Requires cycle, or one that requires something it can
// never be enabled alongside, can never be enabled at all.
//
// The checks:
//  1. Requires edges must be acyclic (E211)
//  2. A preempting subsystem must not transitively require a target it
//     preempts (E212)
//  3. A subsystem must not transitively require something it conflicts
//     with, explicitly or through an exclusive group (E213)
//  4. A subsystem inside a preempt latch (the target or anything that
//     transitively requires it) must not transitively require the
//     preempting subsystem (E214)
func AnalyzeRequires(p *ir.Profile) []ValidationError {
	requires := make(map[string][]string)
	for _, r := range p.Relations {
		if r.Kind == ir.Requires {
			requires[r.From] = append(requires[r.From], r.To)
		}
	}

	if errs := detectRequiresCycles(p, requires); len(errs) > 0 {
		return errs
	}

	var errs []ValidationError

	for i, r := range p.Relations {
		switch r.Kind {
		case ir.Preempts:
			if reaches(requires, r.From, r.To) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("relations[%d]", i),
					Message: fmt.Sprintf("%q preempts %q but requires it", r.From, r.To),
					Code:    ErrPreemptsOwnRequirement,
				})
			}
			for _, x := range p.Subsystems() {
				if x == r.From || (x != r.To && !reaches(requires, x, r.To)) {
					continue
				}
				if reaches(requires, x, r.From) {
					errs = append(errs, ValidationError{
						Field:   fmt.Sprintf("relations[%d]", i),
						Message: fmt.Sprintf("%q requires %q, which preempts it", x, r.From),
						Code:    ErrRequiresPreempter,
					})
				}
			}
		case ir.Conflicts:
			errs = append(errs, checkConflictPair(requires, fmt.Sprintf("relations[%d]", i), r.From, r.To)...)
		}
	}

	for gi, g := range p.Groups {
		if !g.Exclusive {
			continue
		}
		for i, a := range g.Members {
			for _, b := range g.Members[i+1:] {
				errs = append(errs, checkConflictPair(requires, fmt.Sprintf("groups[%d]", gi), a, b)...)
			}
		}
	}

	return errs
}

func checkConflictPair(requires map[string][]string, field, a, b string) []ValidationError {
	var errs []ValidationError
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		if reaches(requires, pair[0], pair[1]) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q requires %q but they conflict", pair[0], pair[1]),
				Code:    ErrRequiresConflicting,
			})
		}
	}
	return errs
}

// detectRequiresCycles loads Requires edges into a directed lvlath graph and
// reports every simple cycle it finds.
func detectRequiresCycles(p *ir.Profile, requires map[string][]string) []ValidationError {
	g := core.NewGraph(core.WithDirected(true))
	for _, name := range p.Subsystems() {
		if err := g.AddVertex(name); err != nil {
			return []ValidationError{{Field: "groups", Message: err.Error(), Code: ErrSubsystemName}}
		}
	}

	added := make(map[[2]string]bool)
	for _, name := range p.Subsystems() {
		for _, to := range requires[name] {
			key := [2]string{name, to}
			if added[key] {
				continue
			}
			added[key] = true
			if _, err := g.AddEdge(name, to, 0); err != nil {
				return []ValidationError{{Field: "relations", Message: err.Error(), Code: ErrRequiresCycle}}
			}
		}
	}

	found, cycles, err := dfs.DetectCycles(g)
	if err != nil {
		return []ValidationError{{Field: "relations", Message: err.Error(), Code: ErrRequiresCycle}}
	}
	if !found {
		return nil
	}

	errs := make([]ValidationError, 0, len(cycles))
	for _, c := range cycles {
		// lvlath returns closed cycles: [a, b, a]
		errs = append(errs, ValidationError{
			Field:   "relations",
			Message: "requires cycle: " + strings.Join(c, " -> "),
			Code:    ErrRequiresCycle,
		})
	}
	return errs
}

// reaches reports whether from transitively requires to.
func reaches(requires map[string][]string, from, to string) bool {
	seen := map[string]bool{from: true}
	stack := append([]string(nil), requires[from]...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, requires[n]...)
	}
	return false
}
