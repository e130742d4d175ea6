package engine

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/roach88/dronectl/internal/graph"
)

// change is one flag flip proposed by a plan.
type change struct {
	node    int
	enabled bool
}

// plan is a speculative overlay over the committed enabled-set.
//
// An Enable call runs entirely against a plan. Nothing touches the engine
// until the whole cascade has succeeded, at which point the recorded
// changes are applied and published in order. A failed cascade is simply
// discarded.
//
// INVARIANTS:
//   - changes holds only real flips (never sets a flag to its current value)
//   - rollback(m) restores exactly the state seen at mark() == m
type plan struct {
	g       *graph.Graph
	base    []bool
	overlay map[int]bool
	changes []change
	logger  *slog.Logger
}

func newPlan(g *graph.Graph, base []bool, logger *slog.Logger) *plan {
	return &plan{
		g:       g,
		base:    base,
		overlay: make(map[int]bool),
		logger:  logger,
	}
}

func (p *plan) isEnabled(i int) bool {
	if v, ok := p.overlay[i]; ok {
		return v
	}
	return p.base[i]
}

func (p *plan) set(i int, v bool) {
	if p.isEnabled(i) == v {
		return
	}
	p.overlay[i] = v
	p.changes = append(p.changes, change{node: i, enabled: v})
}

func (p *plan) mark() int { return len(p.changes) }

func (p *plan) rollback(m int) {
	for k := len(p.changes) - 1; k >= m; k-- {
		c := p.changes[k]
		p.overlay[c.node] = !c.enabled
	}
	p.changes = p.changes[:m]
}

// inhibitor returns the first enabled subsystem, in registration order,
// whose preempt latch covers i.
func (p *plan) inhibitor(i int) (int, bool) {
	for s := 0; s < p.g.Len(); s++ {
		if p.isEnabled(s) && slices.Contains(p.g.Latch(s), i) {
			return s, true
		}
	}
	return 0, false
}

var errPreempted = errors.New("it was disabled by a preempting subsystem")

// enable proposes enabling i and everything it needs.
//
// Order of effects: required subsystems (depth first, declaration order),
// then forced disables of preempted subsystems, then i itself, then
// implied subsystems. Implies is best-effort: an implied subsystem that
// cannot be enabled is skipped and its partial effects rolled back.
func (p *plan) enable(i int) error {
	g := p.g
	name := g.Name(i)

	if p.isEnabled(i) {
		return nil
	}

	if by, ok := p.inhibitor(i); ok {
		return newInhibitedError(name, g.Name(by))
	}

	for _, r := range g.Requires(i) {
		if p.isEnabled(r) {
			continue
		}
		if err := p.enable(r); err != nil {
			return newDependencyError(name, g.Name(r), err)
		}
	}

	for _, c := range g.Conflicts(i) {
		if p.isEnabled(c) && !g.Preempting(i, c) {
			return newConflictError(name, g.Name(c))
		}
	}

	for _, t := range g.Preempts(i) {
		if p.isEnabled(t) {
			p.forceDisable(t, i)
		}
	}

	// A preempt cascade may have taken out one of our own requirements.
	for _, r := range g.Requires(i) {
		if !p.isEnabled(r) {
			return newDependencyError(name, g.Name(r), errPreempted)
		}
	}

	// A requirement enabled above may itself latch i.
	if by, ok := p.inhibitor(i); ok {
		return newInhibitedError(name, g.Name(by))
	}

	p.set(i, true)

	for _, t := range g.Implies(i) {
		if p.isEnabled(t) {
			continue
		}
		m := p.mark()
		err := p.enable(t)
		if err == nil && !p.isEnabled(i) {
			err = errPreempted
		}
		if err != nil {
			p.rollback(m)
			p.logger.Debug("implied subsystem skipped",
				"subsystem", name,
				"implied", g.Name(t),
				"reason", err.Error())
		}
	}

	return nil
}

// forceDisable disables t and every enabled subsystem that transitively
// requires it, dependents before their dependencies.
func (p *plan) forceDisable(t, by int) {
	g := p.g

	victims := []int{t}
	for _, r := range g.TransitiveRequirers(t) {
		if p.isEnabled(r) {
			victims = append(victims, r)
		}
	}
	slices.SortFunc(victims, func(a, b int) int { return g.Rank(a) - g.Rank(b) })

	for _, v := range victims {
		p.set(v, false)
	}

	disabled := make([]string, len(victims))
	for k, v := range victims {
		disabled[k] = g.Name(v)
	}
	p.logger.Warn("preempt cascade",
		"preempted_by", g.Name(by),
		"target", g.Name(t),
		"disabled", disabled)
}
