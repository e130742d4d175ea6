package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/dronectl/internal/events"
	"github.com/roach88/dronectl/internal/graph"
	"github.com/roach88/dronectl/internal/ir"
)

// Engine owns the enabled-set of one vehicle and enforces the constraint
// graph on every change.
//
// INVARIANTS (hold between calls):
//   - every enabled subsystem has all its Requires targets enabled
//   - no two conflicting subsystems are enabled
//   - nothing in the latch of an enabled preempting subsystem is enabled
//
// Thread-safety: none. The engine is single-owner; callers that share it
// across goroutines must serialize access.
type Engine struct {
	graph   *graph.Graph
	enabled []bool
	events  events.Publisher
	logger  *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPublisher sets where change and error notifications go.
// Default: notifications are dropped.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) {
		e.events = p
	}
}

type discard struct{}

func (discard) Publish(events.Event) {}

// New creates an Engine over g with every subsystem disabled.
func New(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:   g,
		enabled: make([]bool, g.Len()),
		events:  discard{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Graph returns the static constraint graph.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// resolve maps a name to its index.
func (e *Engine) resolve(name string) (int, *Error) {
	if name == "" {
		return 0, newEmptyNameError()
	}
	i, ok := e.graph.Index(name)
	if !ok {
		return 0, newUnknownError(name)
	}
	return i, nil
}

// fail publishes a subsystem error for a refused top-level request.
func (e *Engine) fail(op, name string, err *Error) error {
	e.logger.Info("subsystem request refused",
		"op", op,
		"subsystem", name,
		"code", err.Code,
		"reason", err.Message)
	e.events.Publish(events.Failed(name, err.Message))
	return err
}

// Enable enables name together with everything it requires, disabling
// whatever it preempts and then enabling whatever it implies.
//
// The cascade is atomic: either every proposed change is committed and
// published, or none is and a subsystem_error is published instead.
// Enabling an already-enabled subsystem succeeds without effect.
func (e *Engine) Enable(name string) error {
	i, rerr := e.resolve(name)
	if rerr != nil {
		return e.fail("enable", name, rerr)
	}

	p := newPlan(e.graph, e.enabled, e.logger)
	if err := p.enable(i); err != nil {
		var ee *Error
		if !errors.As(err, &ee) {
			ee = &Error{Code: ErrCodeDependencyUnsatisfiable, Subsystem: name, Message: err.Error(), Cause: err}
		}
		return e.fail("enable", name, ee)
	}

	e.commit(p)
	return nil
}

// Disable disables name. Disabling an already-disabled subsystem succeeds
// without effect. Disabling is refused while any enabled subsystem
// directly requires name; the first such dependent in registration order
// is named in the error.
func (e *Engine) Disable(name string) error {
	i, rerr := e.resolve(name)
	if rerr != nil {
		return e.fail("disable", name, rerr)
	}

	if !e.enabled[i] {
		return nil
	}

	for _, d := range e.graph.RequiredBy(i) {
		if e.enabled[d] {
			return e.fail("disable", name, newDependentActiveError(name, e.graph.Name(d)))
		}
	}

	e.enabled[i] = false
	e.logger.Debug("subsystem disabled", "subsystem", name)
	e.events.Publish(events.Changed(name, false))
	return nil
}

// commit applies a successful plan and publishes its changes in order.
func (e *Engine) commit(p *plan) {
	for _, c := range p.changes {
		e.enabled[c.node] = c.enabled
	}
	if len(p.changes) > 0 {
		e.logger.Debug("cascade committed", "changes", len(p.changes))
	}
	for _, c := range p.changes {
		e.events.Publish(events.Changed(e.graph.Name(c.node), c.enabled))
	}
}

// IsEnabled reports whether name is enabled. Unknown names are not.
func (e *Engine) IsEnabled(name string) bool {
	i, ok := e.graph.Index(name)
	return ok && e.enabled[i]
}

// EnabledSubsystems returns the enabled subsystems in registration order.
func (e *Engine) EnabledSubsystems() []string {
	var out []string
	for i, on := range e.enabled {
		if on {
			out = append(out, e.graph.Name(i))
		}
	}
	return out
}

// Inhibitor returns the enabled subsystem whose preempt latch currently
// blocks name, if any.
func (e *Engine) Inhibitor(name string) (string, bool) {
	i, ok := e.graph.Index(name)
	if !ok {
		return "", false
	}
	by, ok := newPlan(e.graph, e.enabled, e.logger).inhibitor(i)
	if !ok {
		return "", false
	}
	return e.graph.Name(by), true
}

// ActiveFlightMode scans the flight modes in profile order and returns the
// first enabled one.
func (e *Engine) ActiveFlightMode() (string, bool) {
	for _, i := range e.graph.FlightModes() {
		if e.enabled[i] {
			return e.graph.Name(i), true
		}
	}
	return "", false
}

// FlightModes returns the flight mode names in scan order.
func (e *Engine) FlightModes() []string {
	modes := e.graph.FlightModes()
	out := make([]string, len(modes))
	for k, i := range modes {
		out[k] = e.graph.Name(i)
	}
	return out
}

// ValidateArmingReadiness checks the arm-required subsystems in order and
// names the first one that is not enabled.
func (e *Engine) ValidateArmingReadiness() error {
	for _, i := range e.graph.ArmRequired() {
		if !e.enabled[i] {
			name := e.graph.Name(i)
			return &Error{
				Code:      ErrCodeNotReady,
				Subsystem: name,
				Message:   fmt.Sprintf("Arming requires '%s' to be enabled", name),
			}
		}
	}
	return nil
}

// ValidateFlightMode checks that mode is a registered flight mode and is
// currently enabled.
func (e *Engine) ValidateFlightMode(mode string) error {
	i, rerr := e.resolve(mode)
	if rerr != nil {
		return rerr
	}
	if !e.graph.IsFlightMode(i) || !e.enabled[i] {
		return &Error{
			Code:      ErrCodeNotReady,
			Subsystem: mode,
			Message:   fmt.Sprintf("Flight mode '%s' is not active", mode),
		}
	}
	return nil
}

// SubsystemStatus describes one subsystem for display.
type SubsystemStatus struct {
	Name        string `json:"name"`
	Group       string `json:"group"`
	Enabled     bool   `json:"enabled"`
	InhibitedBy string `json:"inhibited_by,omitempty"`
}

// Subsystems returns the status of every subsystem in registration order.
func (e *Engine) Subsystems() []SubsystemStatus {
	out := make([]SubsystemStatus, e.graph.Len())
	for i := range out {
		name := e.graph.Name(i)
		by, _ := e.Inhibitor(name)
		out[i] = SubsystemStatus{
			Name:        name,
			Group:       e.graph.GroupOf(i),
			Enabled:     e.enabled[i],
			InhibitedBy: by,
		}
	}
	return out
}

// ExportDependencyGraph renders the constraint graph in GraphViz DOT
// format with enabled subsystems highlighted.
func (e *Engine) ExportDependencyGraph() string {
	return e.graph.DOT(func(i int) bool { return e.enabled[i] })
}

// Snapshot returns the engine state as an IRObject.
func (e *Engine) Snapshot() ir.IRObject {
	subsystems := make(ir.IRArray, 0, e.graph.Len())
	for _, s := range e.Subsystems() {
		obj := ir.IRObject{
			"name":    ir.IRString(s.Name),
			"group":   ir.IRString(s.Group),
			"enabled": ir.IRBool(s.Enabled),
		}
		if s.InhibitedBy != "" {
			obj["inhibited_by"] = ir.IRString(s.InhibitedBy)
		}
		subsystems = append(subsystems, obj)
	}

	mode, _ := e.ActiveFlightMode()

	return ir.IRObject{
		"profile":     ir.IRString(e.graph.Profile().Name),
		"fingerprint": ir.IRString(e.graph.Fingerprint()),
		"enabled":     ir.Strings(e.EnabledSubsystems()),
		"flight_mode": ir.IRString(mode),
		"subsystems":  subsystems,
	}
}

// ToJSON serializes the current state as canonical JSON.
func (e *Engine) ToJSON() (string, error) {
	b, err := ir.MarshalCanonical(e.Snapshot())
	if err != nil {
		return "", fmt.Errorf("engine: %w", err)
	}
	return string(b), nil
}

// SnapshotHash fingerprints the current state.
func (e *Engine) SnapshotHash() (string, error) {
	return ir.SnapshotHash(e.Snapshot())
}
