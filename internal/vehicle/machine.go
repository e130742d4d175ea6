package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qmuntal/stateless"

	"github.com/roach88/dronectl/internal/events"
)

// Readiness is the view of the constraint engine the guards need.
// Implemented by *engine.Engine.
type Readiness interface {
	ValidateArmingReadiness() error
	ActiveFlightMode() (string, bool)
	FlightModes() []string
}

// Machine is the guarded vehicle lifecycle state machine.
//
// Every Request method checks the transition table first, then the guard,
// and only then fires the underlying state machine. A rejected request
// publishes transition_rejected and changes nothing but LastError.
//
// Thread-safety: none, as for the engine.
type Machine struct {
	sm        *stateless.StateMachine
	ready     Readiness
	events    events.Publisher
	logger    *slog.Logger
	lastError string
}

// Option allows configuration of machine parameters.
type Option func(*Machine)

// WithLogger sets the machine's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithPublisher sets where state notifications go.
// Default: notifications are dropped.
func WithPublisher(p events.Publisher) Option {
	return func(m *Machine) {
		m.events = p
	}
}

type discard struct{}

func (discard) Publish(events.Event) {}

// New creates a machine in Preflight and publishes the initial
// state_changed("", "Preflight").
func New(ready Readiness, opts ...Option) *Machine {
	m := &Machine{
		ready:  ready,
		events: discard{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.sm = stateless.NewStateMachineWithMode(Preflight, stateless.FiringImmediate)
	for _, t := range transitions {
		m.sm.Configure(t.From).Permit(t.Command, t.To)
	}
	m.sm.Configure(Emergency).OnEntry(func(context.Context, ...any) error {
		m.events.Publish(events.Alert("EmergencyState entered"))
		return nil
	})
	m.sm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		m.logger.Debug("vehicle transition",
			"trigger", t.Trigger,
			"from", t.Source,
			"to", t.Destination)
	})

	m.events.Publish(events.Transitioned("", Preflight.String()))
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.sm.MustState().(State)
}

// CurrentStateName returns the name of the current state.
func (m *Machine) CurrentStateName() string {
	return m.Current().String()
}

func (m *Machine) IsPreflight() bool { return m.Current() == Preflight }
func (m *Machine) IsArmed() bool     { return m.Current() == Armed }
func (m *Machine) IsFlying() bool    { return m.Current() == Flying }
func (m *Machine) IsLanding() bool   { return m.Current() == Landing }
func (m *Machine) IsEmergency() bool { return m.Current() == Emergency }

// LastError returns the message of the most recent rejection, or "" if the
// last request succeeded.
func (m *Machine) LastError() string {
	return m.lastError
}

// RequestArm moves Preflight -> Armed once every arm-required subsystem is
// enabled.
func (m *Machine) RequestArm() error {
	return m.request(CmdArm, func() *TransitionError {
		if err := m.ready.ValidateArmingReadiness(); err != nil {
			return newGuardError(CmdArm, err.Error(), err)
		}
		return nil
	}, nil)
}

// RequestDisarm moves Armed -> Preflight.
func (m *Machine) RequestDisarm() error {
	return m.request(CmdDisarm, nil, nil)
}

// RequestTakeoff moves Armed -> Flying once a flight mode is active.
func (m *Machine) RequestTakeoff() error {
	return m.request(CmdTakeoff, func() *TransitionError {
		if _, ok := m.ready.ActiveFlightMode(); !ok {
			return newGuardError(CmdTakeoff, noFlightModeReason(m.ready.FlightModes()), nil)
		}
		return nil
	}, nil)
}

// RequestLand moves Flying -> Landing.
func (m *Machine) RequestLand() error {
	return m.request(CmdLand, nil, nil)
}

// RequestLandingComplete moves Landing -> Armed.
func (m *Machine) RequestLandingComplete() error {
	return m.request(CmdLandingComplete, nil, nil)
}

// RequestDisarmAfterLanding moves Landing -> Preflight.
func (m *Machine) RequestDisarmAfterLanding() error {
	return m.request(CmdDisarmAfterLanding, nil, nil)
}

// RequestEmergency moves Armed, Flying or Landing -> Emergency. reason is
// published as a safety alert before the transition.
func (m *Machine) RequestEmergency(reason string) error {
	return m.request(CmdEmergency, nil, func() {
		m.logger.Warn("emergency requested", "reason", reason, "state", m.CurrentStateName())
		m.events.Publish(events.Alert(reason))
	})
}

// RequestReset moves Emergency -> Preflight.
func (m *Machine) RequestReset() error {
	return m.request(CmdReset, nil, nil)
}

// request runs the common check-guard-fire sequence.
func (m *Machine) request(cmd Command, guard func() *TransitionError, before func()) error {
	from := m.Current()
	to, ok := Lookup(from, cmd)
	if !ok {
		return m.reject(newWrongStateError(cmd))
	}
	if guard != nil {
		if err := guard(); err != nil {
			return m.reject(err)
		}
	}
	if before != nil {
		before()
	}

	if err := m.sm.Fire(cmd); err != nil {
		return fmt.Errorf("vehicle: fire %s: %w", cmd, err)
	}

	m.lastError = ""
	m.events.Publish(events.Transitioned(from.String(), to.String()))
	return nil
}

func (m *Machine) reject(err *TransitionError) error {
	m.lastError = err.Error()
	m.logger.Info("transition rejected",
		"command", err.Command,
		"code", err.Code,
		"state", m.CurrentStateName(),
		"reason", err.Reason)
	m.events.Publish(events.Rejected(string(err.Command), err.Reason))
	return err
}

// ExportStateGraph renders the transition table in GraphViz DOT format.
func (m *Machine) ExportStateGraph() string {
	return m.sm.ToGraph()
}

// noFlightModeReason lists the modes an operator could enable, e.g.
// "no flight mode is active - enable Manual, Stabilize, or RTL".
func noFlightModeReason(modes []string) string {
	const prefix = "no flight mode is active"
	switch len(modes) {
	case 0:
		return prefix
	case 1:
		return prefix + " - enable " + modes[0]
	case 2:
		return prefix + " - enable " + modes[0] + " or " + modes[1]
	}
	return prefix + " - enable " + strings.Join(modes[:len(modes)-1], ", ") + ", or " + modes[len(modes)-1]
}
