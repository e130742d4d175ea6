package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/dronectl/internal/compiler"
	"github.com/roach88/dronectl/internal/console"
	"github.com/roach88/dronectl/internal/drone"
	"github.com/roach88/dronectl/internal/events"
	"github.com/roach88/dronectl/internal/graph"
	"github.com/roach88/dronectl/internal/logging"
	"github.com/roach88/dronectl/internal/testutil"
)

// Harness runs one scenario against a freshly wired drone.
type Harness struct {
	drone    *drone.Drone
	console  *console.Interpreter
	recorder *events.Recorder
	logger   *slog.Logger
	seen     int
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes engine and vehicle diagnostics to l. Scenarios run
// silently by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario gets its own hub, engine, vehicle and telemetry database,
// and a stopped clock so traces are reproducible.
//
// Execution flow:
// 1. Load the scenario profile (or the embedded default)
// 2. Wire a drone with a recorder attached before the initial state entry
// 3. Run each step through the console interpreter, checking expect clauses
// 4. Capture the final state and evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	g, err := loadProfile(scenario.Profile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	h := &Harness{logger: logging.Discard()}
	for _, opt := range opts {
		opt(h)
	}

	hub := events.NewHub()
	h.recorder = events.Record(hub)
	defer h.recorder.Close()

	h.drone, err = drone.New(drone.Options{
		Graph:  g,
		Hub:    hub,
		Logger: h.logger,
		Clock:  testutil.NewFakeClock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire drone: %w", err)
	}
	defer h.drone.Close()
	h.console = console.New(h.drone)

	ctx := context.Background()
	result := NewResult()
	h.flush(result)

	h.executeSteps(ctx, scenario.Steps, result)

	result.State = h.finalState()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadProfile(path string) (*graph.Graph, error) {
	if path == "" {
		return compiler.Default()
	}
	return compiler.LoadFile(path)
}

// flush moves notifications recorded since the last flush into the trace.
func (h *Harness) flush(result *Result) {
	for _, e := range h.recorder.Events[h.seen:] {
		result.AddEventTrace(e)
	}
	h.seen = len(h.recorder.Events)
}

// executeSteps runs every step and validates expect clauses. A step that
// asks to quit ends the session; later steps are not run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		res := h.console.Execute(ctx, step.Run)
		result.AddCommandTrace(i, step.Run, res)
		h.flush(result)

		if step.Expect != nil {
			for _, msg := range checkExpect(i, step, res) {
				result.AddError(msg)
			}
		}

		h.logger.Info("scenario step completed",
			"step", i,
			"command", step.Run,
			"success", res.Success)

		if res.Quit {
			if i < len(steps)-1 {
				h.logger.Info("scenario quit early", "step", i, "skipped", len(steps)-1-i)
			}
			return
		}
	}
}

func checkExpect(i int, step Step, res console.Result) []string {
	var errs []string
	if want := step.Expect.Success; want != nil && *want != res.Success {
		errs = append(errs, fmt.Sprintf("steps[%d] %q: expected success=%t, got %t: %s",
			i, step.Run, *want, res.Success, res.Message))
	}
	if want := step.Expect.Contains; want != "" && !strings.Contains(res.Message, want) {
		errs = append(errs, fmt.Sprintf("steps[%d] %q: expected message containing %q, got %q",
			i, step.Run, want, res.Message))
	}
	return errs
}

func (h *Harness) finalState() FinalState {
	mode, _ := h.drone.Engine.ActiveFlightMode()
	enabled := h.drone.Engine.EnabledSubsystems()
	if enabled == nil {
		enabled = []string{}
	}
	return FinalState{
		VehicleState: h.drone.Vehicle.CurrentStateName(),
		Enabled:      enabled,
		FlightMode:   mode,
	}
}
