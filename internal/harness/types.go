package harness

import (
	"github.com/roach88/dronectl/internal/console"
	"github.com/roach88/dronectl/internal/events"
	"github.com/roach88/dronectl/internal/ir"
)

// Trace entry types.
const (
	EntryCommand = "command"
	EntryEvent   = "event"
)

// TraceEntry is one line of a scenario trace: either a console command with
// its result, or a notification published while the scenario ran.
type TraceEntry struct {
	Type string `json:"type"` // "command" or "event"

	// Command fields.
	Step    int    `json:"step,omitempty"`
	Line    string `json:"line,omitempty"`
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`

	// Event fields.
	Seq  int64  `json:"seq,omitempty"`
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}

// toIR converts the entry for canonical serialization.
func (e TraceEntry) toIR() ir.IRObject {
	if e.Type == EntryCommand {
		return ir.IRObject{
			"type":    ir.IRString(e.Type),
			"step":    ir.IRInt(e.Step),
			"line":    ir.IRString(e.Line),
			"success": ir.IRBool(e.Success),
			"message": ir.IRString(e.Message),
		}
	}
	return ir.IRObject{
		"type": ir.IRString(e.Type),
		"seq":  ir.IRInt(e.Seq),
		"kind": ir.IRString(e.Kind),
		"text": ir.IRString(e.Text),
	}
}

// FinalState is the vehicle state after the last step.
type FinalState struct {
	VehicleState string   `json:"vehicle_state"`
	Enabled      []string `json:"enabled"`
	FlightMode   string   `json:"flight_mode,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds commands and notifications in execution order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final vehicle state.
	State FinalState `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCommandTrace records a console command and its result.
func (r *Result) AddCommandTrace(step int, line string, res console.Result) {
	r.Trace = append(r.Trace, TraceEntry{
		Type:    EntryCommand,
		Step:    step,
		Line:    line,
		Success: res.Success,
		Message: res.Message,
	})
}

// AddEventTrace records a published notification.
func (r *Result) AddEventTrace(e events.Event) {
	r.Trace = append(r.Trace, TraceEntry{
		Type: EntryEvent,
		Seq:  e.Seq,
		Kind: string(e.Kind),
		Text: e.String(),
	})
}

// Events returns the notification entries of the trace.
func (r *Result) Events() []TraceEntry {
	var out []TraceEntry
	for _, e := range r.Trace {
		if e.Type == EntryEvent {
			out = append(out, e)
		}
	}
	return out
}
