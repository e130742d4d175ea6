// Package console interprets operator command lines against a wired
// drone.
//
// The interpreter is the only layer that produces operator-facing text.
// It performs no constraint logic of its own: every command is a thin
// call into the engine, the vehicle state machine, the telemetry log or
// the metrics collector, and the result is returned rather than printed
// so callers (the REPL, script runner and scenario harness) decide where
// it goes.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/roach88/dronectl/internal/drone"
	"github.com/roach88/dronectl/internal/telemetry"
)

// DefaultLogLines is how many telemetry entries "log" shows without an
// argument.
const DefaultLogLines = 20

// DefaultEmergencyReason is used when "emergency" has no argument.
const DefaultEmergencyReason = "operator request"

// Result is the outcome of one command line.
type Result struct {
	// Success is false when the command was refused or malformed.
	Success bool

	// Message is the text to show the operator. Empty for blank lines.
	Message string

	// Quit asks the caller to end the session.
	Quit bool
}

func ok(msg string) Result   { return Result{Success: true, Message: msg} }
func fail(msg string) Result { return Result{Message: msg} }

type handler func(ctx context.Context, arg string) Result

// Interpreter executes command lines. It is not safe for concurrent use.
type Interpreter struct {
	d        *drone.Drone
	fold     cases.Caser
	names    map[string]string
	handlers map[string]handler
}

// New creates an interpreter over d.
func New(d *drone.Drone) *Interpreter {
	i := &Interpreter{
		d:     d,
		fold:  cases.Fold(),
		names: make(map[string]string),
	}
	for _, name := range d.Graph().Names() {
		i.names[i.fold.String(name)] = name
	}
	i.handlers = map[string]handler{
		"enable":               i.cmdEnable,
		"disable":              i.cmdDisable,
		"status":               i.cmdStatus,
		"arm":                  i.vehicleCmd(d.Vehicle.RequestArm, "Armed. Vehicle is in Armed state."),
		"disarm":               i.vehicleCmd(d.Vehicle.RequestDisarm, "Disarmed. Vehicle is in Preflight state."),
		"takeoff":              i.vehicleCmd(d.Vehicle.RequestTakeoff, "Takeoff initiated. Vehicle is Flying."),
		"land":                 i.vehicleCmd(d.Vehicle.RequestLand, "Landing initiated."),
		"landing_complete":     i.vehicleCmd(d.Vehicle.RequestLandingComplete, "Landing complete. Vehicle is Armed."),
		"disarm_after_landing": i.vehicleCmd(d.Vehicle.RequestDisarmAfterLanding, "Disarmed after landing. Vehicle is in Preflight state."),
		"emergency":            i.cmdEmergency,
		"reset":                i.vehicleCmd(d.Vehicle.RequestReset, "Reset complete. Vehicle is in Preflight state."),
		"log":                  i.cmdLog,
		"graph":                func(context.Context, string) Result { return ok(d.Engine.ExportDependencyGraph()) },
		"fsm":                  func(context.Context, string) Result { return ok(d.Vehicle.ExportStateGraph()) },
		"json":                 i.cmdJSON,
		"metrics":              i.cmdMetrics,
		"help":                 func(context.Context, string) Result { return ok(i.HelpText()) },
		"quit":                 cmdQuit,
		"exit":                 cmdQuit,
	}
	return i
}

// Execute parses and runs one command line. The first token (split on
// spaces or tabs) is the command and is case-insensitive; the rest of the
// line, with leading whitespace removed, is the argument.
func (i *Interpreter) Execute(ctx context.Context, line string) Result {
	cmd, arg := split(line)
	if cmd == "" {
		return ok("")
	}
	cmd = i.fold.String(cmd)

	h, known := i.handlers[cmd]
	if !known {
		i.observe("unknown", false, 0)
		return fail(fmt.Sprintf("Unknown command: '%s'. Type 'help' for command list.", cmd))
	}

	start := time.Now()
	res := h(ctx, arg)
	i.observe(cmd, res.Success, time.Since(start))
	return res
}

func (i *Interpreter) observe(cmd string, success bool, d time.Duration) {
	i.d.Metrics.ObserveCommand(cmd, success, d)
}

func split(line string) (cmd, arg string) {
	pos := strings.IndexAny(line, " \t")
	if pos < 0 {
		return line, ""
	}
	return line[:pos], strings.TrimLeft(line[pos:], " \t")
}

// resolve maps a case-insensitive subsystem name to its registered
// spelling. Unregistered names pass through so the engine reports them.
func (i *Interpreter) resolve(name string) string {
	if canonical, found := i.names[i.fold.String(name)]; found {
		return canonical
	}
	return name
}

func (i *Interpreter) cmdEnable(_ context.Context, arg string) Result {
	if arg == "" {
		return fail("Usage: enable <subsystem>")
	}
	name := i.resolve(arg)
	if err := i.d.Engine.Enable(name); err != nil {
		return fail("Enable failed: " + err.Error())
	}
	return ok("Enabled: " + name)
}

func (i *Interpreter) cmdDisable(_ context.Context, arg string) Result {
	if arg == "" {
		return fail("Usage: disable <subsystem>")
	}
	name := i.resolve(arg)
	if err := i.d.Engine.Disable(name); err != nil {
		return fail("Disable failed: " + err.Error())
	}
	return ok("Disabled: " + name)
}

func (i *Interpreter) cmdStatus(context.Context, string) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "Vehicle state: %s\n\n", i.d.Vehicle.CurrentStateName())

	b.WriteString("Enabled subsystems:\n")
	enabled := i.d.Engine.EnabledSubsystems()
	if len(enabled) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, name := range enabled {
		fmt.Fprintf(&b, "  %s\n", name)
	}

	if mode, active := i.d.Engine.ActiveFlightMode(); active {
		fmt.Fprintf(&b, "\nActive flight mode: %s\n", mode)
	}
	return ok(b.String())
}

func (i *Interpreter) vehicleCmd(request func() error, success string) handler {
	return func(context.Context, string) Result {
		if err := request(); err != nil {
			return fail(err.Error())
		}
		return ok(success)
	}
}

func (i *Interpreter) cmdEmergency(_ context.Context, arg string) Result {
	reason := arg
	if reason == "" {
		reason = DefaultEmergencyReason
	}
	if err := i.d.Vehicle.RequestEmergency(reason); err != nil {
		return fail(err.Error())
	}
	return ok("EMERGENCY STOP: " + reason)
}

const logUsage = "Usage: log [n] [category]  (n must be a positive integer)"

func (i *Interpreter) cmdLog(ctx context.Context, arg string) Result {
	n := DefaultLogLines
	var (
		cat      telemetry.Category
		filtered bool
	)
	for _, tok := range strings.Fields(arg) {
		if v, err := strconv.Atoi(tok); err == nil {
			if v < 1 {
				return fail(logUsage)
			}
			n = v
			continue
		}
		c, valid := telemetry.ParseCategory(strings.ToUpper(tok))
		if !valid || filtered {
			return fail(logUsage)
		}
		cat, filtered = c, true
	}

	var (
		out string
		err error
	)
	if filtered {
		var entries []telemetry.Entry
		if entries, err = i.d.Telemetry.ByCategory(ctx, cat, n); err == nil {
			out = telemetry.Format(entries)
		}
	} else {
		out, err = i.d.Telemetry.FormatTail(ctx, n)
	}
	if err != nil {
		return fail("Log failed: " + err.Error())
	}
	return ok(out)
}

func (i *Interpreter) cmdJSON(context.Context, string) Result {
	out, err := i.d.Engine.ToJSON()
	if err != nil {
		return fail("Export failed: " + err.Error())
	}
	return ok(out)
}

func (i *Interpreter) cmdMetrics(context.Context, string) Result {
	out, err := i.d.Metrics.Summary()
	if err != nil {
		return fail("Metrics failed: " + err.Error())
	}
	return ok(out)
}

func cmdQuit(context.Context, string) Result {
	return Result{Success: true, Message: "Goodbye.", Quit: true}
}
