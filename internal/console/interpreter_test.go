package console

import (
	"context"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dronectl/internal/drone"
	"github.com/roach88/dronectl/internal/logging"
	"github.com/roach88/dronectl/internal/testutil"
)

func newInterpreter(t *testing.T) (*Interpreter, *drone.Drone) {
	t.Helper()
	d, err := drone.New(drone.Options{
		Logger: logging.Discard(),
		Clock:  testutil.NewTickingClock(0),
	})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return New(d), d
}

func run(t *testing.T, in *Interpreter, lines ...string) Result {
	t.Helper()
	var res Result
	for _, line := range lines {
		res = in.Execute(context.Background(), line)
	}
	return res
}

func mustRun(t *testing.T, in *Interpreter, lines ...string) {
	t.Helper()
	for _, line := range lines {
		res := in.Execute(context.Background(), line)
		require.True(t, res.Success, "%q: %s", line, res.Message)
	}
}

var armReady = []string{
	"enable IMU", "enable Barometer", "enable MotorMix", "enable RCReceiver",
}

func TestExecute_BlankLine(t *testing.T) {
	in, _ := newInterpreter(t)
	for _, line := range []string{"", "   ", "\t"} {
		assert.Equal(t, Result{Success: true}, run(t, in, line))
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	in, _ := newInterpreter(t)
	res := run(t, in, "FLY now")
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown command: 'fly'. Type 'help' for command list.", res.Message)
}

func TestExecute_Enable(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		success bool
		message string
	}{
		{"registered", "enable GPS", true, "Enabled: GPS"},
		{"case folded", "ENABLE gps", true, "Enabled: GPS"},
		{"tab separator", "enable\t  imu", true, "Enabled: IMU"},
		{"missing argument", "enable", false, "Usage: enable <subsystem>"},
		{"unknown", "enable Warp", false, "Enable failed: unknown subsystem 'Warp'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newInterpreter(t)
			res := run(t, in, tt.line)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestExecute_Disable(t *testing.T) {
	in, d := newInterpreter(t)
	mustRun(t, in, "enable MotorMix")

	res := run(t, in, "disable esc")
	assert.False(t, res.Success)
	assert.Equal(t, "Disable failed: cannot disable 'ESC': 'MotorMix' requires it", res.Message)

	res = run(t, in, "disable motormix")
	assert.True(t, res.Success)
	assert.Equal(t, "Disabled: MotorMix", res.Message)
	assert.False(t, d.Engine.IsEnabled("MotorMix"))

	assert.Equal(t, "Usage: disable <subsystem>", run(t, in, "disable").Message)
}

func TestExecute_Status(t *testing.T) {
	in, _ := newInterpreter(t)

	res := run(t, in, "status")
	assert.True(t, res.Success)
	assert.Equal(t, "Vehicle state: Preflight\n\nEnabled subsystems:\n  (none)\n", res.Message)

	mustRun(t, in, "enable Stabilize")
	res = run(t, in, "status")
	assert.Equal(t, "Vehicle state: Preflight\n\n"+
		"Enabled subsystems:\n  IMU\n  Barometer\n  Stabilize\n\n"+
		"Active flight mode: Stabilize\n", res.Message)
}

func TestExecute_FlightSequence(t *testing.T) {
	in, d := newInterpreter(t)

	res := run(t, in, "arm")
	assert.False(t, res.Success)
	assert.Equal(t, "arm rejected: Arming requires 'IMU' to be enabled", res.Message)

	mustRun(t, in, armReady...)

	steps := []struct {
		line    string
		message string
	}{
		{"arm", "Armed. Vehicle is in Armed state."},
		{"disarm", "Disarmed. Vehicle is in Preflight state."},
		{"arm", "Armed. Vehicle is in Armed state."},
		{"enable Manual", "Enabled: Manual"},
		{"takeoff", "Takeoff initiated. Vehicle is Flying."},
		{"land", "Landing initiated."},
		{"landing_complete", "Landing complete. Vehicle is Armed."},
		{"takeoff", "Takeoff initiated. Vehicle is Flying."},
		{"land", "Landing initiated."},
		{"disarm_after_landing", "Disarmed after landing. Vehicle is in Preflight state."},
	}
	for _, s := range steps {
		res := run(t, in, s.line)
		require.True(t, res.Success, "%s: %s", s.line, res.Message)
		assert.Equal(t, s.message, res.Message, s.line)
	}
	assert.True(t, d.Vehicle.IsPreflight())
}

func TestExecute_TakeoffWithoutFlightMode(t *testing.T) {
	in, _ := newInterpreter(t)
	mustRun(t, in, armReady...)
	mustRun(t, in, "arm")

	res := run(t, in, "takeoff")
	assert.False(t, res.Success)
	assert.Equal(t, "takeoff rejected: no flight mode is active - enable "+
		"Manual, Stabilize, AltHold, PosHold, Autonomous, or RTL", res.Message)
}

func TestExecute_Emergency(t *testing.T) {
	in, d := newInterpreter(t)

	res := run(t, in, "emergency")
	assert.False(t, res.Success)
	assert.Equal(t, "emergency rejected: already in terminal state", res.Message)

	mustRun(t, in, armReady...)
	mustRun(t, in, "arm")

	res = run(t, in, "emergency")
	assert.True(t, res.Success)
	assert.Equal(t, "EMERGENCY STOP: operator request", res.Message)
	assert.True(t, d.Vehicle.IsEmergency())

	res = run(t, in, "emergency again")
	assert.False(t, res.Success)
	assert.Equal(t, "emergency rejected: already in terminal state", res.Message)

	res = run(t, in, "reset")
	assert.True(t, res.Success)
	assert.Equal(t, "Reset complete. Vehicle is in Preflight state.", res.Message)
}

func TestExecute_EmergencyReason(t *testing.T) {
	in, _ := newInterpreter(t)
	mustRun(t, in, armReady...)
	mustRun(t, in, "arm")

	res := run(t, in, "emergency  bird strike")
	assert.Equal(t, "EMERGENCY STOP: bird strike", res.Message)

	tail := run(t, in, "log 3 safety")
	assert.Equal(t, "[+0ms] SAFETY bird strike\n[+0ms] SAFETY EmergencyState entered\n", tail.Message)
}

func TestExecute_Log(t *testing.T) {
	in, _ := newInterpreter(t)
	mustRun(t, in, "enable GPS", "enable Compass")

	tests := []struct {
		name    string
		line    string
		success bool
		message string
	}{
		{"default", "log", true, "[+0ms] STATE Preflight: initial -> Preflight\n" +
			"[+0ms] ENABLED GPS: enabled\n[+0ms] ENABLED Compass: enabled\n"},
		{"count", "log 1", true, "[+0ms] ENABLED Compass: enabled\n"},
		{"category", "log STATE", true, "[+0ms] STATE Preflight: initial -> Preflight\n"},
		{"category lower case", "log 1 enabled", true, "[+0ms] ENABLED Compass: enabled\n"},
		{"empty category", "log rejected", true, "(no telemetry entries)\n"},
		{"zero", "log 0", false, logUsage},
		{"negative", "log -3", false, logUsage},
		{"garbage", "log many", false, logUsage},
		{"two categories", "log state info", false, logUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, in, tt.line)
			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestExecute_Exports(t *testing.T) {
	in, d := newInterpreter(t)
	mustRun(t, in, "enable GPS")

	graph := run(t, in, "graph")
	assert.True(t, graph.Success)
	assert.Equal(t, d.Engine.ExportDependencyGraph(), graph.Message)

	fsm := run(t, in, "FSM")
	assert.True(t, fsm.Success)
	assert.Equal(t, d.Vehicle.ExportStateGraph(), fsm.Message)

	js := run(t, in, "json")
	assert.True(t, js.Success)
	want, err := d.Engine.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, want, js.Message)
}

func TestExecute_Metrics(t *testing.T) {
	in, _ := newInterpreter(t)
	mustRun(t, in, "enable GPS")
	run(t, in, "arm")
	run(t, in, "bogus")

	res := run(t, in, "metrics")
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, `dronectl_command_duration_seconds_count{command="enable",success="true"} 1`)
	assert.Contains(t, res.Message, `dronectl_command_duration_seconds_count{command="arm",success="false"} 1`)
	assert.Contains(t, res.Message, `dronectl_command_duration_seconds_count{command="unknown",success="false"} 1`)
	assert.Contains(t, res.Message, `dronectl_transitions_rejected_total{command="arm"} 1`)
	assert.Contains(t, res.Message, "dronectl_subsystems_enabled 1\n")
}

func TestExecute_Quit(t *testing.T) {
	in, _ := newInterpreter(t)
	for _, line := range []string{"quit", "EXIT"} {
		assert.Equal(t, Result{Success: true, Message: "Goodbye.", Quit: true}, run(t, in, line))
	}
}

func TestHelpText(t *testing.T) {
	in, _ := newInterpreter(t)

	res := run(t, in, "help")
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Message, "Available commands:\n"))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "help", []byte(res.Message))
}
