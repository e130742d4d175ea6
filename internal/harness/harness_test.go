package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"basic_flight", "emergency_stop", "preempt_flight_mode", "custom_profile"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(load(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_GoldenTraces(t *testing.T) {
	for _, name := range []string{"basic_flight", "emergency_stop"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, load(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_TraceStartsWithInitialState(t *testing.T) {
	result, err := Run(load(t, "basic_flight"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Trace)
	first := result.Trace[0]
	assert.Equal(t, EntryEvent, first.Type)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, "state_changed (initial) -> Preflight", first.Text)

	second := result.Trace[1]
	assert.Equal(t, EntryCommand, second.Type)
	assert.Equal(t, "enable IMU", second.Line)
	assert.True(t, second.Success)
}

func TestRun_QuitStopsSession(t *testing.T) {
	result, err := Run(load(t, "custom_profile"))
	require.NoError(t, err)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, EntryCommand, last.Type)
	assert.Equal(t, "quit", last.Line)
	assert.Equal(t, "Flying", result.State.VehicleState)
}

func TestRun_FailedExpectations(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: expectations that do not hold
steps:
  - run: arm
    expect: { success: true }
  - run: enable GPS
    expect: { contains: "Disabled" }
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, `steps[0] "arm": expected success=true, got false: arm rejected: Arming requires 'IMU' to be enabled`, result.Errors[0])
	assert.Equal(t, `steps[1] "enable GPS": expected message containing "Disabled", got "Enabled: GPS"`, result.Errors[1])
}

func TestRun_FailedAssertion(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_state
description: asserts a state the vehicle never reaches
steps:
  - run: enable GPS
assertions:
  - type: vehicle_state
    state: Flying
  - type: enabled
    subsystems: [GPS]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[0]: Assertion failed: vehicle_state")
	assert.Contains(t, result.Errors[0], "Expected: Flying")
	assert.Contains(t, result.Errors[0], "Actual: Preflight")
}

func TestRun_UnknownProfile(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Profile: "testdata/profiles/missing.cue", Steps: []Step{{Run: "status"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")
}

func TestRun_FinalStateEmpty(t *testing.T) {
	result, err := Run(&Scenario{Name: "x", Steps: []Step{{Run: "status"}}})
	require.NoError(t, err)
	assert.Equal(t, FinalState{VehicleState: "Preflight", Enabled: []string{}}, result.State)
}

func TestTraceJSON_Deterministic(t *testing.T) {
	s := load(t, "preempt_flight_mode")

	a, err := Run(s)
	require.NoError(t, err)
	b, err := Run(s)
	require.NoError(t, err)

	ja, err := TraceJSON(s.Name, a)
	require.NoError(t, err)
	jb, err := TraceJSON(s.Name, b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}
