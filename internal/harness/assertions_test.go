package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dronectl/internal/events"
)

func fixtureResult() *Result {
	r := NewResult()
	for i, e := range []events.Event{
		events.Transitioned("", "Preflight"),
		events.Changed("IMU", true),
		events.Rejected("takeoff", "must be in Armed state"),
		events.Alert("low battery"),
		events.Changed("GPS", true),
		events.Rejected("land", "must be in Flying state"),
	} {
		e.Seq = int64(i + 1)
		r.AddEventTrace(e)
	}
	r.State = FinalState{VehicleState: "Preflight", Enabled: []string{"IMU", "GPS"}}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string // empty = pass
	}{
		{"enabled", Assertion{Type: AssertEnabled, Subsystems: []string{"GPS", "IMU"}}, ""},
		{"enabled missing", Assertion{Type: AssertEnabled, Subsystems: []string{"Lidar"}}, "Expected: Lidar enabled"},
		{"disabled", Assertion{Type: AssertDisabled, Subsystems: []string{"Lidar"}}, ""},
		{"disabled but enabled", Assertion{Type: AssertDisabled, Subsystems: []string{"IMU"}}, "Expected: IMU disabled"},
		{"vehicle state", Assertion{Type: AssertVehicleState, State: "Preflight"}, ""},
		{"vehicle state mismatch", Assertion{Type: AssertVehicleState, State: "Armed"}, "Actual: Preflight"},
		{"no flight mode", Assertion{Type: AssertActiveFlightMode}, ""},
		{"flight mode mismatch", Assertion{Type: AssertActiveFlightMode, Mode: "Manual"}, "Actual: no active flight mode"},
		{"contains", Assertion{Type: AssertEventContains, Text: "low battery"}, ""},
		{"contains with kind", Assertion{Type: AssertEventContains, Kind: "safety_alert", Text: "battery"}, ""},
		{"contains wrong kind", Assertion{Type: AssertEventContains, Kind: "subsystem_error", Text: "battery"}, "of kind subsystem_error"},
		{"order", Assertion{Type: AssertEventOrder, Events: []string{"IMU", "low battery", "GPS"}}, ""},
		{"order reversed", Assertion{Type: AssertEventOrder, Events: []string{"GPS", "IMU"}}, `no notification containing "IMU" after "GPS"`},
		{"order missing", Assertion{Type: AssertEventOrder, Events: []string{"Lidar", "GPS"}}, `no notification containing "Lidar"`},
		{"order same text twice", Assertion{Type: AssertEventOrder, Kind: "transition_rejected", Events: []string{"must be", "must be"}}, ""},
		{"count", Assertion{Type: AssertEventCount, Kind: "transition_rejected", Count: 2}, ""},
		{"count by text", Assertion{Type: AssertEventCount, Text: "enabled=true", Count: 2}, ""},
		{"count zero", Assertion{Type: AssertEventCount, Kind: "subsystem_error", Count: 0}, ""},
		{"count mismatch", Assertion{Type: AssertEventCount, Kind: "safety_alert", Count: 2}, "Actual: 1 notification(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(fixtureResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesNotifications(t *testing.T) {
	errs := EvaluateAssertions(fixtureResult(), []Assertion{
		{Type: AssertEventContains, Text: "EmergencyState"},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Notifications:\n")
	assert.Contains(t, errs[0], "  [4] safety_alert low battery\n")
}

func TestEvaluateAssertions_ReportsEveryFailure(t *testing.T) {
	errs := EvaluateAssertions(fixtureResult(), []Assertion{
		{Type: AssertVehicleState, State: "Armed"},
		{Type: AssertEnabled, Subsystems: []string{"IMU"}},
		{Type: AssertDisabled, Subsystems: []string{"GPS"}},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[0]")
	assert.Contains(t, errs[1], "assertions[2]")
}
