package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dronectl/internal/ir"
)

// TraceJSON renders a scenario trace as canonical JSON, the format of
// golden trace files.
func TraceJSON(scenarioName string, result *Result) ([]byte, error) {
	trace := make(ir.IRArray, len(result.Trace))
	for i, e := range result.Trace {
		trace[i] = e.toIR()
	}
	snapshot := ir.IRObject{
		"scenario_name": ir.IRString(scenarioName),
		"final_state": ir.IRObject{
			"vehicle_state": ir.IRString(result.State.VehicleState),
			"enabled":       ir.Strings(result.State.Enabled),
			"flight_mode":   ir.IRString(result.State.FlightMode),
		},
		"trace": trace,
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass, or an error if the
// scenario could not run. A trace mismatch fails t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := TraceJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
