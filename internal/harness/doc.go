// Package harness runs scripted console sessions against a real drone and
// checks the outcome.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: emergency_stop
//	description: "Emergency from Armed, then reset"
//	profile: ../profiles/minimal.cue   # optional, default quadcopter
//	steps:
//	  - run: enable MotorMix
//	    expect: { success: true, contains: "Enabled: MotorMix" }
//	  - run: arm
//	    expect: { success: false }
//	assertions:
//	  - type: vehicle_state
//	    state: Preflight
//	  - type: event_order
//	    events: ["safety_alert", "state_changed Armed -> Emergency"]
//
// # Assertion Types
//
//   - enabled / disabled: subsystems enabled (or not) at the end
//   - vehicle_state: the final vehicle state
//   - active_flight_mode: the final flight mode, "" for none
//   - event_contains: some notification (optionally of one kind) contains text
//   - event_order: notifications containing each text appear in order
//   - event_count: exactly N notifications match kind and text
//
// # Deterministic Testing
//
// Every step goes through console.Interpreter, so the trace is produced by
// the real engine and vehicle; nothing is manufactured from expectations.
// Each scenario gets a private hub (sequence numbers start at 1) and a
// stopped telemetry clock, so traces are identical across runs and can be
// compared with golden files (see RunWithGolden and TraceJSON).
package harness
