package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Notifications for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nNotifications:\n")
		for _, entry := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", entry.Seq, entry.Text)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEnabled:
		return assertEnabled(result.State, a)
	case AssertDisabled:
		return assertDisabled(result.State, a)
	case AssertVehicleState:
		return assertVehicleState(result.State, a)
	case AssertActiveFlightMode:
		return assertActiveFlightMode(result.State, a)
	case AssertEventContains:
		return assertEventContains(result.Events(), a)
	case AssertEventOrder:
		return assertEventOrder(result.Events(), a)
	case AssertEventCount:
		return assertEventCount(result.Events(), a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertEnabled(state FinalState, a Assertion) error {
	for _, name := range a.Subsystems {
		if !slices.Contains(state.Enabled, name) {
			return &AssertionError{
				Type:     AssertEnabled,
				Expected: fmt.Sprintf("%s enabled", name),
				Actual:   fmt.Sprintf("enabled subsystems: %v", state.Enabled),
			}
		}
	}
	return nil
}

func assertDisabled(state FinalState, a Assertion) error {
	for _, name := range a.Subsystems {
		if slices.Contains(state.Enabled, name) {
			return &AssertionError{
				Type:     AssertDisabled,
				Expected: fmt.Sprintf("%s disabled", name),
				Actual:   fmt.Sprintf("enabled subsystems: %v", state.Enabled),
			}
		}
	}
	return nil
}

func assertVehicleState(state FinalState, a Assertion) error {
	if state.VehicleState != a.State {
		return &AssertionError{
			Type:     AssertVehicleState,
			Expected: a.State,
			Actual:   state.VehicleState,
		}
	}
	return nil
}

func assertActiveFlightMode(state FinalState, a Assertion) error {
	if state.FlightMode != a.Mode {
		return &AssertionError{
			Type:     AssertActiveFlightMode,
			Expected: describeMode(a.Mode),
			Actual:   describeMode(state.FlightMode),
		}
	}
	return nil
}

func describeMode(m string) string {
	if m == "" {
		return "no active flight mode"
	}
	return m
}

// matches reports whether a notification has the assertion's kind (when
// given) and contains text.
func matches(e TraceEntry, kind, text string) bool {
	if kind != "" && e.Kind != kind {
		return false
	}
	return strings.Contains(e.Text, text)
}

func assertEventContains(trace []TraceEntry, a Assertion) error {
	for _, e := range trace {
		if matches(e, a.Kind, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("notification%s containing %q", kindSuffix(a.Kind), a.Text),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventOrder checks that notifications containing each text appear
// in order. Intervening notifications are allowed; each match must come
// after the previous one.
func assertEventOrder(trace []TraceEntry, a Assertion) error {
	pos := 0
	for k, text := range a.Events {
		found := false
		for pos < len(trace) {
			e := trace[pos]
			pos++
			if matches(e, a.Kind, text) {
				found = true
				break
			}
		}
		if !found {
			actual := fmt.Sprintf("no notification containing %q", text)
			if k > 0 {
				actual += fmt.Sprintf(" after %q", a.Events[k-1])
			}
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("notifications in order: %q", a.Events),
				Actual:   actual,
				Trace:    trace,
			}
		}
	}
	return nil
}

func assertEventCount(trace []TraceEntry, a Assertion) error {
	count := 0
	for _, e := range trace {
		if matches(e, a.Kind, a.Text) {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d notification(s)%s containing %q", a.Count, kindSuffix(a.Kind), a.Text),
			Actual:   fmt.Sprintf("%d notification(s)", count),
			Trace:    trace,
		}
	}
	return nil
}

func kindSuffix(kind string) string {
	if kind == "" {
		return ""
	}
	return " of kind " + kind
}
