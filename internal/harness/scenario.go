package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dronectl/internal/events"
)

// Scenario is a scripted console session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Profile is an optional CUE profile path, relative to the scenario
	// file. Empty selects the embedded default quadcopter.
	Profile string `yaml:"profile,omitempty"`

	// Steps are console command lines run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the notification trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one console command line.
type Step struct {
	// Run is the command line, exactly as an operator would type it.
	Run string `yaml:"run"`

	// Expect optionally checks the command result.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks one command result.
type ExpectClause struct {
	// Success, when set, must equal the result's success flag.
	Success *bool `yaml:"success,omitempty"`

	// Contains, when set, must be a substring of the result message.
	Contains string `yaml:"contains,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "enabled": every subsystem in Subsystems is enabled
	// - "disabled": no subsystem in Subsystems is enabled
	// - "vehicle_state": the vehicle ends in State
	// - "active_flight_mode": the active flight mode is Mode ("" for none)
	// - "event_contains": a notification of Kind (optional) contains Text
	// - "event_order": notifications containing each of Events appear in order
	// - "event_count": exactly Count notifications match Kind and Text
	Type string `yaml:"type"`

	Subsystems []string `yaml:"subsystems,omitempty"`
	State      string   `yaml:"state,omitempty"`
	Mode       string   `yaml:"mode,omitempty"`
	Kind       string   `yaml:"kind,omitempty"`
	Text       string   `yaml:"text,omitempty"`
	Events     []string `yaml:"events,omitempty"`
	Count      int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertEnabled          = "enabled"
	AssertDisabled         = "disabled"
	AssertVehicleState     = "vehicle_state"
	AssertActiveFlightMode = "active_flight_mode"
	AssertEventContains    = "event_contains"
	AssertEventOrder       = "event_order"
	AssertEventCount       = "event_count"
)

var eventKinds = map[string]bool{
	string(events.SubsystemChanged):   true,
	string(events.SubsystemError):     true,
	string(events.StateChanged):       true,
	string(events.TransitionRejected): true,
	string(events.SafetyAlert):        true,
}

// LoadScenario reads and parses a scenario YAML file.
// The profile path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Profile != "" && !filepath.IsAbs(s.Profile) {
		s.Profile = filepath.Join(filepath.Dir(path), s.Profile)
	}
	if s.Profile != "" {
		if _, err := os.Stat(s.Profile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: profile file not found: %s", s.Profile)
		}
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Profile paths are
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:"
	if err := decoder.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("failed to parse YAML: empty document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if strings.TrimSpace(step.Run) == "" {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if step.Expect != nil && step.Expect.Success == nil && step.Expect.Contains == "" {
			return fmt.Errorf("steps[%d].expect: success or contains is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Kind != "" && !eventKinds[a.Kind] {
		return fmt.Errorf("assertions[%d]: unknown event kind %q", index, a.Kind)
	}

	switch a.Type {
	case AssertEnabled, AssertDisabled:
		if len(a.Subsystems) == 0 {
			return fmt.Errorf("assertions[%d]: subsystems list is required for %s", index, a.Type)
		}
	case AssertVehicleState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for vehicle_state", index)
		}
	case AssertActiveFlightMode:
		// empty mode asserts that no flight mode is active
	case AssertEventContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for event_contains", index)
		}
	case AssertEventOrder:
		if len(a.Events) < 2 {
			return fmt.Errorf("assertions[%d]: at least two events are required for event_order", index)
		}
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
		if a.Kind == "" && a.Text == "" {
			return fmt.Errorf("assertions[%d]: kind or text is required for event_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// FindScenarioFiles returns the .yaml and .yml files under dir, sorted by
// path. A non-empty filter is a glob matched against the file name without
// its extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}
