package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/dronectl/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// Structure errors (E201-E205)
	ErrProfileNameEmpty   = "E201" // profile name is required
	ErrNoSubsystems       = "E202" // at least one subsystem required
	ErrGroupName          = "E203" // empty or duplicate group name
	ErrSubsystemName      = "E204" // empty subsystem name
	ErrDuplicateSubsystem = "E205" // subsystem registered twice

	// Relation errors (E206-E208)
	ErrUnknownSubsystem = "E206" // relation endpoint not registered
	ErrInvalidKind      = "E207" // relation kind not recognized
	ErrSelfRelation     = "E208" // relation from a subsystem to itself

	// Readiness errors (E209-E210)
	ErrUnknownArmRequirement = "E209" // arm_required names an unknown subsystem
	ErrUnknownFlightModes    = "E210" // flight_modes names an unknown group

	// Satisfiability errors (E211-E214), see cycle.go
	ErrRequiresCycle          = "E211" // requires relations form a cycle
	ErrPreemptsOwnRequirement = "E212" // preempting subsystem requires its own target
	ErrRequiresConflicting    = "E213" // subsystem requires something it conflicts with
	ErrRequiresPreempter      = "E214" // latched subsystem requires its own preempter
)

// ValidationError represents a profile validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled profile.
// Returns all errors found (does not fail-fast).
//
// Satisfiability checks run only when the structural checks pass, since
// they need every relation endpoint to resolve.
func Validate(p *ir.Profile) []ValidationError {
	var errs []ValidationError

	// E201: name is required
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "profile name is required and must be non-empty",
			Code:    ErrProfileNameEmpty,
		})
	}

	registered := make(map[string]bool)
	groupNames := make(map[string]bool)

	for i, g := range p.Groups {
		// E203: group names are unique and non-empty
		switch {
		case strings.TrimSpace(g.Name) == "":
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("groups[%d].name", i),
				Message: "group name is required",
				Code:    ErrGroupName,
			})
		case groupNames[g.Name]:
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("groups[%d].name", i),
				Message: fmt.Sprintf("duplicate group name: %q", g.Name),
				Code:    ErrGroupName,
			})
		}
		groupNames[g.Name] = true

		for j, m := range g.Members {
			field := fmt.Sprintf("groups[%d].members[%d]", i, j)
			// E204: empty subsystem name
			if strings.TrimSpace(m) == "" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: "subsystem name must be non-empty",
					Code:    ErrSubsystemName,
				})
				continue
			}
			// E205: duplicate subsystem
			if registered[m] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("subsystem %q registered twice", m),
					Code:    ErrDuplicateSubsystem,
				})
			}
			registered[m] = true
		}
	}

	// E202: at least one subsystem
	if len(registered) == 0 {
		errs = append(errs, ValidationError{
			Field:   "groups",
			Message: "at least one subsystem is required",
			Code:    ErrNoSubsystems,
		})
	}

	for i, r := range p.Relations {
		field := fmt.Sprintf("relations[%d]", i)

		// E207: valid kind
		if !ir.ValidRelationKinds[r.Kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("invalid relation kind %q, must be \"requires\", \"implies\", \"conflicts\", or \"preempts\"", r.Kind),
				Code:    ErrInvalidKind,
			})
		}

		// E206: endpoints must be registered
		for _, end := range []struct{ field, name string }{{"from", r.From}, {"to", r.To}} {
			if !registered[end.name] {
				errs = append(errs, ValidationError{
					Field:   field + "." + end.field,
					Message: fmt.Sprintf("unknown subsystem %q", end.name),
					Code:    ErrUnknownSubsystem,
				})
			}
		}

		// E208: self relation
		if r.From != "" && r.From == r.To {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s relation on %q refers to itself", r.Kind, r.From),
				Code:    ErrSelfRelation,
			})
		}
	}

	// E209: arm requirements must be registered
	for i, name := range p.ArmRequired {
		if !registered[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("arm_required[%d]", i),
				Message: fmt.Sprintf("unknown subsystem %q", name),
				Code:    ErrUnknownArmRequirement,
			})
		}
	}

	// E210: flight mode group must exist
	if p.FlightModes != "" && !groupNames[p.FlightModes] {
		errs = append(errs, ValidationError{
			Field:   "flight_modes",
			Message: fmt.Sprintf("unknown group %q", p.FlightModes),
			Code:    ErrUnknownFlightModes,
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return AnalyzeRequires(p)
}
