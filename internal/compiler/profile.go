// Package compiler turns CUE vehicle profiles into validated constraint
// graphs.
//
// A profile source is unified with the embedded #Profile schema, checked for
// concreteness, decoded into ir.Profile, validated, and finally built into a
// graph.Graph. The default quadcopter profile is embedded and compiled by
// Default.
package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dronectl/internal/graph"
	"github.com/roach88/dronectl/internal/ir"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed profiles/drone.cue
var defaultProfileSource []byte

// DefaultProfileName is the filename reported for the embedded profile.
const DefaultProfileName = "drone.cue"

// DefaultProfileSource returns the embedded default profile.
func DefaultProfileSource() []byte {
	return append([]byte(nil), defaultProfileSource...)
}

// CompileProfile compiles CUE source into a Profile.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The source is unified with the closed #Profile definition, so unknown
// top-level fields are rejected. Hidden fields (_name) may be used for
// helper values and comprehensions.
func CompileProfile(filename string, src []byte) (*ir.Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkTopLevelFields(v); err != nil {
		return nil, err
	}

	unified := schema.LookupPath(cue.ParsePath("#Profile")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	p := &ir.Profile{}
	if err := unified.Decode(p); err != nil {
		return nil, formatCUEError(err)
	}
	return p, nil
}

var profileFields = map[string]bool{
	"name":         true,
	"groups":       true,
	"relations":    true,
	"arm_required": true,
	"flight_modes": true,
}

// checkTopLevelFields rejects regular fields the schema does not know.
func checkTopLevelFields(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().String()
		if !profileFields[label] {
			return &CompileError{
				Field:   label,
				Message: "unknown profile field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// Load compiles, validates and builds a constraint graph from CUE source.
func Load(filename string, src []byte) (*graph.Graph, error) {
	p, err := CompileProfile(filename, src)
	if err != nil {
		return nil, err
	}

	if errs := Validate(p); len(errs) > 0 {
		return nil, &ProfileError{Filename: filename, Errors: errs}
	}

	g, err := graph.New(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return g, nil
}

// LoadFile reads and loads a profile from disk.
func LoadFile(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Load(filepath.Base(path), src)
}

// Default loads the embedded default profile.
func Default() (*graph.Graph, error) {
	return Load(DefaultProfileName, defaultProfileSource)
}

// MustDefault is like Default but panics on error. The embedded profile is
// fixed at build time, so an error here is a programming error.
func MustDefault() *graph.Graph {
	g, err := Default()
	if err != nil {
		panic(fmt.Sprintf("compiler: default profile is invalid: %v", err))
	}
	return g
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProfileError collects the validation errors of one profile.
type ProfileError struct {
	Filename string
	Errors   []ValidationError
}

func (e *ProfileError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("%s: invalid profile:\n  %s", e.Filename, strings.Join(msgs, "\n  "))
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{Field: "cue", Message: first.Error()}
}
