package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dronectl/internal/ir"
)

func validProfile() *ir.Profile {
	return &ir.Profile{
		Name: "valid",
		Groups: []ir.Group{
			{Name: "Power", Members: []string{"Battery", "ESC"}},
			{Name: "Modes", Exclusive: true, Members: []string{"Manual", "Auto"}},
			{Name: "Safety", Members: []string{"Stop"}},
		},
		Relations: []ir.Relation{
			{From: "ESC", Kind: ir.Requires, To: "Battery"},
			{From: "Auto", Kind: ir.Requires, To: "ESC"},
			{From: "Stop", Kind: ir.Preempts, To: "Auto"},
		},
		ArmRequired: []string{"Battery"},
		FlightModes: "Modes",
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidProfile(t *testing.T) {
	assert.Empty(t, Validate(validProfile()))
}

func TestValidateStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ir.Profile)
		want   []string
	}{
		{
			name:   "empty name",
			mutate: func(p *ir.Profile) { p.Name = "  " },
			want:   []string{ErrProfileNameEmpty},
		},
		{
			name:   "no subsystems",
			mutate: func(p *ir.Profile) { p.Groups = nil; p.Relations = nil; p.ArmRequired = nil; p.FlightModes = "" },
			want:   []string{ErrNoSubsystems},
		},
		{
			name:   "duplicate group",
			mutate: func(p *ir.Profile) { p.Groups[2].Name = "Power" },
			want:   []string{ErrGroupName},
		},
		{
			name:   "empty group name",
			mutate: func(p *ir.Profile) { p.Groups[2].Name = "" },
			want:   []string{ErrGroupName},
		},
		{
			name:   "empty member",
			mutate: func(p *ir.Profile) { p.Groups[2].Members = append(p.Groups[2].Members, "") },
			want:   []string{ErrSubsystemName},
		},
		{
			name:   "duplicate member",
			mutate: func(p *ir.Profile) { p.Groups[2].Members = append(p.Groups[2].Members, "Battery") },
			want:   []string{ErrDuplicateSubsystem},
		},
		{
			name:   "unknown endpoint",
			mutate: func(p *ir.Profile) { p.Relations[0].To = "Ghost" },
			want:   []string{ErrUnknownSubsystem},
		},
		{
			name:   "invalid kind",
			mutate: func(p *ir.Profile) { p.Relations[0].Kind = "excludes" },
			want:   []string{ErrInvalidKind},
		},
		{
			name:   "self relation",
			mutate: func(p *ir.Profile) { p.Relations[0].To = "ESC" },
			want:   []string{ErrSelfRelation},
		},
		{
			name:   "unknown arm requirement",
			mutate: func(p *ir.Profile) { p.ArmRequired = append(p.ArmRequired, "Ghost") },
			want:   []string{ErrUnknownArmRequirement},
		},
		{
			name:   "unknown flight mode group",
			mutate: func(p *ir.Profile) { p.FlightModes = "Nope" },
			want:   []string{ErrUnknownFlightModes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)
			assert.Equal(t, tt.want, codes(Validate(p)))
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	p := validProfile()
	p.Name = ""
	p.Relations[0].To = "Ghost"
	p.FlightModes = "Nope"

	errs := Validate(p)
	assert.Equal(t, []string{ErrProfileNameEmpty, ErrUnknownSubsystem, ErrUnknownFlightModes}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "relations[0].to", Message: `unknown subsystem "Ghost"`, Code: ErrUnknownSubsystem}
	require.Equal(t, `[E206] relations[0].to: unknown subsystem "Ghost"`, err.Error())
}
