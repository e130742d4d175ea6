package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *Profile {
	return &Profile{
		Name: "sample",
		Groups: []Group{
			{Name: "Power", Members: []string{"Battery", "ESC"}},
			{Name: "Modes", Exclusive: true, Members: []string{"Manual", "Auto"}},
		},
		Relations: []Relation{
			{From: "ESC", Kind: Requires, To: "Battery"},
		},
		ArmRequired: []string{"Battery"},
		FlightModes: "Modes",
	}
}

func TestProfileHashDeterminism(t *testing.T) {
	h1, err := ProfileHash(sampleProfile())
	require.NoError(t, err)
	h2, err := ProfileHash(sampleProfile())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "ProfileHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestProfileHashChangesWithRelations(t *testing.T) {
	p := sampleProfile()
	base := MustProfileHash(p)

	p.Relations = append(p.Relations, Relation{From: "Auto", Kind: Implies, To: "ESC"})
	assert.NotEqual(t, base, MustProfileHash(p))
}

func TestProfileHashChangesWithExclusivity(t *testing.T) {
	p := sampleProfile()
	base := MustProfileHash(p)

	p.Groups[1].Exclusive = false
	assert.NotEqual(t, base, MustProfileHash(p))
}

func TestHashDomainSeparation(t *testing.T) {
	data := []byte(`{"a":1}`)
	assert.NotEqual(t,
		hashWithDomain(DomainProfile, data),
		hashWithDomain(DomainSnapshot, data),
		"different domains must produce different hashes")
}

func TestSnapshotHash(t *testing.T) {
	h, err := SnapshotHash(IRObject{"enabled": Strings([]string{"IMU"})})
	require.NoError(t, err)
	assert.Len(t, h, 64)

	_, err = SnapshotHash(IRObject{"bad": nil})
	require.Error(t, err)
}
