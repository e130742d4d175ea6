package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileSubsystemsRegistrationOrder(t *testing.T) {
	p := sampleProfile()
	assert.Equal(t, []string{"Battery", "ESC", "Manual", "Auto"}, p.Subsystems())
}

func TestProfileGroupLookup(t *testing.T) {
	p := sampleProfile()

	g, ok := p.Group("Modes")
	assert.True(t, ok)
	assert.True(t, g.Exclusive)

	_, ok = p.Group("Nope")
	assert.False(t, ok)
}

func TestValidRelationKinds(t *testing.T) {
	for _, k := range []RelationKind{Requires, Implies, Conflicts, Preempts} {
		assert.True(t, ValidRelationKinds[k], k)
	}
	assert.False(t, ValidRelationKinds["excludes"])
}
