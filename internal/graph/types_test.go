package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationshipTypeValid(t *testing.T) {
	for _, rt := range RelationshipTypes() {
		assert.True(t, rt.Valid(), "expected %s to be valid", rt)
	}

	assert.False(t, RelationshipType("PLAYS").Valid())
	assert.False(t, RelationshipType("").Valid())
	// Validation is exact: labels are interpolated into query text, so
	// near-misses must never pass.
	assert.False(t, RelationshipType("knows").Valid())
	assert.False(t, RelationshipType("KNOWS ").Valid())
	assert.False(t, RelationshipType("KNOWS}) DETACH DELETE n //").Valid())
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#FF6B6B", ColorFor(TypePerson))
	assert.Equal(t, "#98D8C8", ColorFor(TypeSkill))
	// Unknown types get the default color
	assert.Equal(t, "#BDC3C7", ColorFor(EntityType("Widget")))
	assert.Equal(t, "#BDC3C7", ColorFor(TypeDefault))
}

func TestErrInvalidRelationshipType(t *testing.T) {
	err := ErrInvalidRelationshipType{Type: "PLAYS"}
	assert.Contains(t, err.Error(), "PLAYS")
}
