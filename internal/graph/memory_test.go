package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{"category": String("music")})
	require.NoError(t, err)

	node, err := store.GetNode(ctx, "Guitar")
	require.NoError(t, err)
	assert.Equal(t, "Guitar", node.Name)
	assert.Equal(t, TypeSkill, node.Type)
	category, _ := node.Properties["category"].AsString()
	assert.Equal(t, "music", category)
	assert.False(t, node.CreatedAt.IsZero())
}

func TestMemoryStore_GetNodeNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetNode(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateIsIdempotentMerge(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{
		"category": String("music"),
		"level":    String("beginner"),
	}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{
		"level": String("advanced"),
	}))

	all, err := store.GetAllNodes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "repeated create must merge, not duplicate")

	node, err := store.GetNode(ctx, "Guitar")
	require.NoError(t, err)
	level, _ := node.Properties["level"].AsString()
	assert.Equal(t, "advanced", level)
	category, _ := node.Properties["category"].AsString()
	assert.Equal(t, "music", category)
}

func TestMemoryStore_RelationshipWritesRejected(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "User", TypePerson, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))

	err := store.CreateRelationship(ctx, "User", "Guitar", RelSkilledIn, Properties{})
	assert.ErrorIs(t, err, ErrRelationshipsUnavailable)

	err = store.DeleteRelationship(ctx, "User", "Guitar", RelSkilledIn)
	assert.ErrorIs(t, err, ErrRelationshipsUnavailable)

	// Invalid types are reported as invalid, not as unavailable
	err = store.CreateRelationship(ctx, "User", "Guitar", "PLAYS", Properties{})
	var invalid ErrInvalidRelationshipType
	assert.ErrorAs(t, err, &invalid)
}

func TestMemoryStore_RelationshipReadsAreEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.CreateOrUpdateNode(ctx, "User", TypePerson, Properties{}))

	views, err := store.GetNodeRelationships(ctx, "User")
	require.NoError(t, err)
	assert.Empty(t, views)

	node, err := store.GetNodeWithRelationships(ctx, "User")
	require.NoError(t, err)
	assert.Equal(t, "User", node.Node.Name)
	assert.Empty(t, node.Relationships)
}

func TestMemoryStore_SearchNodesByName(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Bass Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Piano", TypeSkill, Properties{}))

	results, err := store.SearchNodesByName(ctx, "guitar")
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Ordered by name
	assert.Equal(t, "Bass Guitar", results[0].Name)
	assert.Equal(t, "Guitar", results[1].Name)
}

func TestMemoryStore_GetNodesByType(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Berlin", TypeLocation, Properties{}))

	skills, err := store.GetNodesByType(ctx, TypeSkill)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "Guitar", skills[0].Name)
}

func TestMemoryStore_UpdateNodeProperties(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{"level": String("beginner")}))
	require.NoError(t, store.UpdateNodeProperties(ctx, "Guitar", Properties{"level": String("advanced")}))

	node, err := store.GetNode(ctx, "Guitar")
	require.NoError(t, err)
	level, _ := node.Properties["level"].AsString()
	assert.Equal(t, "advanced", level)

	// Update never creates
	err = store.UpdateNodeProperties(ctx, "Missing", Properties{"x": String("y")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetNode(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteNode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.DeleteNode(ctx, "Guitar"))

	_, err := store.GetNode(ctx, "Guitar")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent node is not an error
	assert.NoError(t, store.DeleteNode(ctx, "Guitar"))
}

func TestMemoryStore_Statistics(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Piano", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "User", TypePerson, Properties{}))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Nodes)
	assert.Equal(t, int64(0), stats.Relationships)
	require.Len(t, stats.NodeTypes, 2)
	assert.Equal(t, TypeCount{Type: "Skill", Count: 2}, stats.NodeTypes[0])
	assert.Equal(t, TypeCount{Type: "Person", Count: 1}, stats.NodeTypes[1])
	assert.Empty(t, stats.RelationshipTypes)
}

func TestMemoryStore_VisualizationData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateOrUpdateNode(ctx, "Guitar", TypeSkill, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "Berlin", TypeLocation, Properties{}))
	require.NoError(t, store.CreateOrUpdateNode(ctx, "User", TypePerson, Properties{}))

	data, err := store.VisualizationData(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, data.Nodes, 2)
	assert.Equal(t, 2, data.TotalNodes)
	assert.Empty(t, data.Edges)
	assert.Equal(t, ColorFor(TypeLocation), data.Nodes[0].Color)
}
