package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// These tests require a running Neo4j instance.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables.

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		uri = "bolt://localhost:7687"
	}
	user := os.Getenv("NEO4J_USER")
	if user == "" {
		user = "neo4j"
	}
	password := os.Getenv("NEO4J_PASSWORD")
	if password == "" {
		password = "password"
	}
	return neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
}

func cleanupTestNodes(ctx context.Context, driver neo4j.DriverWithContext, names ...string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	for _, name := range names {
		_, _ = session.Run(ctx, "MATCH (n {name: $name}) DETACH DELETE n", map[string]interface{}{"name": name})
	}
}

func TestRepository_CreateAndGetNode(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	name := "test-skill-" + time.Now().Format("20060102150405")
	defer cleanupTestNodes(ctx, driver, name)

	err = repo.CreateOrUpdateNode(ctx, name, TypeSkill, Properties{"category": String("music")})
	if err != nil {
		t.Fatalf("CreateOrUpdateNode failed: %v", err)
	}

	node, err := repo.GetNode(ctx, name)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if node.Name != name {
		t.Errorf("Expected name %q, got %q", name, node.Name)
	}
	if node.Type != TypeSkill {
		t.Errorf("Expected type Skill, got %q", node.Type)
	}
	if category, _ := node.Properties["category"].AsString(); category != "music" {
		t.Errorf("Expected category 'music', got %q", category)
	}
}

func TestRepository_CreateNodeMergesProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	name := "test-merge-" + time.Now().Format("20060102150405")
	defer cleanupTestNodes(ctx, driver, name)

	if err := repo.CreateOrUpdateNode(ctx, name, TypeSkill, Properties{
		"category": String("music"),
		"level":    String("beginner"),
	}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if err := repo.CreateOrUpdateNode(ctx, name, TypeSkill, Properties{
		"level": String("advanced"),
	}); err != nil {
		t.Fatalf("Second create failed: %v", err)
	}

	node, err := repo.GetNode(ctx, name)
	if err != nil {
		t.Fatalf("GetNode failed: %v", err)
	}
	if level, _ := node.Properties["level"].AsString(); level != "advanced" {
		t.Errorf("Expected level 'advanced', got %q", level)
	}
	if category, _ := node.Properties["category"].AsString(); category != "music" {
		t.Errorf("Expected category 'music' to survive merge, got %q", category)
	}
}

func TestRepository_Relationships(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	suffix := time.Now().Format("20060102150405")
	from := "test-user-" + suffix
	to := "test-guitar-" + suffix
	defer cleanupTestNodes(ctx, driver, from, to)

	if err := repo.CreateOrUpdateNode(ctx, from, TypePerson, Properties{}); err != nil {
		t.Fatalf("Create endpoint failed: %v", err)
	}
	if err := repo.CreateOrUpdateNode(ctx, to, TypeSkill, Properties{}); err != nil {
		t.Fatalf("Create endpoint failed: %v", err)
	}

	if err := repo.CreateRelationship(ctx, from, to, RelSkilledIn, Properties{"level": String("advanced")}); err != nil {
		t.Fatalf("CreateRelationship failed: %v", err)
	}

	views, err := repo.GetNodeRelationships(ctx, from)
	if err != nil {
		t.Fatalf("GetNodeRelationships failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 relationship, got %d", len(views))
	}
	if views[0].Type != RelSkilledIn {
		t.Errorf("Expected SKILLED_IN, got %q", views[0].Type)
	}
	if views[0].TargetName != to {
		t.Errorf("Expected target %q, got %q", to, views[0].TargetName)
	}
	if views[0].Direction != DirectionOutgoing {
		t.Errorf("Expected outgoing direction, got %q", views[0].Direction)
	}

	if err := repo.DeleteRelationship(ctx, from, to, RelSkilledIn); err != nil {
		t.Fatalf("DeleteRelationship failed: %v", err)
	}
	views, err = repo.GetNodeRelationships(ctx, from)
	if err != nil {
		t.Fatalf("GetNodeRelationships failed: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("Expected no relationships after delete, got %d", len(views))
	}
}

func TestRepository_RelationshipRequiresEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	suffix := time.Now().Format("20060102150405")
	from := "test-orphan-" + suffix
	defer cleanupTestNodes(ctx, driver, from)

	if err := repo.CreateOrUpdateNode(ctx, from, TypePerson, Properties{}); err != nil {
		t.Fatalf("Create endpoint failed: %v", err)
	}

	err = repo.CreateRelationship(ctx, from, "test-missing-"+suffix, RelKnows, Properties{})
	if !errors.Is(err, ErrEndpointMissing) {
		t.Errorf("Expected ErrEndpointMissing, got %v", err)
	}
}

func TestRepository_InvalidRelationshipTypeRejectedBeforeQuery(t *testing.T) {
	// Pure validation, no backend needed
	repo := &Repository{}
	err := repo.CreateRelationship(context.Background(), "a", "b", "PLAYS", Properties{})
	var invalid ErrInvalidRelationshipType
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected ErrInvalidRelationshipType, got %v", err)
	}

	err = repo.DeleteRelationship(context.Background(), "a", "b", "DROP")
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected ErrInvalidRelationshipType, got %v", err)
	}
}

func TestRepository_Statistics(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	name := fmt.Sprintf("test-stats-%d", time.Now().UnixNano())
	defer cleanupTestNodes(ctx, driver, name)

	if err := repo.CreateOrUpdateNode(ctx, name, TypeConcept, Properties{}); err != nil {
		t.Fatalf("CreateOrUpdateNode failed: %v", err)
	}

	stats, err := repo.Statistics(ctx)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Nodes < 1 {
		t.Errorf("Expected at least 1 node, got %d", stats.Nodes)
	}
}
