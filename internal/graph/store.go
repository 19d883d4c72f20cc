package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Sentinel errors returned by Store implementations
var (
	// ErrNotFound is returned when a node lookup finds no match
	ErrNotFound = errors.New("node not found")
	// ErrEndpointMissing is returned when a relationship names a node
	// that does not exist. Relationship creation never auto-creates
	// endpoints.
	ErrEndpointMissing = errors.New("relationship endpoint does not exist")
	// ErrRelationshipsUnavailable is returned by the in-memory fallback,
	// which accepts entity writes but rejects all relationship writes.
	ErrRelationshipsUnavailable = errors.New("relationships unavailable without a graph backend")
)

// ErrInvalidRelationshipType is returned before any query is built when a
// relationship type is not in the allowed set.
type ErrInvalidRelationshipType struct {
	Type RelationshipType
}

func (e ErrInvalidRelationshipType) Error() string {
	return fmt.Sprintf("invalid relationship type: %q", string(e.Type))
}

// Store is the capability set of the graph layer. Both the Neo4j repository
// and the in-memory fallback implement it; the variant is selected once at
// construction rather than branched per call.
type Store interface {
	// CreateOrUpdateNode merges a node by name: the type is overwritten
	// and properties are shallow-merged (incoming keys win).
	CreateOrUpdateNode(ctx context.Context, name string, entityType EntityType, props Properties) error
	// CreateRelationship merges an edge by its (from, to, type) triple,
	// overwriting properties. Both endpoints must already exist.
	CreateRelationship(ctx context.Context, from, to string, relType RelationshipType, props Properties) error
	// GetNode looks up a node by exact name, returning ErrNotFound when absent
	GetNode(ctx context.Context, name string) (*Entity, error)
	// GetNodeWithRelationships returns a node plus all incident edges
	GetNodeWithRelationships(ctx context.Context, name string) (*NodeWithRelationships, error)
	// GetAllNodes returns every node ordered by name
	GetAllNodes(ctx context.Context) ([]Entity, error)
	// GetNodesByType returns all nodes of one type ordered by name
	GetNodesByType(ctx context.Context, entityType EntityType) ([]Entity, error)
	// SearchNodesByName does a case-insensitive substring match, ordered
	// by name and capped at 20 results.
	SearchNodesByName(ctx context.Context, term string) ([]Entity, error)
	// GetNodeRelationships returns the flattened edges incident to a node
	GetNodeRelationships(ctx context.Context, name string) ([]RelationshipView, error)
	// UpdateNodeProperties merges properties into an existing node; it
	// does not create the node if absent.
	UpdateNodeProperties(ctx context.Context, name string, props Properties) error
	// DeleteNode removes a node and all its incident edges
	DeleteNode(ctx context.Context, name string) error
	// DeleteRelationship removes the edge identified by (from, to, type)
	DeleteRelationship(ctx context.Context, from, to string, relType RelationshipType) error
	// Statistics returns aggregate counts grouped by type, ordered by
	// descending frequency.
	Statistics(ctx context.Context) (*Statistics, error)
	// VisualizationData returns a bounded window of nodes and the edges
	// between them.
	VisualizationData(ctx context.Context, limit int) (*VisualizationData, error)
	// Close releases the backend connection
	Close(ctx context.Context) error
}

// Connect establishes the graph store. If the Neo4j backend is unreachable
// it degrades to the in-memory fallback instead of failing: entity writes
// still succeed there, relationship writes report
// ErrRelationshipsUnavailable.
func Connect(ctx context.Context, uri, user, password string) Store {
	log := logger.Get()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err == nil {
		if err = driver.VerifyConnectivity(ctx); err == nil {
			log.Info("Connected to Neo4j", zap.String("uri", uri))
			return NewRepository(driver)
		}
		_ = driver.Close(ctx)
	}

	log.Warn("Failed to connect to Neo4j, running with in-memory fallback",
		zap.String("uri", uri),
		zap.Error(err),
	)
	return NewMemoryStore()
}
