package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"go.uber.org/zap"
)

// MemoryStore is the degraded fallback used when no Neo4j backend is
// reachable. It keeps nodes in a linear list keyed by name and merges by
// scan. It accepts entity writes but rejects all relationship writes; edge
// reads report an empty graph. A mutex guards the node list so the fallback
// stays safe under concurrent access.
type MemoryStore struct {
	mu     sync.Mutex
	nodes  []*memoryNode
	logger *zap.Logger
}

type memoryNode struct {
	name       string
	entityType EntityType
	properties Properties
	createdAt  time.Time
	updatedAt  time.Time
}

// NewMemoryStore creates an empty in-memory fallback store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logger: logger.Get(),
	}
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// CreateOrUpdateNode merges a node by name with a linear scan
func (s *MemoryStore) CreateOrUpdateNode(_ context.Context, name string, entityType EntityType, props Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if node := s.find(name); node != nil {
		node.entityType = entityType
		node.properties.Merge(props)
		node.updatedAt = now
		return nil
	}

	s.nodes = append(s.nodes, &memoryNode{
		name:       name,
		entityType: entityType,
		properties: props.Clone(),
		createdAt:  now,
		updatedAt:  now,
	})
	return nil
}

// CreateRelationship always fails: the fallback never stores edges
func (s *MemoryStore) CreateRelationship(_ context.Context, from, to string, relType RelationshipType, _ Properties) error {
	if !relType.Valid() {
		return ErrInvalidRelationshipType{Type: relType}
	}
	s.logger.Warn("Relationship write rejected in memory fallback",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("type", string(relType)),
	)
	return ErrRelationshipsUnavailable
}

// GetNode looks up a node by exact name
func (s *MemoryStore) GetNode(_ context.Context, name string) (*Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node := s.find(name); node != nil {
		entity := node.entity()
		return &entity, nil
	}
	return nil, ErrNotFound
}

// GetNodeWithRelationships returns the node with an empty edge list, since
// the fallback stores no edges.
func (s *MemoryStore) GetNodeWithRelationships(ctx context.Context, name string) (*NodeWithRelationships, error) {
	entity, err := s.GetNode(ctx, name)
	if err != nil {
		return nil, err
	}
	return &NodeWithRelationships{
		Node:          *entity,
		Relationships: []NodeRelationship{},
	}, nil
}

// GetAllNodes returns every node ordered by name
func (s *MemoryStore) GetAllNodes(_ context.Context) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(*memoryNode) bool { return true }, 0), nil
}

// GetNodesByType returns all nodes of the given type ordered by name
func (s *MemoryStore) GetNodesByType(_ context.Context, entityType EntityType) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(n *memoryNode) bool { return n.entityType == entityType }, 0), nil
}

// SearchNodesByName does a case-insensitive substring match, ordered by
// name and capped at 20 results.
func (s *MemoryStore) SearchNodesByName(_ context.Context, term string) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lowered := strings.ToLower(term)
	return s.collect(func(n *memoryNode) bool {
		return strings.Contains(strings.ToLower(n.name), lowered)
	}, 20), nil
}

// GetNodeRelationships returns no edges: the fallback stores none
func (s *MemoryStore) GetNodeRelationships(_ context.Context, _ string) ([]RelationshipView, error) {
	return []RelationshipView{}, nil
}

// UpdateNodeProperties merges properties into an existing node only
func (s *MemoryStore) UpdateNodeProperties(_ context.Context, name string, props Properties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.find(name)
	if node == nil {
		return ErrNotFound
	}
	node.properties.Merge(props)
	node.updatedAt = time.Now()
	return nil
}

// DeleteNode removes a node from the list. Deleting an absent node is not
// an error, matching the backend behavior.
func (s *MemoryStore) DeleteNode(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, node := range s.nodes {
		if node.name == name {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteRelationship always fails: the fallback never stores edges
func (s *MemoryStore) DeleteRelationship(_ context.Context, _, _ string, relType RelationshipType) error {
	if !relType.Valid() {
		return ErrInvalidRelationshipType{Type: relType}
	}
	return ErrRelationshipsUnavailable
}

// Statistics returns node counts by type and always zero relationships
func (s *MemoryStore) Statistics(_ context.Context) (*Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int64{}
	for _, node := range s.nodes {
		counts[string(node.entityType)]++
	}

	nodeTypes := make([]TypeCount, 0, len(counts))
	for entityType, count := range counts {
		nodeTypes = append(nodeTypes, TypeCount{Type: entityType, Count: count})
	}
	sort.Slice(nodeTypes, func(i, j int) bool {
		if nodeTypes[i].Count != nodeTypes[j].Count {
			return nodeTypes[i].Count > nodeTypes[j].Count
		}
		return nodeTypes[i].Type < nodeTypes[j].Type
	})

	return &Statistics{
		Nodes:             int64(len(s.nodes)),
		Relationships:     0,
		NodeTypes:         nodeTypes,
		RelationshipTypes: []TypeCount{},
	}, nil
}

// VisualizationData returns the node window with no edges
func (s *MemoryStore) VisualizationData(_ context.Context, limit int) (*VisualizationData, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entities := s.collect(func(*memoryNode) bool { return true }, limit)
	nodes := make([]VisNode, 0, len(entities))
	for _, entity := range entities {
		nodes = append(nodes, VisNode{
			ID:         entity.Name,
			Label:      entity.Name,
			Type:       entity.Type,
			Color:      ColorFor(entity.Type),
			Properties: entity.Properties,
		})
	}

	return &VisualizationData{
		Nodes:      nodes,
		Edges:      []VisEdge{},
		TotalNodes: len(nodes),
		TotalEdges: 0,
	}, nil
}

// find must be called with the mutex held
func (s *MemoryStore) find(name string) *memoryNode {
	for _, node := range s.nodes {
		if node.name == name {
			return node
		}
	}
	return nil
}

// collect must be called with the mutex held. A limit of 0 means unbounded.
func (s *MemoryStore) collect(match func(*memoryNode) bool, limit int) []Entity {
	entities := []Entity{}
	for _, node := range s.nodes {
		if match(node) {
			entities = append(entities, node.entity())
		}
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	if limit > 0 && len(entities) > limit {
		entities = entities[:limit]
	}
	return entities
}

func (n *memoryNode) entity() Entity {
	return Entity{
		Name:       n.name,
		Type:       n.entityType,
		Properties: n.properties.Clone(),
		CreatedAt:  n.createdAt,
		UpdatedAt:  n.updatedAt,
	}
}
