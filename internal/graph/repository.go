package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Repository is the Neo4j-backed Store. Every operation runs as a
// self-contained session against the driver.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// CreateOrUpdateNode merges a node by name. An existing node keeps its
// created_at, gets its type overwritten and the incoming properties
// shallow-merged on top of its own.
func (r *Repository) CreateOrUpdateNode(ctx context.Context, name string, entityType EntityType, props Properties) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (n {name: $name})
		ON CREATE SET n.created_at = datetime()
		SET n.type = $node_type
		SET n += $properties
		SET n.updated_at = datetime()
		RETURN n
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"name":       name,
		"node_type":  string(entityType),
		"properties": props.Native(),
	})
	if err != nil {
		return fmt.Errorf("failed to create/update node %q: %w", name, err)
	}

	if _, err = result.Single(ctx); err != nil {
		return fmt.Errorf("failed to verify node merge for %q: %w", name, err)
	}

	r.logger.Debug("Node merged",
		zap.String("name", name),
		zap.String("type", string(entityType)),
	)
	return nil
}

// CreateRelationship merges an edge by its (from, to, type) triple. The
// relationship type cannot be bound as a query parameter, so it is
// validated against the allowed set before being interpolated; an invalid
// type is rejected before any query text is built.
func (r *Repository) CreateRelationship(ctx context.Context, from, to string, relType RelationshipType, props Properties) error {
	if !relType.Valid() {
		return ErrInvalidRelationshipType{Type: relType}
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a {name: $from_node})
		MATCH (b {name: $to_node})
		MERGE (a)-[r:%s]->(b)
		SET r += $properties
		SET r.created_at = datetime()
		RETURN r
	`, relType)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"from_node":  from,
		"to_node":    to,
		"properties": props.Native(),
	})
	if err != nil {
		return fmt.Errorf("failed to create relationship %s -> %s: %w", from, to, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return fmt.Errorf("failed to create relationship %s -> %s: %w", from, to, err)
		}
		r.logger.Warn("Relationship endpoints missing",
			zap.String("from", from),
			zap.String("to", to),
			zap.String("type", string(relType)),
		)
		return ErrEndpointMissing
	}

	return nil
}

// GetNode looks up a node by exact name
func (r *Repository) GetNode(ctx context.Context, name string) (*Entity, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, "MATCH (n {name: $name}) RETURN n", map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get node %q: %w", name, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to get node %q: %w", name, err)
		}
		return nil, ErrNotFound
	}

	node, ok := result.Record().Get("n")
	if !ok {
		return nil, ErrNotFound
	}
	entity := entityFromNode(node.(neo4j.Node))
	return &entity, nil
}

// GetNodeWithRelationships returns a node plus all its incident edges with
// direction and the connected node's full property set.
func (r *Repository) GetNodeWithRelationships(ctx context.Context, name string) (*NodeWithRelationships, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (n {name: $name})
		OPTIONAL MATCH (n)-[r]-(connected)
		RETURN n, collect({
			relationship: r,
			connected_node: connected,
			direction: CASE
				WHEN startNode(r) = n THEN 'outgoing'
				ELSE 'incoming'
			END
		}) as relationships
	`

	result, err := session.Run(ctx, query, map[string]interface{}{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to get node with relationships %q: %w", name, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to get node with relationships %q: %w", name, err)
		}
		return nil, ErrNotFound
	}

	record := result.Record()
	nodeVal, ok := record.Get("n")
	if !ok {
		return nil, ErrNotFound
	}

	out := &NodeWithRelationships{
		Node:          entityFromNode(nodeVal.(neo4j.Node)),
		Relationships: []NodeRelationship{},
	}

	rels, _ := record.Get("relationships")
	items, _ := rels.([]interface{})
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rel, ok := entry["relationship"].(neo4j.Relationship)
		if !ok {
			continue
		}
		connected, ok := entry["connected_node"].(neo4j.Node)
		if !ok {
			continue
		}
		out.Relationships = append(out.Relationships, NodeRelationship{
			Type:          RelationshipType(rel.Type),
			Properties:    relationshipProperties(rel.Props),
			ConnectedNode: entityFromNode(connected),
			Direction:     Direction(getStringFromMap(entry, "direction", string(DirectionIncoming))),
		})
	}

	return out, nil
}

// GetAllNodes returns every node ordered by name
func (r *Repository) GetAllNodes(ctx context.Context) ([]Entity, error) {
	return r.collectNodes(ctx, "MATCH (n) RETURN n ORDER BY n.name", nil)
}

// GetNodesByType returns all nodes of the given type ordered by name
func (r *Repository) GetNodesByType(ctx context.Context, entityType EntityType) ([]Entity, error) {
	return r.collectNodes(ctx, "MATCH (n {type: $node_type}) RETURN n ORDER BY n.name", map[string]interface{}{
		"node_type": string(entityType),
	})
}

// SearchNodesByName does a case-insensitive substring match on node names,
// ordered by name and capped at 20 results.
func (r *Repository) SearchNodesByName(ctx context.Context, term string) ([]Entity, error) {
	query := `
		MATCH (n)
		WHERE toLower(n.name) CONTAINS toLower($search_term)
		RETURN n
		ORDER BY n.name
		LIMIT 20
	`
	return r.collectNodes(ctx, query, map[string]interface{}{"search_term": term})
}

func (r *Repository) collectNodes(ctx context.Context, query string, params map[string]interface{}) ([]Entity, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	var nodes []Entity
	for result.Next(ctx) {
		if nodeVal, ok := result.Record().Get("n"); ok {
			if node, ok := nodeVal.(neo4j.Node); ok {
				nodes = append(nodes, entityFromNode(node))
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}

	return nodes, nil
}

// GetNodeRelationships returns the flattened edges for a node: type,
// properties, the connected node's name and type, and direction.
func (r *Repository) GetNodeRelationships(ctx context.Context, name string) ([]RelationshipView, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (n {name: $name})-[r]-(connected)
		RETURN type(r) as relationship_type,
		       properties(r) as properties,
		       connected.name as connected_name,
		       connected.type as connected_type,
		       CASE
		           WHEN startNode(r) = n THEN 'outgoing'
		           ELSE 'incoming'
		       END as direction
	`

	result, err := session.Run(ctx, query, map[string]interface{}{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships for %q: %w", name, err)
	}

	var views []RelationshipView
	for result.Next(ctx) {
		record := result.Record()
		props, _ := record.Get("properties")
		rawProps, _ := props.(map[string]interface{})
		views = append(views, RelationshipView{
			Type:       RelationshipType(getStringFromRecord(record, "relationship_type")),
			Properties: relationshipProperties(rawProps),
			TargetName: getStringFromRecord(record, "connected_name"),
			TargetType: EntityType(getStringFromRecord(record, "connected_type")),
			Direction:  Direction(getStringFromRecord(record, "direction")),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read relationships for %q: %w", name, err)
	}

	return views, nil
}

// UpdateNodeProperties merges properties into an existing node. It does not
// create the node when absent.
func (r *Repository) UpdateNodeProperties(ctx context.Context, name string, props Properties) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (n {name: $name})
		SET n += $properties
		SET n.updated_at = datetime()
		RETURN n
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"name":       name,
		"properties": props.Native(),
	})
	if err != nil {
		return fmt.Errorf("failed to update node %q: %w", name, err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return fmt.Errorf("failed to update node %q: %w", name, err)
		}
		return ErrNotFound
	}

	return nil
}

// DeleteNode removes a node and detaches all its relationships atomically
func (r *Repository) DeleteNode(ctx context.Context, name string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, "MATCH (n {name: $name}) DETACH DELETE n", map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return fmt.Errorf("failed to delete node %q: %w", name, err)
	}

	r.logger.Debug("Node deleted", zap.String("name", name))
	return nil
}

// DeleteRelationship removes the edge identified by (from, to, type)
func (r *Repository) DeleteRelationship(ctx context.Context, from, to string, relType RelationshipType) error {
	if !relType.Valid() {
		return ErrInvalidRelationshipType{Type: relType}
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a {name: $from_node})-[r:%s]->(b {name: $to_node})
		DELETE r
	`, relType)

	_, err := session.Run(ctx, query, map[string]interface{}{
		"from_node": from,
		"to_node":   to,
	})
	if err != nil {
		return fmt.Errorf("failed to delete relationship %s -> %s: %w", from, to, err)
	}

	return nil
}

// Statistics returns aggregate node and relationship counts, grouped by
// type and ordered by descending frequency.
func (r *Repository) Statistics(ctx context.Context) (*Statistics, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	stats := &Statistics{
		NodeTypes:         []TypeCount{},
		RelationshipTypes: []TypeCount{},
	}

	result, err := session.Run(ctx, "MATCH (n) RETURN count(n) as node_count", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count nodes: %w", err)
	}
	if result.Next(ctx) {
		stats.Nodes = getInt64FromRecord(result.Record(), "node_count")
	}

	result, err = session.Run(ctx, "MATCH ()-[r]->() RETURN count(r) as rel_count", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count relationships: %w", err)
	}
	if result.Next(ctx) {
		stats.Relationships = getInt64FromRecord(result.Record(), "rel_count")
	}

	result, err = session.Run(ctx, `
		MATCH (n)
		WHERE n.type IS NOT NULL
		RETURN n.type as type, count(n) as count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count node types: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		stats.NodeTypes = append(stats.NodeTypes, TypeCount{
			Type:  getStringFromRecord(record, "type"),
			Count: getInt64FromRecord(record, "count"),
		})
	}

	result, err = session.Run(ctx, `
		MATCH ()-[r]->()
		RETURN type(r) as rel_type, count(r) as count
		ORDER BY count DESC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count relationship types: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		stats.RelationshipTypes = append(stats.RelationshipTypes, TypeCount{
			Type:  getStringFromRecord(record, "rel_type"),
			Count: getInt64FromRecord(record, "count"),
		})
	}

	return stats, nil
}

// VisualizationData fetches a bounded node window and only the edges whose
// both endpoints landed in the window.
func (r *Repository) VisualizationData(ctx context.Context, limit int) (*VisualizationData, error) {
	if limit < 1 {
		limit = 100
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	nodeQuery := `
		MATCH (n)
		RETURN n.name as name,
		       n.type as type,
		       properties(n) as properties
		LIMIT $limit
	`
	result, err := session.Run(ctx, nodeQuery, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visualization nodes: %w", err)
	}

	data := &VisualizationData{Nodes: []VisNode{}, Edges: []VisEdge{}}
	nodeNames := make([]interface{}, 0, limit)

	for result.Next(ctx) {
		record := result.Record()
		name := getStringFromRecord(record, "name")
		entityType := EntityType(getStringFromRecord(record, "type"))
		if entityType == "" {
			entityType = TypeDefault
		}
		props, _ := record.Get("properties")
		rawProps, _ := props.(map[string]interface{})

		data.Nodes = append(data.Nodes, VisNode{
			ID:         name,
			Label:      name,
			Type:       entityType,
			Color:      ColorFor(entityType),
			Properties: nodeProperties(rawProps),
		})
		nodeNames = append(nodeNames, name)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read visualization nodes: %w", err)
	}

	if len(nodeNames) > 0 {
		relQuery := `
			MATCH (a)-[r]->(b)
			WHERE a.name IN $node_names AND b.name IN $node_names
			RETURN a.name as source,
			       b.name as target,
			       type(r) as type,
			       properties(r) as properties
		`
		result, err = session.Run(ctx, relQuery, map[string]interface{}{"node_names": nodeNames})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch visualization edges: %w", err)
		}

		for result.Next(ctx) {
			record := result.Record()
			relType := RelationshipType(getStringFromRecord(record, "type"))
			props, _ := record.Get("properties")
			rawProps, _ := props.(map[string]interface{})

			data.Edges = append(data.Edges, VisEdge{
				Source:     getStringFromRecord(record, "source"),
				Target:     getStringFromRecord(record, "target"),
				Type:       relType,
				Label:      string(relType),
				Properties: relationshipProperties(rawProps),
			})
		}
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to read visualization edges: %w", err)
		}
	}

	data.TotalNodes = len(data.Nodes)
	data.TotalEdges = len(data.Edges)
	return data, nil
}

// entityFromNode converts a driver node into an Entity, splitting the
// reserved name/type/timestamp keys out of the open property map.
func entityFromNode(node neo4j.Node) Entity {
	entity := Entity{
		Properties: Properties{},
	}
	for key, val := range node.Props {
		switch key {
		case "name":
			if s, ok := val.(string); ok {
				entity.Name = s
			}
		case "type":
			if s, ok := val.(string); ok {
				entity.Type = EntityType(s)
			}
		case "created_at":
			if t, ok := val.(time.Time); ok {
				entity.CreatedAt = t
			}
		case "updated_at":
			if t, ok := val.(time.Time); ok {
				entity.UpdatedAt = t
			}
		default:
			entity.Properties[key] = ValueFrom(val)
		}
	}
	return entity
}

// nodeProperties converts a raw node property map, dropping the reserved
// name/type keys.
func nodeProperties(raw map[string]interface{}) Properties {
	props := Properties{}
	for key, val := range raw {
		if key == "name" || key == "type" {
			continue
		}
		props[key] = ValueFrom(val)
	}
	return props
}

// relationshipProperties converts a raw edge property map
func relationshipProperties(raw map[string]interface{}) Properties {
	props := Properties{}
	for key, val := range raw {
		props[key] = ValueFrom(val)
	}
	return props
}
