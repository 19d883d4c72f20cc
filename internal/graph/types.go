package graph

import "time"

// EntityType categorizes a node in the knowledge graph
type EntityType string

const (
	TypePerson       EntityType = "Person"
	TypeConcept      EntityType = "Concept"
	TypeEvent        EntityType = "Event"
	TypePreference   EntityType = "Preference"
	TypeLocation     EntityType = "Location"
	TypeOrganization EntityType = "Organization"
	TypeSkill        EntityType = "Skill"
	TypeGoal         EntityType = "Goal"
	TypeMemory       EntityType = "Memory"
	TypeDefault      EntityType = "Default"
)

// nodeColors maps entity types to the color hints used by the
// visualization payload.
var nodeColors = map[EntityType]string{
	TypePerson:       "#FF6B6B",
	TypeConcept:      "#4ECDC4",
	TypeEvent:        "#45B7D1",
	TypePreference:   "#96CEB4",
	TypeLocation:     "#FFEAA7",
	TypeOrganization: "#DDA0DD",
	TypeSkill:        "#98D8C8",
	TypeGoal:         "#F7DC6F",
	TypeMemory:       "#BB8FCE",
	TypeDefault:      "#BDC3C7",
}

// ColorFor returns the visualization color hint for an entity type,
// defaulting for unknown types.
func ColorFor(entityType EntityType) string {
	if color, ok := nodeColors[entityType]; ok {
		return color
	}
	return nodeColors[TypeDefault]
}

// RelationshipType is the enumerated set of edge labels. Edge labels cannot
// be bound as query parameters, so every type is validated against this set
// before it is interpolated into query text.
type RelationshipType string

const (
	RelKnows     RelationshipType = "KNOWS"
	RelLikes     RelationshipType = "LIKES"
	RelDislikes  RelationshipType = "DISLIKES"
	RelWorksAt   RelationshipType = "WORKS_AT"
	RelLivesIn   RelationshipType = "LIVES_IN"
	RelAttended  RelationshipType = "ATTENDED"
	RelSkilledIn RelationshipType = "SKILLED_IN"
	RelWantsTo   RelationshipType = "WANTS_TO"
	RelRemembers RelationshipType = "REMEMBERS"
	RelRelatedTo RelationshipType = "RELATED_TO"
	RelPartOf    RelationshipType = "PART_OF"
	RelCreated   RelationshipType = "CREATED"
	RelLearned   RelationshipType = "LEARNED"
)

var relationshipTypes = map[RelationshipType]struct{}{
	RelKnows:     {},
	RelLikes:     {},
	RelDislikes:  {},
	RelWorksAt:   {},
	RelLivesIn:   {},
	RelAttended:  {},
	RelSkilledIn: {},
	RelWantsTo:   {},
	RelRemembers: {},
	RelRelatedTo: {},
	RelPartOf:    {},
	RelCreated:   {},
	RelLearned:   {},
}

// Valid reports whether the relationship type is in the allowed set
func (rt RelationshipType) Valid() bool {
	_, ok := relationshipTypes[rt]
	return ok
}

// RelationshipTypes returns the allowed relationship type set
func RelationshipTypes() []RelationshipType {
	types := make([]RelationshipType, 0, len(relationshipTypes))
	for rt := range relationshipTypes {
		types = append(types, rt)
	}
	return types
}

// Direction of a relationship relative to the node it was fetched for
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// Entity represents a uniquely-named node in the knowledge graph
type Entity struct {
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Properties Properties `json:"properties"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// NodeRelationship is one edge incident to a node, carrying the full
// connected node.
type NodeRelationship struct {
	Type          RelationshipType `json:"type"`
	Properties    Properties       `json:"properties"`
	ConnectedNode Entity           `json:"connected_node"`
	Direction     Direction        `json:"direction"`
}

// NodeWithRelationships is a node plus all its incident edges
type NodeWithRelationships struct {
	Node          Entity             `json:"node"`
	Relationships []NodeRelationship `json:"relationships"`
}

// RelationshipView is a flattened edge for a node: the edge plus the
// connected node's name and type.
type RelationshipView struct {
	Type       RelationshipType `json:"type"`
	Properties Properties       `json:"properties"`
	TargetName string           `json:"target_name"`
	TargetType EntityType       `json:"target_type"`
	Direction  Direction        `json:"direction"`
}

// TypeCount is a label with its occurrence count, used for statistics
// ordered by descending frequency.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// Statistics summarizes the graph contents
type Statistics struct {
	Nodes             int64       `json:"nodes"`
	Relationships     int64       `json:"relationships"`
	NodeTypes         []TypeCount `json:"node_types"`
	RelationshipTypes []TypeCount `json:"relationship_types"`
}

// VisNode is a node shaped for the visualization payload
type VisNode struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Type       EntityType `json:"type"`
	Color      string     `json:"color"`
	Properties Properties `json:"properties"`
}

// VisEdge is an edge shaped for the visualization payload
type VisEdge struct {
	Source     string           `json:"source"`
	Target     string           `json:"target"`
	Type       RelationshipType `json:"type"`
	Label      string           `json:"label"`
	Properties Properties       `json:"properties"`
}

// VisualizationData is a bounded window of the graph. Nodes are fetched
// first up to the limit and only edges between fetched nodes are included,
// so edges to out-of-window nodes are dropped. That is a deliberate
// trade-off for bounded response size over completeness.
type VisualizationData struct {
	Nodes      []VisNode `json:"nodes"`
	Edges      []VisEdge `json:"edges"`
	TotalNodes int       `json:"total_nodes"`
	TotalEdges int       `json:"total_edges"`
}
