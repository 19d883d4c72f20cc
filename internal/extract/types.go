package extract

import (
	"github.com/krkavinraj/Bhindi-mem/internal/graph"
)

// Entity is a transient extraction candidate for a node. It carries a
// confidence score that is consumed by the executor and never persisted.
type Entity struct {
	Name       string           `json:"name"`
	Type       graph.EntityType `json:"type"`
	Properties graph.Properties `json:"properties"`
	Confidence float64          `json:"confidence"`
}

// Relationship is a transient extraction candidate for an edge
type Relationship struct {
	From       string           `json:"from_entity"`
	To         string           `json:"to_entity"`
	Type       string           `json:"type"`
	Properties graph.Properties `json:"properties"`
	Confidence float64          `json:"confidence"`
}

// Extraction is the structured result of parsing one user statement
type Extraction struct {
	Intent        string         `json:"intent"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Confidence    float64        `json:"confidence"`
	RawResponse   string         `json:"raw_response,omitempty"`
}

// Intents recognized by the executor
const (
	IntentCreate  = "CREATE"
	IntentRead    = "READ"
	IntentQuery   = "QUERY"
	IntentUpdate  = "UPDATE"
	IntentDelete  = "DELETE"
	IntentUnknown = "unknown"
)

// unknownExtraction builds the well-formed failure shape: unknown intent,
// empty candidate lists, zero confidence.
func unknownExtraction(raw string) Extraction {
	return Extraction{
		Intent:        IntentUnknown,
		Entities:      []Entity{},
		Relationships: []Relationship{},
		Confidence:    0.0,
		RawResponse:   raw,
	}
}
