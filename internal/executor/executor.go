package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/krkavinraj/Bhindi-mem/internal/extract"
	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"go.uber.org/zap"
)

// minConfidence is the inclusive acceptance floor for extraction candidates
const minConfidence = 0.3

// genericNames are entity names too vague to store
var genericNames = map[string]struct{}{
	"thing":      {},
	"stuff":      {},
	"something":  {},
	"anything":   {},
	"everything": {},
}

// protectedNames can never be deleted: the user's own node and its aliases
var protectedNames = map[string]struct{}{
	"user": {},
	"me":   {},
	"i":    {},
}

// Result is the structured outcome of executing one extraction. Execution
// never raises to the caller; failures are carried in Success and Message.
type Result struct {
	Intent                 string      `json:"intent"`
	Success                bool        `json:"success"`
	Message                string      `json:"message"`
	EntitiesProcessed      int         `json:"entities_processed"`
	RelationshipsProcessed int         `json:"relationships_processed"`
	Data                   interface{} `json:"data,omitempty"`
}

// Executor translates one extraction into graph store calls, applying the
// acceptance policy uniformly across all intents.
type Executor struct {
	store  graph.Store
	logger *zap.Logger
}

// New creates an executor over a graph store
func New(store graph.Store) *Executor {
	return &Executor{
		store:  store,
		logger: logger.Get(),
	}
}

// Execute dispatches one extraction by intent. Unrecognized intents yield a
// failed result carrying the literal intent string.
func (e *Executor) Execute(ctx context.Context, extraction extract.Extraction) (result Result) {
	result = Result{Intent: extraction.Intent}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Execution panicked", zap.Any("panic", r))
			result = Result{
				Intent:  extraction.Intent,
				Message: fmt.Sprintf("Error: %v", r),
			}
		}
	}()

	switch extraction.Intent {
	case extract.IntentCreate:
		return e.executeCreate(ctx, extraction, result)
	case extract.IntentRead, extract.IntentQuery:
		return e.executeRead(ctx, extraction, result)
	case extract.IntentUpdate:
		return e.executeUpdate(ctx, extraction, result)
	case extract.IntentDelete:
		return e.executeDelete(ctx, extraction, result)
	default:
		result.Message = fmt.Sprintf("Unknown intent: %s", extraction.Intent)
		return result
	}
}

func (e *Executor) executeCreate(ctx context.Context, extraction extract.Extraction, result Result) Result {
	entitiesCreated := 0
	relationshipsCreated := 0

	for _, entity := range extraction.Entities {
		if !shouldProcessEntity(entity) {
			continue
		}
		if err := e.store.CreateOrUpdateNode(ctx, entity.Name, entity.Type, entity.Properties); err != nil {
			e.logger.Warn("Failed to create entity", zap.String("name", entity.Name), zap.Error(err))
			continue
		}
		entitiesCreated++
		e.logger.Info("Created/Updated entity",
			zap.String("name", entity.Name),
			zap.String("type", string(entity.Type)),
		)
	}

	for _, rel := range extraction.Relationships {
		if !shouldProcessRelationship(rel) {
			continue
		}
		err := e.store.CreateRelationship(ctx, rel.From, rel.To, graph.RelationshipType(rel.Type), rel.Properties)
		if err != nil {
			e.logger.Warn("Failed to create relationship",
				zap.String("from", rel.From),
				zap.String("to", rel.To),
				zap.Error(err),
			)
			continue
		}
		relationshipsCreated++
		e.logger.Info("Created relationship",
			zap.String("from", rel.From),
			zap.String("to", rel.To),
			zap.String("type", rel.Type),
		)
	}

	result.Success = entitiesCreated > 0 || relationshipsCreated > 0
	result.Message = fmt.Sprintf("Created %d entities and %d relationships", entitiesCreated, relationshipsCreated)
	result.EntitiesProcessed = entitiesCreated
	result.RelationshipsProcessed = relationshipsCreated
	return result
}

func (e *Executor) executeRead(ctx context.Context, extraction extract.Extraction, result Result) Result {
	// No entities extracted: answer with the graph overview
	if len(extraction.Entities) == 0 {
		stats, err := e.store.Statistics(ctx)
		if err != nil {
			result.Message = fmt.Sprintf("Error: %v", err)
			return result
		}
		result.Success = true
		result.Message = "Retrieved graph overview"
		result.Data = stats
		return result
	}

	var queryResults []interface{}
	for _, entity := range extraction.Entities {
		if !shouldProcessEntity(entity) || strings.EqualFold(entity.Name, "user") {
			continue
		}
		nodeData, err := e.store.GetNodeWithRelationships(ctx, entity.Name)
		if err != nil {
			continue
		}
		queryResults = append(queryResults, nodeData)
	}

	// Nothing matched by name: fall back to querying by declared type
	if len(queryResults) == 0 {
		for _, entity := range extraction.Entities {
			if !shouldProcessEntity(entity) {
				continue
			}
			if entity.Type == "" || entity.Type == graph.TypePerson {
				continue
			}
			nodes, err := e.store.GetNodesByType(ctx, entity.Type)
			if err != nil {
				continue
			}
			for _, node := range nodes {
				queryResults = append(queryResults, node)
			}
		}
	}

	result.Success = len(queryResults) > 0
	result.Message = fmt.Sprintf("Found %d results", len(queryResults))
	result.Data = queryResults
	result.EntitiesProcessed = len(queryResults)
	return result
}

func (e *Executor) executeUpdate(ctx context.Context, extraction extract.Extraction, result Result) Result {
	entitiesUpdated := 0
	relationshipsUpdated := 0

	for _, entity := range extraction.Entities {
		if !shouldProcessEntity(entity) || strings.EqualFold(entity.Name, "user") {
			continue
		}
		// Only update entities that already exist
		if _, err := e.store.GetNode(ctx, entity.Name); err != nil {
			continue
		}
		if err := e.store.UpdateNodeProperties(ctx, entity.Name, entity.Properties); err != nil {
			e.logger.Warn("Failed to update entity", zap.String("name", entity.Name), zap.Error(err))
			continue
		}
		entitiesUpdated++
		e.logger.Info("Updated entity", zap.String("name", entity.Name))
	}

	// Relationships are replaced, not patched: delete the old edge and
	// recreate it with the new properties.
	for _, rel := range extraction.Relationships {
		if !shouldProcessRelationship(rel) {
			continue
		}
		relType := graph.RelationshipType(rel.Type)
		_ = e.store.DeleteRelationship(ctx, rel.From, rel.To, relType)
		if err := e.store.CreateRelationship(ctx, rel.From, rel.To, relType, rel.Properties); err != nil {
			e.logger.Warn("Failed to update relationship",
				zap.String("from", rel.From),
				zap.String("to", rel.To),
				zap.Error(err),
			)
			continue
		}
		relationshipsUpdated++
		e.logger.Info("Updated relationship",
			zap.String("from", rel.From),
			zap.String("to", rel.To),
			zap.String("type", rel.Type),
		)
	}

	result.Success = entitiesUpdated > 0 || relationshipsUpdated > 0
	result.Message = fmt.Sprintf("Updated %d entities and %d relationships", entitiesUpdated, relationshipsUpdated)
	result.EntitiesProcessed = entitiesUpdated
	result.RelationshipsProcessed = relationshipsUpdated
	return result
}

func (e *Executor) executeDelete(ctx context.Context, extraction extract.Extraction, result Result) Result {
	entitiesDeleted := 0
	relationshipsDeleted := 0

	// Delete relationships before entities so edge removal never depends
	// on cascade semantics.
	for _, rel := range extraction.Relationships {
		if !shouldProcessRelationship(rel) {
			continue
		}
		if err := e.store.DeleteRelationship(ctx, rel.From, rel.To, graph.RelationshipType(rel.Type)); err != nil {
			e.logger.Warn("Failed to delete relationship",
				zap.String("from", rel.From),
				zap.String("to", rel.To),
				zap.Error(err),
			)
			continue
		}
		relationshipsDeleted++
		e.logger.Info("Deleted relationship",
			zap.String("from", rel.From),
			zap.String("to", rel.To),
			zap.String("type", rel.Type),
		)
	}

	for _, entity := range extraction.Entities {
		if !shouldProcessEntity(entity) {
			continue
		}
		if _, protected := protectedNames[strings.ToLower(entity.Name)]; protected {
			continue
		}
		if err := e.store.DeleteNode(ctx, entity.Name); err != nil {
			e.logger.Warn("Failed to delete entity", zap.String("name", entity.Name), zap.Error(err))
			continue
		}
		entitiesDeleted++
		e.logger.Info("Deleted entity", zap.String("name", entity.Name))
	}

	result.Success = entitiesDeleted > 0 || relationshipsDeleted > 0
	result.Message = fmt.Sprintf("Deleted %d entities and %d relationships", entitiesDeleted, relationshipsDeleted)
	result.EntitiesProcessed = entitiesDeleted
	result.RelationshipsProcessed = relationshipsDeleted
	return result
}

// shouldProcessEntity applies the acceptance policy: confidence at or above
// the floor, a non-empty trimmed name, and nothing from the generic-term
// blocklist.
func shouldProcessEntity(entity extract.Entity) bool {
	if entity.Confidence < minConfidence {
		return false
	}
	if strings.TrimSpace(entity.Name) == "" {
		return false
	}
	if _, generic := genericNames[strings.ToLower(entity.Name)]; generic {
		return false
	}
	return true
}

// shouldProcessRelationship applies the acceptance policy: confidence at or
// above the floor, non-empty trimmed endpoints, and no self-relationships.
func shouldProcessRelationship(rel extract.Relationship) bool {
	if rel.Confidence < minConfidence {
		return false
	}
	if strings.TrimSpace(rel.From) == "" || strings.TrimSpace(rel.To) == "" {
		return false
	}
	if strings.EqualFold(rel.From, rel.To) {
		return false
	}
	return true
}
