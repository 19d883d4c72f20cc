package retriever

import (
	"context"

	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"go.uber.org/zap"
)

// maxRelatedEntities caps traversal results regardless of remaining
// frontier. The graph has no enforced acyclicity, so an unbounded walk on a
// cyclic graph would not terminate.
const maxRelatedEntities = 20

// RelatedEntity is one entity reached by traversal, with the edge path that
// led to it from the origin.
type RelatedEntity struct {
	Entity           string                   `json:"entity"`
	Depth            int                      `json:"depth"`
	Path             []graph.RelationshipView `json:"path"`
	RelationshipType graph.RelationshipType   `json:"relationship_type"`
}

// FindRelatedEntities does a breadth-first expansion from the start entity
// up to maxDepth. A visited set keyed by entity name prevents cycles.
func (r *Retriever) FindRelatedEntities(ctx context.Context, entityName string, maxDepth int) []RelatedEntity {
	type frontierEntry struct {
		entity string
		depth  int
		path   []graph.RelationshipView
	}

	related := []RelatedEntity{}
	visited := map[string]struct{}{}
	queue := []frontierEntry{{entity: entityName, depth: 0}}

	for len(queue) > 0 && len(related) < maxRelatedEntities {
		current := queue[0]
		queue = queue[1:]

		if _, seen := visited[current.entity]; seen || current.depth > maxDepth {
			continue
		}
		visited[current.entity] = struct{}{}

		relationships, err := r.store.GetNodeRelationships(ctx, current.entity)
		if err != nil {
			r.logger.Warn("Traversal step failed",
				zap.String("entity", current.entity),
				zap.Error(err),
			)
			continue
		}

		for _, rel := range relationships {
			target := rel.TargetName
			if target == "" {
				continue
			}
			if _, seen := visited[target]; seen {
				continue
			}
			if len(related) >= maxRelatedEntities {
				break
			}

			path := make([]graph.RelationshipView, 0, len(current.path)+1)
			path = append(path, current.path...)
			path = append(path, rel)

			related = append(related, RelatedEntity{
				Entity:           target,
				Depth:            current.depth + 1,
				Path:             path,
				RelationshipType: rel.Type,
			})

			if current.depth+1 < maxDepth {
				queue = append(queue, frontierEntry{
					entity: target,
					depth:  current.depth + 1,
					path:   path,
				})
			}
		}
	}

	return related
}
