package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// minSimilarity is the floor below which semantic matches are discarded
const minSimilarity = 0.3

// Embedder is the optional semantic-search capability. A nil Embedder means
// retrieval runs keyword-only, which is not an error.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticMatch is a node ranked by embedding similarity to the query
type SemanticMatch struct {
	Node       graph.Entity `json:"node"`
	Similarity float64      `json:"similarity"`
	Text       string       `json:"text"`
}

// UserProfile buckets the "User" node's relationships into fixed categories
type UserProfile struct {
	Skills        []graph.RelationshipView `json:"skills"`
	Preferences   []graph.RelationshipView `json:"preferences"`
	Goals         []graph.RelationshipView `json:"goals"`
	Organizations []graph.RelationshipView `json:"organizations"`
	Locations     []graph.RelationshipView `json:"locations"`
	Memories      []graph.RelationshipView `json:"memories"`
}

// Context is the relevance-ranked bundle assembled for one query
type Context struct {
	Query           string                   `json:"query"`
	Entities        []graph.Entity           `json:"entities"`
	Relationships   []graph.RelationshipView `json:"relationships"`
	SemanticMatches []SemanticMatch          `json:"semantic_matches"`
	Statistics      *graph.Statistics        `json:"statistics,omitempty"`
	UserProfile     *UserProfile             `json:"user_profile,omitempty"`
}

// Retriever assembles graph context for free-text queries. All of its
// operations are read-only and side-effect-free.
type Retriever struct {
	store      graph.Store
	embedder   Embedder
	maxResults int
	logger     *zap.Logger
}

// New creates a retriever. embedder may be nil for keyword-only retrieval.
func New(store graph.Store, embedder Embedder, maxResults int) *Retriever {
	if maxResults < 1 {
		maxResults = 5
	}
	return &Retriever{
		store:      store,
		embedder:   embedder,
		maxResults: maxResults,
		logger:     logger.Get(),
	}
}

// RetrieveContext assembles the context bundle for a query: keyword
// matches, semantic matches (when an embedder is available), the user
// profile, and current graph statistics. The passes are independent reads
// and run concurrently; a failing pass degrades to an empty section rather
// than failing the bundle.
func (r *Retriever) RetrieveContext(ctx context.Context, query string) *Context {
	bundle := &Context{
		Query:           query,
		Entities:        []graph.Entity{},
		Relationships:   []graph.RelationshipView{},
		SemanticMatches: []SemanticMatch{},
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		entities, relationships := r.keywordMatches(groupCtx, query)
		bundle.Entities = entities
		bundle.Relationships = relationships
		return nil
	})

	group.Go(func() error {
		bundle.SemanticMatches = r.semanticMatches(groupCtx, query)
		return nil
	})

	group.Go(func() error {
		stats, err := r.store.Statistics(groupCtx)
		if err != nil {
			r.logger.Warn("Failed to fetch statistics for context", zap.Error(err))
			return nil
		}
		bundle.Statistics = stats
		return nil
	})

	group.Go(func() error {
		bundle.UserProfile = r.userProfile(groupCtx)
		return nil
	})

	_ = group.Wait()
	return bundle
}

// keywordMatches searches nodes per keyword, fetches their relationships,
// and deduplicates and truncates both lists.
func (r *Retriever) keywordMatches(ctx context.Context, query string) ([]graph.Entity, []graph.RelationshipView) {
	var entities []graph.Entity
	for _, keyword := range extractKeywords(query) {
		matches, err := r.store.SearchNodesByName(ctx, keyword)
		if err != nil {
			r.logger.Warn("Keyword search failed", zap.String("keyword", keyword), zap.Error(err))
			continue
		}
		if len(matches) > r.maxResults {
			matches = matches[:r.maxResults]
		}
		entities = append(entities, matches...)
	}

	var relationships []graph.RelationshipView
	for _, entity := range entities {
		views, err := r.store.GetNodeRelationships(ctx, entity.Name)
		if err != nil {
			continue
		}
		relationships = append(relationships, views...)
	}

	entities = dedupeEntities(entities)
	if len(entities) > r.maxResults {
		entities = entities[:r.maxResults]
	}
	relationships = dedupeRelationships(relationships)
	if len(relationships) > r.maxResults {
		relationships = relationships[:r.maxResults]
	}

	if entities == nil {
		entities = []graph.Entity{}
	}
	if relationships == nil {
		relationships = []graph.RelationshipView{}
	}
	return entities, relationships
}

// semanticMatches ranks all nodes by dot-product similarity between the
// query embedding and each node's textual summary.
func (r *Retriever) semanticMatches(ctx context.Context, query string) []SemanticMatch {
	if r.embedder == nil {
		return []SemanticMatch{}
	}

	nodes, err := r.store.GetAllNodes(ctx)
	if err != nil || len(nodes) == 0 {
		return []SemanticMatch{}
	}

	texts := make([]string, len(nodes))
	for i, node := range nodes {
		texts[i] = nodeText(node)
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("Failed to embed query", zap.Error(err))
		return []SemanticMatch{}
	}
	nodeVecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		r.logger.Warn("Failed to embed node summaries", zap.Error(err))
		return []SemanticMatch{}
	}

	matches := make([]SemanticMatch, 0, len(nodes))
	for i, vec := range nodeVecs {
		similarity := dotProduct(queryVec, vec)
		if similarity > minSimilarity {
			matches = append(matches, SemanticMatch{
				Node:       nodes[i],
				Similarity: similarity,
				Text:       texts[i],
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if len(matches) > r.maxResults {
		matches = matches[:r.maxResults]
	}
	return matches
}

// userProfile buckets the "User" node's relationships by the connected
// node's type or the relationship type. An absent "User" node yields no
// profile rather than an error.
func (r *Retriever) userProfile(ctx context.Context) *UserProfile {
	if _, err := r.store.GetNode(ctx, "User"); err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			r.logger.Warn("Failed to fetch user node", zap.Error(err))
		}
		return nil
	}

	relationships, err := r.store.GetNodeRelationships(ctx, "User")
	if err != nil {
		r.logger.Warn("Failed to fetch user relationships", zap.Error(err))
		return nil
	}

	profile := &UserProfile{
		Skills:        []graph.RelationshipView{},
		Preferences:   []graph.RelationshipView{},
		Goals:         []graph.RelationshipView{},
		Organizations: []graph.RelationshipView{},
		Locations:     []graph.RelationshipView{},
		Memories:      []graph.RelationshipView{},
	}

	for _, rel := range relationships {
		targetType := strings.ToLower(string(rel.TargetType))
		switch {
		case targetType == "skill" || rel.Type == graph.RelSkilledIn:
			profile.Skills = append(profile.Skills, rel)
		case targetType == "preference" || rel.Type == graph.RelLikes || rel.Type == graph.RelDislikes:
			profile.Preferences = append(profile.Preferences, rel)
		case targetType == "goal" || rel.Type == graph.RelWantsTo:
			profile.Goals = append(profile.Goals, rel)
		case targetType == "organization" || rel.Type == graph.RelWorksAt:
			profile.Organizations = append(profile.Organizations, rel)
		case targetType == "location" || rel.Type == graph.RelLivesIn:
			profile.Locations = append(profile.Locations, rel)
		case targetType == "memory" || rel.Type == graph.RelRemembers:
			profile.Memories = append(profile.Memories, rel)
		}
	}

	return profile
}

// ConversationContext renders the last maxContext items of a conversation
// history as a numbered, newline-joined string. Pure formatting, no storage.
func ConversationContext(history []string, maxContext int) string {
	if len(history) == 0 {
		return ""
	}
	if maxContext < 1 {
		maxContext = 3
	}
	if len(history) > maxContext {
		history = history[len(history)-maxContext:]
	}

	parts := make([]string, 0, len(history))
	for i, item := range history {
		parts = append(parts, fmt.Sprintf("Previous conversation %d: %s", i+1, item))
	}
	return strings.Join(parts, "\n")
}

// nodeText builds the textual summary embedded for a node: its name, type,
// and short string-valued properties joined by " | ".
func nodeText(node graph.Entity) string {
	parts := []string{}
	if node.Name != "" {
		parts = append(parts, node.Name)
	}
	if node.Type != "" {
		parts = append(parts, fmt.Sprintf("Type: %s", node.Type))
	}
	for _, key := range node.Properties.Keys() {
		if str, ok := node.Properties[key].AsString(); ok && len(str) < 100 {
			parts = append(parts, fmt.Sprintf("%s: %s", key, str))
		}
	}
	return strings.Join(parts, " | ")
}

func dedupeEntities(entities []graph.Entity) []graph.Entity {
	seen := map[string]struct{}{}
	unique := make([]graph.Entity, 0, len(entities))
	for _, entity := range entities {
		if entity.Name == "" {
			continue
		}
		if _, dup := seen[entity.Name]; dup {
			continue
		}
		seen[entity.Name] = struct{}{}
		unique = append(unique, entity)
	}
	return unique
}

func dedupeRelationships(relationships []graph.RelationshipView) []graph.RelationshipView {
	seen := map[string]struct{}{}
	unique := make([]graph.RelationshipView, 0, len(relationships))
	for _, rel := range relationships {
		key := fmt.Sprintf("%s|%s|%s", rel.Type, rel.TargetName, rel.Direction)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rel)
	}
	return unique
}

func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
