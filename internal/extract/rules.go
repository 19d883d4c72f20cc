package extract

import (
	"strings"

	"github.com/krkavinraj/Bhindi-mem/internal/graph"
)

// intentKeywords scores each intent by keyword hits
var intentKeywords = map[string][]string{
	IntentCreate: {"tell", "add", "create", "new", "i am", "i like", "i work", "i live", "i want"},
	IntentRead:   {"show", "find", "get", "what", "who", "where", "when", "how", "list"},
	IntentUpdate: {"change", "update", "modify", "edit", "correct", "fix"},
	IntentDelete: {"remove", "delete", "forget", "clear", "stop"},
	IntentQuery:  {"?", "what", "who", "where", "when", "why", "how", "tell me about"},
}

// intentOrder keeps classification deterministic when scores tie
var intentOrder = []string{IntentCreate, IntentRead, IntentUpdate, IntentDelete, IntentQuery}

// ClassifyIntent classifies a statement by keyword scoring. A question mark
// is a strong QUERY signal; statements default to CREATE.
func ClassifyIntent(userInput string) string {
	if strings.Contains(userInput, "?") {
		return IntentQuery
	}

	lowered := strings.ToLower(userInput)

	best := IntentCreate
	bestScore := 0
	for _, intent := range intentOrder {
		score := 0
		for _, keyword := range intentKeywords[intent] {
			if strings.Contains(lowered, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = intent
			bestScore = score
		}
	}

	return best
}

// skillPatterns introduce a skill entity when matched in a statement
var skillPatterns = []string{"i know", "i can", "i'm good at", "skilled in"}

// RuleBasedEntities is the pattern fallback extractor used when no model is
// available. It always includes the speaking "User" entity.
func RuleBasedEntities(text string) []Entity {
	entities := []Entity{
		{
			Name:       "User",
			Type:       graph.TypePerson,
			Properties: graph.Properties{},
			Confidence: 1.0,
		},
	}

	lowered := strings.ToLower(text)
	for _, pattern := range skillPatterns {
		idx := strings.Index(lowered, pattern)
		if idx < 0 {
			continue
		}
		rest := lowered[idx+len(pattern):]
		if dot := strings.Index(rest, "."); dot >= 0 {
			rest = rest[:dot]
		}
		skill := strings.TrimSpace(rest)
		if skill == "" {
			continue
		}
		entities = append(entities, Entity{
			Name:       titleCase(skill),
			Type:       graph.TypeSkill,
			Properties: graph.Properties{"category": graph.String("general")},
			Confidence: 0.7,
		})
	}

	return entities
}

// titleCase capitalizes the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
