// Package respond turns execution outcomes into natural-language replies,
// using an OpenAI-compatible chat model with a deterministic template
// fallback when the model is unavailable or returns nothing.
package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/krkavinraj/Bhindi-mem/internal/executor"
	"github.com/krkavinraj/Bhindi-mem/internal/extract"
	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/internal/retriever"
	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const responseSystemPrompt = `You are a helpful AI assistant that manages a personal knowledge graph.
Your role is to provide natural, conversational responses about knowledge graph operations.

Guidelines for responses:
1. Be conversational and friendly
2. Acknowledge what the user shared or asked
3. Summarize what was added/found/updated/deleted in the knowledge graph
4. Be specific about entities and relationships when relevant
5. Ask follow-up questions when appropriate
6. Keep responses concise but informative
7. Use a warm, personal tone
8. If errors occurred, explain them helpfully

Always be helpful and encouraging about building their personal knowledge graph.`

// Generator produces conversational replies over execution results
type Generator struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewGenerator creates a response generator. An empty API key yields a
// generator that always answers with the template fallback.
func NewGenerator(apiKey, baseURL, model string, maxTokens int) *Generator {
	gen := &Generator{
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.Get(),
	}
	if gen.maxTokens > 500 {
		gen.maxTokens = 500
	}

	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		gen.client = openai.NewClientWithConfig(cfg)
	}

	return gen
}

// Generate builds a natural-language reply for one turn. Any model failure
// or empty output falls back to the deterministic template response.
func (g *Generator) Generate(ctx context.Context, userInput string, result executor.Result, bundle *retriever.Context, extraction *extract.Extraction) string {
	if g.client == nil {
		return Fallback(result)
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: responseSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildResponsePrompt(userInput, result, bundle, extraction)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		g.logger.Error("Response generation failed", zap.Error(err))
		return Fallback(result)
	}

	if len(resp.Choices) == 0 {
		return Fallback(result)
	}
	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return Fallback(result)
	}
	return reply
}

// Fallback is the deterministic local response covering every intent and
// the failure case.
func Fallback(result executor.Result) string {
	if !result.Success {
		return strings.TrimSpace(fmt.Sprintf("I had trouble processing that. %s", result.Message))
	}

	switch result.Intent {
	case extract.IntentCreate:
		return fmt.Sprintf("I've added %d new entities and %d relationships to your knowledge graph!",
			result.EntitiesProcessed, result.RelationshipsProcessed)
	case extract.IntentRead, extract.IntentQuery:
		switch data := result.Data.(type) {
		case []interface{}:
			return fmt.Sprintf("I found %d results for your query.", len(data))
		case *graph.Statistics:
			return fmt.Sprintf("Your knowledge graph has %d nodes and %d relationships.",
				data.Nodes, data.Relationships)
		default:
			return "I found some information for you!"
		}
	case extract.IntentUpdate:
		return fmt.Sprintf("I've updated %d entities in your knowledge graph.", result.EntitiesProcessed)
	case extract.IntentDelete:
		return fmt.Sprintf("I've removed %d entities from your knowledge graph.", result.EntitiesProcessed)
	}

	return "I've processed your request successfully!"
}

// GraphSummary produces a short friendly summary of the graph state
func (g *Generator) GraphSummary(ctx context.Context, stats *graph.Statistics) string {
	fallback := fmt.Sprintf("Your knowledge graph contains %d entities and %d connections!",
		stats.Nodes, stats.Relationships)
	if g.client == nil {
		return fallback
	}

	userPrompt := fmt.Sprintf(`Graph Statistics:
- Total nodes: %d
- Total relationships: %d
- Node types: %v
- Relationship types: %v

Create a friendly summary of this knowledge graph:`,
		stats.Nodes, stats.Relationships, stats.NodeTypes, stats.RelationshipTypes)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are summarizing a personal knowledge graph. " +
					"Create a brief, friendly summary of what's in the graph. " +
					"Focus on the most interesting aspects and encourage the user.",
			},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		g.logger.Error("Graph summary generation failed", zap.Error(err))
		return fallback
	}
	if len(resp.Choices) == 0 {
		return fallback
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return fallback
	}
	return summary
}

// Suggestions proposes conversation starters based on what the user's
// profile is still missing, capped at five.
func Suggestions(bundle *retriever.Context) []string {
	suggestions := []string{}

	profile := (*retriever.UserProfile)(nil)
	if bundle != nil {
		profile = bundle.UserProfile
	}

	if profile == nil || len(profile.Skills) == 0 {
		suggestions = append(suggestions, "Tell me about your skills or hobbies")
	}
	if profile == nil || len(profile.Goals) == 0 {
		suggestions = append(suggestions, "What are your current goals or aspirations?")
	}
	if profile == nil || len(profile.Preferences) == 0 {
		suggestions = append(suggestions, "What do you like or dislike?")
	}
	if profile == nil || len(profile.Organizations) == 0 {
		suggestions = append(suggestions, "Where do you work or study?")
	}

	suggestions = append(suggestions,
		"Ask me about your knowledge graph",
		"Tell me about a recent experience",
		"What would you like to learn?",
	)

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

// buildResponsePrompt assembles the model prompt from the turn's inputs
func buildResponsePrompt(userInput string, result executor.Result, bundle *retriever.Context, extraction *extract.Extraction) string {
	parts := []string{
		fmt.Sprintf("User said: %q", userInput),
		fmt.Sprintf("\nOperation performed: %s", result.Intent),
		fmt.Sprintf("Success: %t", result.Success),
		fmt.Sprintf("Message: %s", result.Message),
	}

	if result.EntitiesProcessed > 0 {
		parts = append(parts, fmt.Sprintf("Entities processed: %d", result.EntitiesProcessed))
	}
	if result.RelationshipsProcessed > 0 {
		parts = append(parts, fmt.Sprintf("Relationships processed: %d", result.RelationshipsProcessed))
	}
	if result.Data != nil {
		parts = append(parts, fmt.Sprintf("Data returned: %s", formatData(result.Data)))
	}

	if extraction != nil {
		names := []string{}
		for _, entity := range extraction.Entities {
			if !strings.EqualFold(entity.Name, "user") {
				names = append(names, entity.Name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, fmt.Sprintf("Entities mentioned: %s", strings.Join(names, ", ")))
		}

		rels := []string{}
		for _, rel := range extraction.Relationships {
			rels = append(rels, fmt.Sprintf("%s %s %s", rel.From, rel.Type, rel.To))
		}
		if len(rels) > 0 {
			parts = append(parts, fmt.Sprintf("Relationships: %s", strings.Join(rels, ", ")))
		}
	}

	if bundle != nil && bundle.UserProfile != nil {
		if n := len(bundle.UserProfile.Skills); n > 0 {
			parts = append(parts, fmt.Sprintf("User's known skills: %d skills", n))
		}
		if n := len(bundle.UserProfile.Preferences); n > 0 {
			parts = append(parts, fmt.Sprintf("User's preferences: %d preferences", n))
		}
	}

	parts = append(parts, "\nGenerate a natural, conversational response to the user:")
	return strings.Join(parts, "\n")
}

// formatData renders result data compactly for the prompt
func formatData(data interface{}) string {
	switch val := data.(type) {
	case *graph.Statistics:
		return fmt.Sprintf("%d nodes, %d relationships", val.Nodes, val.Relationships)
	case []interface{}:
		switch len(val) {
		case 0:
			return "No results found"
		case 1:
			return truncate(fmt.Sprintf("1 result: %v", val[0]), 100)
		default:
			return fmt.Sprintf("%d results found", len(val))
		}
	default:
		return truncate(fmt.Sprint(val), 200)
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
