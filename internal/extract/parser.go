package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `You are an expert knowledge graph entity and relationship extractor.
Your task is to analyze user conversations and extract:
1. Intent (CREATE, READ, UPDATE, DELETE, or QUERY)
2. Entities (nodes in the knowledge graph)
3. Relationships (edges between entities)

Entity Types Available:
- Person: People and their attributes
- Concept: Abstract ideas, topics, subjects
- Event: Occurrences, experiences, meetings
- Preference: Likes, dislikes, opinions
- Location: Places, geographical entities
- Organization: Companies, institutions, groups
- Skill: Abilities, competencies, talents
- Goal: Objectives, aspirations, targets
- Memory: Specific memories, experiences

Relationship Types Available:
KNOWS, LIKES, DISLIKES, WORKS_AT, LIVES_IN, ATTENDED, SKILLED_IN,
WANTS_TO, REMEMBERS, RELATED_TO, PART_OF, CREATED, LEARNED

Return your analysis as a JSON object with this exact structure:
{
    "intent": "CREATE|READ|UPDATE|DELETE|QUERY",
    "entities": [
        {
            "name": "entity_name",
            "type": "entity_type",
            "properties": {"key": "value"},
            "confidence": 0.95
        }
    ],
    "relationships": [
        {
            "from_entity": "entity1_name",
            "to_entity": "entity2_name",
            "type": "relationship_type",
            "properties": {"key": "value"},
            "confidence": 0.90
        }
    ],
    "confidence": 0.85
}

Guidelines:
- Always include a "User" entity for the person speaking
- Extract specific, meaningful entities (avoid generic terms)
- Infer reasonable properties from context
- Use high confidence (0.8+) for explicit information
- Use medium confidence (0.5-0.8) for inferred information
- Use CREATE intent for new information sharing
- Use QUERY intent for questions about existing information
- Use UPDATE intent for modifying existing information
- Use DELETE intent for removing information`

// Parser turns free-form user text into a structured Extraction using an
// OpenAI-compatible chat model in JSON mode. Without a client it degrades
// to the rule-based classifier and extractor.
type Parser struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewParser creates a parser. An empty API key yields a parser without a
// model client that relies on the rule-based fallback.
func NewParser(apiKey, baseURL, model string, maxTokens int, temperature float64) *Parser {
	parser := &Parser{
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		logger:      logger.Get(),
	}

	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		parser.client = openai.NewClientWithConfig(cfg)
	}

	return parser
}

// Parse extracts intent, entities and relationships from one user
// statement. It never fails: any error yields the well-formed unknown
// extraction, and a missing model client yields the rule-based result.
func (p *Parser) Parse(ctx context.Context, userInput, priorContext string) Extraction {
	if p.client == nil {
		return p.parseRuleBased(userInput)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(userInput, priorContext)},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		p.logger.Error("Extraction request failed", zap.Error(err))
		return unknownExtraction(err.Error())
	}

	if len(resp.Choices) == 0 {
		p.logger.Error("Extraction response had no choices")
		return unknownExtraction("no choices in model response")
	}

	raw := resp.Choices[0].Message.Content
	extraction, err := decodeExtraction(raw)
	if err != nil {
		p.logger.Error("Failed to decode extraction", zap.Error(err), zap.String("raw", raw))
		return unknownExtraction(raw)
	}

	p.logger.Debug("Parsed statement",
		zap.String("intent", extraction.Intent),
		zap.Int("entities", len(extraction.Entities)),
		zap.Int("relationships", len(extraction.Relationships)),
	)
	return extraction
}

// parseRuleBased combines the keyword intent classifier with the pattern
// entity extractor when no model is available.
func (p *Parser) parseRuleBased(userInput string) Extraction {
	entities := RuleBasedEntities(userInput)
	return Extraction{
		Intent:        ClassifyIntent(userInput),
		Entities:      entities,
		Relationships: []Relationship{},
		Confidence:    0.5,
		RawResponse:   "rule-based",
	}
}

func buildUserPrompt(userInput, priorContext string) string {
	prompt := fmt.Sprintf("User Input: %s\n\n", userInput)
	if priorContext != "" {
		prompt += fmt.Sprintf("Previous Context: %s\n\n", priorContext)
	}
	prompt += "Please analyze this conversation and extract entities, relationships, and intent as specified."
	return prompt
}

// wire types mirror the JSON contract of the extraction model
type wireExtraction struct {
	Intent        string             `json:"intent"`
	Entities      []wireEntity       `json:"entities"`
	Relationships []wireRelationship `json:"relationships"`
	Confidence    float64            `json:"confidence"`
}

type wireEntity struct {
	Name       string                 `json:"name"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Confidence float64                `json:"confidence"`
}

type wireRelationship struct {
	From       string                 `json:"from_entity"`
	To         string                 `json:"to_entity"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Confidence float64                `json:"confidence"`
}

func decodeExtraction(raw string) (Extraction, error) {
	var wire wireExtraction
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	extraction := Extraction{
		Intent:        wire.Intent,
		Entities:      make([]Entity, 0, len(wire.Entities)),
		Relationships: make([]Relationship, 0, len(wire.Relationships)),
		Confidence:    wire.Confidence,
		RawResponse:   raw,
	}
	if extraction.Intent == "" {
		extraction.Intent = IntentUnknown
	}

	for _, ent := range wire.Entities {
		extraction.Entities = append(extraction.Entities, Entity{
			Name:       ent.Name,
			Type:       graph.EntityType(ent.Type),
			Properties: graph.PropertiesFrom(ent.Properties),
			Confidence: ent.Confidence,
		})
	}
	for _, rel := range wire.Relationships {
		extraction.Relationships = append(extraction.Relationships, Relationship{
			From:       rel.From,
			To:         rel.To,
			Type:       rel.Type,
			Properties: graph.PropertiesFrom(rel.Properties),
			Confidence: rel.Confidence,
		})
	}

	return extraction, nil
}
