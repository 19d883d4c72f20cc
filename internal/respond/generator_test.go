package respond

import (
	"context"
	"testing"

	"github.com/krkavinraj/Bhindi-mem/internal/executor"
	"github.com/krkavinraj/Bhindi-mem/internal/extract"
	"github.com/krkavinraj/Bhindi-mem/internal/graph"
	"github.com/krkavinraj/Bhindi-mem/internal/retriever"
	"github.com/stretchr/testify/assert"
)

func TestFallback_Create(t *testing.T) {
	reply := Fallback(executor.Result{
		Intent:                 extract.IntentCreate,
		Success:                true,
		EntitiesProcessed:      2,
		RelationshipsProcessed: 1,
	})
	assert.Equal(t, "I've added 2 new entities and 1 relationships to your knowledge graph!", reply)
}

func TestFallback_QueryWithResults(t *testing.T) {
	reply := Fallback(executor.Result{
		Intent:  extract.IntentQuery,
		Success: true,
		Data:    []interface{}{1, 2, 3},
	})
	assert.Equal(t, "I found 3 results for your query.", reply)
}

func TestFallback_QueryWithStatistics(t *testing.T) {
	reply := Fallback(executor.Result{
		Intent:  extract.IntentRead,
		Success: true,
		Data:    &graph.Statistics{Nodes: 12, Relationships: 7},
	})
	assert.Equal(t, "Your knowledge graph has 12 nodes and 7 relationships.", reply)
}

func TestFallback_UpdateAndDelete(t *testing.T) {
	assert.Equal(t, "I've updated 3 entities in your knowledge graph.", Fallback(executor.Result{
		Intent: extract.IntentUpdate, Success: true, EntitiesProcessed: 3,
	}))
	assert.Equal(t, "I've removed 1 entities from your knowledge graph.", Fallback(executor.Result{
		Intent: extract.IntentDelete, Success: true, EntitiesProcessed: 1,
	}))
}

func TestFallback_Failure(t *testing.T) {
	reply := Fallback(executor.Result{
		Intent:  extract.IntentCreate,
		Success: false,
		Message: "backend unavailable",
	})
	assert.Equal(t, "I had trouble processing that. backend unavailable", reply)
}

func TestFallback_UnknownIntent(t *testing.T) {
	reply := Fallback(executor.Result{Intent: "SOMETHING", Success: true})
	assert.Equal(t, "I've processed your request successfully!", reply)
}

func TestGenerate_WithoutClientUsesFallback(t *testing.T) {
	gen := NewGenerator("", "", "gpt-4o", 2000)

	reply := gen.Generate(context.Background(), "I like jazz", executor.Result{
		Intent: extract.IntentCreate, Success: true, EntitiesProcessed: 1,
	}, nil, nil)

	assert.Equal(t, "I've added 1 new entities and 0 relationships to your knowledge graph!", reply)
}

func TestGraphSummary_WithoutClientUsesFallback(t *testing.T) {
	gen := NewGenerator("", "", "gpt-4o", 2000)

	summary := gen.GraphSummary(context.Background(), &graph.Statistics{Nodes: 5, Relationships: 2})
	assert.Equal(t, "Your knowledge graph contains 5 entities and 2 connections!", summary)
}

func TestSuggestions_EmptyProfile(t *testing.T) {
	suggestions := Suggestions(nil)

	assert.Len(t, suggestions, 5)
	assert.Equal(t, "Tell me about your skills or hobbies", suggestions[0])
}

func TestSuggestions_FilledProfileSkipsCoveredAreas(t *testing.T) {
	bundle := &retriever.Context{
		UserProfile: &retriever.UserProfile{
			Skills: []graph.RelationshipView{{Type: graph.RelSkilledIn, TargetName: "Guitar"}},
			Goals:  []graph.RelationshipView{{Type: graph.RelWantsTo, TargetName: "Learn Piano"}},
		},
	}

	suggestions := Suggestions(bundle)

	assert.NotContains(t, suggestions, "Tell me about your skills or hobbies")
	assert.NotContains(t, suggestions, "What are your current goals or aspirations?")
	assert.Contains(t, suggestions, "What do you like or dislike?")
	assert.LessOrEqual(t, len(suggestions), 5)
}

func TestBuildResponsePrompt(t *testing.T) {
	extraction := &extract.Extraction{
		Entities: []extract.Entity{
			{Name: "User", Type: graph.TypePerson},
			{Name: "Guitar", Type: graph.TypeSkill},
		},
		Relationships: []extract.Relationship{
			{From: "User", To: "Guitar", Type: "SKILLED_IN"},
		},
	}

	prompt := buildResponsePrompt("I know guitar", executor.Result{
		Intent: extract.IntentCreate, Success: true, EntitiesProcessed: 2, RelationshipsProcessed: 1,
	}, nil, extraction)

	assert.Contains(t, prompt, `User said: "I know guitar"`)
	assert.Contains(t, prompt, "Entities mentioned: Guitar")
	assert.NotContains(t, prompt, "Entities mentioned: User")
	assert.Contains(t, prompt, "Relationships: User SKILLED_IN Guitar")
}

func TestFormatData(t *testing.T) {
	assert.Equal(t, "3 nodes, 1 relationships", formatData(&graph.Statistics{Nodes: 3, Relationships: 1}))
	assert.Equal(t, "No results found", formatData([]interface{}{}))
	assert.Equal(t, "2 results found", formatData([]interface{}{1, 2}))
}
