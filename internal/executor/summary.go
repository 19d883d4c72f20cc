package executor

// Summary aggregates a batch of execution results
type Summary struct {
	TotalOperations             int            `json:"total_operations"`
	SuccessfulOperations        int            `json:"successful_operations"`
	TotalEntitiesProcessed      int            `json:"total_entities_processed"`
	TotalRelationshipsProcessed int            `json:"total_relationships_processed"`
	IntentBreakdown             map[string]int `json:"intent_breakdown"`
	SuccessRate                 float64        `json:"success_rate"`
}

// Summarize is a pure aggregation over prior results. An empty batch yields
// a zero success rate rather than a division fault.
func Summarize(results []Result) Summary {
	summary := Summary{
		TotalOperations: len(results),
		IntentBreakdown: map[string]int{},
	}

	for _, result := range results {
		if result.Success {
			summary.SuccessfulOperations++
		}
		summary.TotalEntitiesProcessed += result.EntitiesProcessed
		summary.TotalRelationshipsProcessed += result.RelationshipsProcessed
		summary.IntentBreakdown[result.Intent]++
	}

	if len(results) > 0 {
		summary.SuccessRate = float64(summary.SuccessfulOperations) / float64(len(results))
	}

	return summary
}
