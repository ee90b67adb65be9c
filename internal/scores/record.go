package scores

// DefaultCategory is assigned to a block when no category label can be
// resolved from the rows above its header.
const DefaultCategory = "General"

// CandidateRecord is one contestant reconstructed from the sheet grid.
// Names come straight from header cells and are not guaranteed unique.
type CandidateRecord struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Scores    []float64 `json:"scores"`
	Aggregate float64   `json:"aggregate"`
}

// Mean returns the arithmetic mean of the collected scores, 0 when none
// were collected. Aggregate is always recomputed from Scores, never stored
// independently.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
