package model

import "math"

// Match pairs a lost report with a found report that looks similar.
// Matches are computed on demand and never stored.
type Match struct {
	Lost  Item    `json:"lost"`
	Found Item    `json:"found"`
	Score float64 `json:"score"`
}

// Percent returns the score as a whole percentage for display.
func (m Match) Percent() int {
	return int(math.Round(m.Score * 100))
}
