package usecase

import (
	"math"

	"github.com/pricelens/backend/internal/domain"
)

// Matcher selects, per client row, the best scraped row above the
// similarity threshold.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher. A zero threshold selects the default of
// 0.3; acceptance is strict (score must exceed the threshold).
func NewMatcher(threshold float64) *Matcher {
	if threshold == 0 {
		threshold = 0.3
	}
	return &Matcher{threshold: threshold}
}

// Match computes the full similarity matrix and returns the accepted
// pairs ordered by client index. Each client row appears at most once; a
// scraped row may be selected by several client rows. NaN similarities
// are never selected and exact ties break toward the lowest scraped
// index.
func (m *Matcher) Match(clientVectors, scrapedVectors [][]float32) []domain.Match {
	if len(clientVectors) == 0 || len(scrapedVectors) == 0 {
		return nil
	}

	sims := similarityMatrix(clientVectors, scrapedVectors)

	matches := make([]domain.Match, 0, len(clientVectors))
	for i, row := range sims {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for j, score := range row {
			if math.IsNaN(score) {
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}
		if bestIdx < 0 || bestScore <= m.threshold {
			continue
		}
		matches = append(matches, domain.Match{
			ClientIndex:  i,
			ScrapedIndex: bestIdx,
			Score:        bestScore,
		})
	}
	return matches
}
