// Package ranking selects a bounded set of trending instruments from one
// step's cross-section.
package ranking

import (
	"sort"

	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// Ranker picks up to MaxPositions minus the held count of trending instruments.
//
// Ordering is a two-bucket partition: every trending candidate compares equal
// to every other trending candidate and ranks ahead of the non-trending ones.
// Ties keep universe order. Signal magnitude does not affect the order.
type Ranker struct {
	maxPositions int
}

func NewRanker(maxPositions int) (*Ranker, error) {
	if maxPositions < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "max positions must be at least 1, got %d", maxPositions)
	}

	return &Ranker{maxPositions: maxPositions}, nil
}

func (r *Ranker) MaxPositions() int {
	return r.maxPositions
}

// Slots returns how many new positions may be opened.
func (r *Ranker) Slots(held int) int {
	return max(0, r.maxPositions-held)
}

// Select returns the selected candidates in rank order. candidates must be in
// universe order and are not modified.
func (r *Ranker) Select(candidates []types.RankedCandidate, held int) []types.Selection {
	slots := r.Slots(held)
	if slots == 0 {
		return nil
	}

	pool := make([]types.RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Ready && candidate.Eligible {
			pool = append(pool, candidate)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return bucket(pool[i]) < bucket(pool[j])
	})

	selections := make([]types.Selection, 0, min(slots, len(pool)))

	for _, candidate := range pool {
		if len(selections) == slots || !candidate.Direction.IsTrending() {
			break
		}

		selections = append(selections, types.Selection{
			Symbol:    candidate.Symbol,
			Direction: candidate.Direction,
			Rank:      len(selections) + 1,
		})
	}

	return selections
}

// bucket is 0 for trending candidates and 1 for the rest.
func bucket(candidate types.RankedCandidate) int {
	if candidate.Direction.IsTrending() {
		return 0
	}

	return 1
}
