package engine

import "github.com/tatianab/german-bridge/internal/models"

// Delta scores one player's round. Making the bid exactly earns 10 plus the
// tricks squared. Missing it costs the difference squared, or cubed with its
// sign kept under the cubed formula, so over-tricking there gains points.
func Delta(bid, actual int, formula models.Formula) int {
	diff := actual - bid
	if diff == 0 {
		return 10 + actual*actual
	}
	if formula == models.Cubed {
		return -(diff * diff * diff)
	}
	return -(diff * diff)
}

// ApplyRound adds every player's delta to totals and returns the deltas.
// Delta cannot fail, so either all totals move or none are touched by the caller.
func ApplyRound(totals []int, round CompletedRound, formula models.Formula) []int {
	deltas := make([]int, len(totals))
	for i := range totals {
		deltas[i] = Delta(round.Bids[i], round.Actual[i], formula)
	}
	for i, d := range deltas {
		totals[i] += d
	}
	return deltas
}
