package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tatianab/german-bridge/internal/models"
)

func TestDelta(t *testing.T) {
	cases := []struct {
		bid, actual int
		formula     models.Formula
		want        int
	}{
		{2, 2, models.Squared, 14},
		{0, 0, models.Squared, 10},
		{2, 4, models.Squared, -4},
		{3, 1, models.Squared, -4},
		{2, 2, models.Cubed, 14},
		{2, 4, models.Cubed, -8},
		{4, 2, models.Cubed, 8},
		{0, 3, models.Cubed, -27},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Delta(tc.bid, tc.actual, tc.formula),
			"bid=%d actual=%d formula=%s", tc.bid, tc.actual, tc.formula)
	}
}

func TestApplyRoundAllMade(t *testing.T) {
	totals := []int{0, 0, 0, 0}
	round := CompletedRound{Bids: []int{1, 0, 2, 1}, Actual: []int{1, 0, 2, 1}}
	deltas := ApplyRound(totals, round, models.Squared)
	assert.Equal(t, []int{11, 10, 14, 11}, deltas)
	assert.Equal(t, []int{11, 10, 14, 11}, totals)
}

func TestApplyRoundAccumulates(t *testing.T) {
	totals := []int{5, -3}
	round := CompletedRound{Bids: []int{1, 1}, Actual: []int{0, 2}}
	ApplyRound(totals, round, models.Squared)
	assert.Equal(t, []int{4, -4}, totals)
}
