package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/german-bridge/internal/models"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func mustAdvance(t *testing.T, s models.Session, cmd Command) models.Session {
	t.Helper()
	next, err := Advance(s, cmd, testRand())
	require.NoError(t, err, "command %s", cmd.Name())
	return next
}

func placeBid(t *testing.T, s models.Session, v int) models.Session {
	t.Helper()
	s = mustAdvance(t, s, SelectBid{Value: v})
	return mustAdvance(t, s, ConfirmBid{})
}

// startedSession returns a four player session in round 1 bidding.
func startedSession(t *testing.T) models.Session {
	t.Helper()
	return mustAdvance(t, models.NewSession(models.Squared), StartSession{Names: []string{"Ann", "Ben", "Cat", "Dan"}})
}

func TestStartSession(t *testing.T) {
	s := startedSession(t)
	assert.Equal(t, models.PhaseBidding, s.Phase)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 1, s.Round.Number)
	assert.Equal(t, 1, s.Round.Size)
	assert.Equal(t, models.Rising, s.Round.Direction)
	assert.Contains(t, models.Suits, s.Round.Trump)
	assert.Equal(t, []int{0, 0, 0, 0}, s.Totals)
	assert.Equal(t, TurnOrderFrom(s.Dealer, 4), s.TurnOrder)
	assert.Equal(t, s.Dealer, s.CurrentBidderIndex())
	for _, b := range s.Round.Bids {
		assert.Nil(t, b)
	}
}

func TestAdvanceWithoutRand(t *testing.T) {
	s, err := Advance(models.NewSession(models.Squared), StartSession{Names: []string{"Ann", "Ben"}}, nil)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, s.Dealer)
	assert.Contains(t, models.Suits, s.Round.Trump)
}

func TestStartSessionValidation(t *testing.T) {
	fresh := models.NewSession(models.Squared)

	_, err := Advance(fresh, StartSession{Names: []string{"solo"}}, testRand())
	assert.ErrorIs(t, err, ErrPlayerCount)
	_, err = Advance(fresh, StartSession{Names: make([]string, 9)}, testRand())
	assert.ErrorIs(t, err, ErrPlayerCount)

	s := mustAdvance(t, fresh, StartSession{Names: []string{" ", "Bea"}})
	assert.Equal(t, "Player 1", s.Players[0].Name)
	assert.Equal(t, "Bea", s.Players[1].Name)

	_, err = Advance(s, StartSession{Names: []string{"a", "b"}}, testRand())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestRejectedCommandLeavesSessionUnchanged(t *testing.T) {
	s := startedSession(t)
	s = placeBid(t, s, 0)
	before := s.Clone()

	cases := []Command{
		SelectBid{Value: 2},
		SelectBid{Value: -1},
		FinalizeResults{},
		AdjustActual{Player: 0, Delta: 1},
		AdvanceRound{},
		StartSession{Names: []string{"x", "y"}},
	}
	for _, cmd := range cases {
		next, err := Advance(s, cmd, testRand())
		assert.Error(t, err, cmd.Name())
		assert.Equal(t, before, next, cmd.Name())
		assert.Equal(t, before, s, cmd.Name())
	}
}

func TestConfirmBidNeedsSelection(t *testing.T) {
	s := startedSession(t)
	_, err := Advance(s, ConfirmBid{}, testRand())
	assert.ErrorIs(t, err, ErrNoPendingBid)
}

func TestLastBidderCannotMatchSize(t *testing.T) {
	s := startedSession(t)
	s = placeBid(t, s, 0)
	s = placeBid(t, s, 0)
	s = placeBid(t, s, 0)

	_, err := Advance(s, SelectBid{Value: 1}, testRand())
	assert.ErrorIs(t, err, ErrIllegalLastBid)

	s = placeBid(t, s, 0)
	assert.Equal(t, models.PhasePlaying, s.Phase)
}

func TestFullRound(t *testing.T) {
	s := startedSession(t)
	dealer := s.Dealer
	genBefore := s.Generation
	for i := 0; i < 4; i++ {
		s = placeBid(t, s, 0)
	}
	require.Equal(t, models.PhasePlaying, s.Phase)
	assert.Equal(t, genBefore+1, s.Generation)

	s = mustAdvance(t, s, EndPlaying{Generation: s.Generation})
	require.Equal(t, models.PhaseResults, s.Phase)
	for _, a := range s.Round.Actual {
		require.NotNil(t, a)
		assert.Equal(t, 0, *a)
	}

	_, err := Advance(s, FinalizeResults{}, testRand())
	var totalErr *TotalError
	require.ErrorAs(t, err, &totalErr)
	assert.Equal(t, 0, totalErr.Sum)
	assert.Equal(t, 1, totalErr.Size)

	s = mustAdvance(t, s, AdjustActual{Player: 2, Delta: 1})
	s = mustAdvance(t, s, FinalizeResults{})
	assert.Equal(t, models.PhaseScores, s.Phase)
	assert.Equal(t, []int{10, 10, -1, 10}, s.Totals)
	assert.Equal(t, []int{10, 10, -1, 10}, s.LastDeltas)
	require.Len(t, s.History, 1)
	assert.Equal(t, "Ann: bid 0 won 0 | Ben: bid 0 won 0 | Cat: bid 0 won 1 | Dan: bid 0 won 0", s.History[0])

	s = mustAdvance(t, s, AdvanceRound{})
	assert.Equal(t, models.PhaseBidding, s.Phase)
	assert.Equal(t, 2, s.Round.Number)
	assert.Equal(t, 2, s.Round.Size)
	assert.Equal(t, (dealer+1)%4, s.Dealer)
	assert.Equal(t, s.Dealer, s.TurnOrder[0])
	assert.Equal(t, 0, s.CurrentBidder)
	assert.Nil(t, s.PendingBid)
	for i := range s.Round.Bids {
		assert.Nil(t, s.Round.Bids[i])
		assert.Nil(t, s.Round.Actual[i])
	}
}

func TestEndPlayingIgnoresStaleGeneration(t *testing.T) {
	s := startedSession(t)
	for i := 0; i < 4; i++ {
		s = placeBid(t, s, 0)
	}
	stale := s.Generation

	s = mustAdvance(t, s, ResetSession{})
	assert.Equal(t, models.PhaseSetup, s.Phase)
	assert.Empty(t, s.Players)

	s = mustAdvance(t, s, EndPlaying{Generation: stale})
	assert.Equal(t, models.PhaseSetup, s.Phase)

	// A new game reaching playing again is not advanced by the old timer either.
	s = startedSession(t)
	s.Generation = stale + 1
	for i := 0; i < 4; i++ {
		s = placeBid(t, s, 0)
	}
	s = mustAdvance(t, s, EndPlaying{Generation: stale})
	assert.Equal(t, models.PhasePlaying, s.Phase)
}

func TestSetScoringFormula(t *testing.T) {
	s := mustAdvance(t, models.NewSession(models.Squared), SetScoringFormula{Formula: models.Cubed})
	assert.Equal(t, models.Cubed, s.Formula)

	s = mustAdvance(t, s, StartSession{Names: []string{"a", "b"}})
	s = mustAdvance(t, s, SetScoringFormula{Formula: models.Squared})
	s = mustAdvance(t, s, SetScoringFormula{Formula: models.Cubed})

	s = placeBid(t, s, 1)
	s = placeBid(t, s, 1)
	s = mustAdvance(t, s, EndPlaying{Generation: s.Generation})
	s = mustAdvance(t, s, AdjustActual{Player: 0, Delta: -1})
	s = mustAdvance(t, s, FinalizeResults{})

	// Player 0 under by one, player 1 made it with one trick.
	assert.Equal(t, []int{1, 11}, s.Totals)

	_, err := Advance(s, SetScoringFormula{Formula: models.Squared}, testRand())
	assert.ErrorIs(t, err, ErrFormulaLocked)
}

func TestUnknownCommand(t *testing.T) {
	_, err := Advance(models.NewSession(models.Squared), nil, testRand())
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
