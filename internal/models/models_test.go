package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleSession() Session {
	return Session{
		ID: "c0ffee",
		Players: []Player{
			{Name: "Ann", Index: 0},
			{Name: "Ben", Index: 1},
			{Name: "Cat", Index: 2},
		},
		TurnOrder: []int{2, 0, 1},
		Dealer:    2,
		Totals:    []int{11, -4, 0},
		History:   []string{"Ann: bid 1 won 1 | Ben: bid 0 won 2 | Cat: bid 1 won 0"},
		Formula:   Cubed,
		Phase:     PhaseBidding,
		Round: Round{
			Number:    5,
			Size:      3,
			Direction: Falling,
			Trump:     Hearts,
			Bids:      []*int{Int(0), nil, Int(2)},
			Actual:    []*int{nil, nil, nil},
		},
		CurrentBidder: 2,
		PendingBid:    Int(1),
		LastDeltas:    []int{11, -4, -1},
	}
}

func TestSnapshotYAMLRoundTrip(t *testing.T) {
	s := sampleSession()

	data, err := yaml.Marshal(s.ToSnapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, yaml.Unmarshal(data, &snap))

	got, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestFromSnapshotDefaults(t *testing.T) {
	// Only the fields the first version of the scorer wrote.
	doc := `
players: [Ann, Ben]
scores: [3, 4]
history: []
current_round: 2
current_tricks: 2
trump_suit: "♠"
bids: [1, null]
actual_tricks: [null, null]
current_bidder: 1
`
	var snap Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(doc), &snap))

	s, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, PhaseSetup, s.Phase, "missing phase means setup")
	assert.Equal(t, Squared, s.Formula)

	snap.Phase = "bidding"
	s, err = FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, PhaseBidding, s.Phase)
	assert.Equal(t, Rising, s.Round.Direction)
	assert.Equal(t, []int{3, 4}, s.Totals)
	assert.Equal(t, Spades, s.Round.Trump)
	require.NotNil(t, s.Round.Bids[0])
	assert.Equal(t, 1, *s.Round.Bids[0])
	assert.Nil(t, s.Round.Bids[1])
	assert.Equal(t, []int{0, 1}, s.TurnOrder, "turn order starts at the dealer")
}

func TestFromSnapshotLegacyDirection(t *testing.T) {
	falling := false
	snap := Snapshot{Phase: "bidding", Players: []string{"a", "b"}, CurrentTricks: 4, IsIncreasing: &falling}
	s, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, Falling, s.Round.Direction)

	snap.Direction = "rising"
	s, err = FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, Rising, s.Round.Direction)
}

func TestFromSnapshotRejectsCorruptData(t *testing.T) {
	base := func() Snapshot {
		return Snapshot{Phase: "results", Players: []string{"a", "b"}, CurrentTricks: 2, Bids: []*int{Int(1), Int(0)}}
	}
	cases := map[string]func(*Snapshot){
		"too few players":   func(s *Snapshot) { s.Players = []string{"a"} },
		"zero round size":   func(s *Snapshot) { s.CurrentTricks = 0 },
		"scores length":     func(s *Snapshot) { s.Scores = []int{1, 2, 3} },
		"bids length":       func(s *Snapshot) { s.Bids = []*int{Int(1)} },
		"bid above size":    func(s *Snapshot) { s.Bids = []*int{Int(3), nil} },
		"negative actual":   func(s *Snapshot) { s.ActualTricks = []*int{Int(-1), nil} },
		"dealer range":      func(s *Snapshot) { d := 5; s.Dealer = &d },
		"bad turn order":    func(s *Snapshot) { s.TurnOrder = []int{1, 1} },
		"unknown formula":   func(s *Snapshot) { s.Formula = "quartic" },
		"bidder past order": func(s *Snapshot) { s.CurrentBidder = 3 },
		"too many players": func(s *Snapshot) {
			s.Players = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
			s.Bids = nil
		},
		"round above max":       func(s *Snapshot) { s.CurrentTricks = 27 },
		"results without bids":  func(s *Snapshot) { s.Bids = nil },
		"playing missing a bid": func(s *Snapshot) { s.Phase = "playing"; s.Bids = []*int{Int(1), nil} },
		"bidding with all bids in": func(s *Snapshot) {
			s.Phase = "bidding"
			s.CurrentBidder = 2
		},
		"bid ahead of bidder": func(s *Snapshot) {
			s.Phase = "bidding"
			s.CurrentBidder = 1
			s.Bids = []*int{nil, Int(1)}
		},
		"scores without results": func(s *Snapshot) { s.Phase = "scores" },
		"scores off total": func(s *Snapshot) {
			s.Phase = "scores"
			s.ActualTricks = []*int{Int(1), Int(0)}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			snap := base()
			mutate(&snap)
			_, err := FromSnapshot(snap)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}

	_, err := FromSnapshot(base())
	assert.NoError(t, err)

	scores := base()
	scores.Phase = "scores"
	scores.ActualTricks = []*int{Int(2), Int(0)}
	_, err = FromSnapshot(scores)
	assert.NoError(t, err)

	bidding := base()
	bidding.Phase = "bidding"
	bidding.CurrentBidder = 1
	bidding.Bids = []*int{Int(1), nil}
	_, err = FromSnapshot(bidding)
	assert.NoError(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleSession()
	c := s.Clone()

	*c.Round.Bids[0] = 3
	c.Totals[0] = 100
	c.TurnOrder[0] = 1
	*c.PendingBid = 0
	c.History[0] = "changed"

	assert.Equal(t, 0, *s.Round.Bids[0])
	assert.Equal(t, 11, s.Totals[0])
	assert.Equal(t, 2, s.TurnOrder[0])
	assert.Equal(t, 1, *s.PendingBid)
	assert.NotEqual(t, "changed", s.History[0])
}

func TestSessionHelpers(t *testing.T) {
	s := sampleSession()
	assert.Equal(t, 3, s.PlayerCount())
	assert.Equal(t, 1, s.CurrentBidderIndex())
	assert.Equal(t, 0, s.Leader())

	s.Totals = []int{5, 5, 2}
	assert.Equal(t, 0, s.Leader(), "ties go to the lower seat")

	s.Phase = PhaseResults
	assert.Equal(t, -1, s.CurrentBidderIndex())
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, PhaseScores, ParsePhase("scores"))
	assert.Equal(t, PhaseSetup, ParsePhase("bogus"))
	assert.Equal(t, "playing", PhasePlaying.String())
	assert.Equal(t, Falling, ParseDirection("falling"))
	assert.Equal(t, Rising, ParseDirection(""))

	f, err := ParseFormula("cubed")
	require.NoError(t, err)
	assert.Equal(t, Cubed, f)
	_, err = ParseFormula("linear")
	assert.Error(t, err)
}
