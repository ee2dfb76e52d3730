package models

import (
	"errors"
	"fmt"
)

// ErrCorruptSnapshot is returned when a persisted snapshot cannot describe a valid session.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the flat persisted form of a Session. Every field is optional
// on load so older and newer saves both restore.
type Snapshot struct {
	ID            string   `yaml:"id,omitempty"`
	Players       []string `yaml:"players"`
	Scores        []int    `yaml:"scores"`
	History       []string `yaml:"history"`
	CurrentRound  int      `yaml:"current_round"`
	CurrentTricks int      `yaml:"current_tricks"`
	TrumpSuit     string   `yaml:"trump_suit,omitempty"`
	Bids          []*int   `yaml:"bids"`
	ActualTricks  []*int   `yaml:"actual_tricks"`
	Direction     string   `yaml:"direction,omitempty"`
	IsIncreasing  *bool    `yaml:"is_increasing,omitempty"` // written by older saves
	Phase         string   `yaml:"phase,omitempty"`
	CurrentBidder int      `yaml:"current_bidder"`
	SelectedBid   *int     `yaml:"selected_bid,omitempty"`
	Formula       string   `yaml:"scoring_formula,omitempty"`
	Dealer        *int     `yaml:"dealer,omitempty"`
	TurnOrder     []int    `yaml:"turn_order,omitempty"`
	LastDeltas    []int    `yaml:"last_deltas,omitempty"`
}

// ToSnapshot flattens the session for persistence.
func (s Session) ToSnapshot() Snapshot {
	c := s.Clone()
	names := make([]string, len(c.Players))
	for i, p := range c.Players {
		names[i] = p.Name
	}
	dealer := c.Dealer
	return Snapshot{
		ID:            c.ID,
		Players:       names,
		Scores:        c.Totals,
		History:       c.History,
		CurrentRound:  c.Round.Number,
		CurrentTricks: c.Round.Size,
		TrumpSuit:     string(c.Round.Trump),
		Bids:          c.Round.Bids,
		ActualTricks:  c.Round.Actual,
		Direction:     c.Round.Direction.String(),
		Phase:         c.Phase.String(),
		CurrentBidder: c.CurrentBidder,
		SelectedBid:   c.PendingBid,
		Formula:       c.Formula.String(),
		Dealer:        &dealer,
		TurnOrder:     c.TurnOrder,
		LastDeltas:    c.LastDeltas,
	}
}

// FromSnapshot rebuilds a session. Missing fields take their defaults
// (direction rising, formula squared, phase setup). A missing turn order is
// derived from the dealer. Saves whose slots contradict their phase are
// rejected with ErrCorruptSnapshot.
func FromSnapshot(snap Snapshot) (Session, error) {
	formula, err := ParseFormula(snap.Formula)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	s := NewSession(formula)
	s.ID = snap.ID
	s.Phase = ParsePhase(snap.Phase)
	if s.Phase == PhaseSetup {
		return s, nil
	}

	n := len(snap.Players)
	if n < MinPlayers || n > MaxPlayers {
		return Session{}, fmt.Errorf("%w: %d players in phase %s", ErrCorruptSnapshot, n, s.Phase)
	}
	for i, name := range snap.Players {
		s.Players = append(s.Players, Player{Name: name, Index: i})
	}

	s.Totals, err = fitInts(snap.Scores, n, "scores")
	if err != nil {
		return Session{}, err
	}
	s.History = append([]string(nil), snap.History...)

	direction := ParseDirection(snap.Direction)
	if snap.Direction == "" && snap.IsIncreasing != nil && !*snap.IsIncreasing {
		direction = Falling
	}
	if snap.CurrentTricks < 1 || snap.CurrentTricks > MaxCardsPerPlayer(n) {
		return Session{}, fmt.Errorf("%w: round size %d", ErrCorruptSnapshot, snap.CurrentTricks)
	}
	s.Round = Round{
		Number:    snap.CurrentRound,
		Size:      snap.CurrentTricks,
		Direction: direction,
		Trump:     Suit(snap.TrumpSuit),
	}
	if s.Round.Number < 1 {
		s.Round.Number = 1
	}
	if s.Round.Bids, err = fitSlots(snap.Bids, n, s.Round.Size, "bids"); err != nil {
		return Session{}, err
	}
	if s.Round.Actual, err = fitSlots(snap.ActualTricks, n, s.Round.Size, "actual tricks"); err != nil {
		return Session{}, err
	}

	if snap.Dealer != nil {
		if *snap.Dealer < 0 || *snap.Dealer >= n {
			return Session{}, fmt.Errorf("%w: dealer %d out of range", ErrCorruptSnapshot, *snap.Dealer)
		}
		s.Dealer = *snap.Dealer
	}
	if len(snap.TurnOrder) > 0 {
		if !isPermutation(snap.TurnOrder, n) {
			return Session{}, fmt.Errorf("%w: turn order %v", ErrCorruptSnapshot, snap.TurnOrder)
		}
		s.TurnOrder = append([]int(nil), snap.TurnOrder...)
		if snap.Dealer == nil {
			s.Dealer = s.TurnOrder[0]
		}
	} else {
		s.TurnOrder = SeatsFrom(s.Dealer, n)
	}

	if snap.CurrentBidder < 0 || snap.CurrentBidder > n {
		return Session{}, fmt.Errorf("%w: bidder position %d", ErrCorruptSnapshot, snap.CurrentBidder)
	}
	s.CurrentBidder = snap.CurrentBidder
	if snap.SelectedBid != nil {
		s.PendingBid = Int(*snap.SelectedBid)
	}
	if len(snap.LastDeltas) == n {
		s.LastDeltas = append([]int(nil), snap.LastDeltas...)
	}
	if err := checkProgress(s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// checkProgress rejects sessions whose bid and result slots contradict the phase.
func checkProgress(s Session) error {
	r := s.Round
	switch s.Phase {
	case PhaseBidding:
		if s.CurrentBidder >= len(s.TurnOrder) {
			return fmt.Errorf("%w: bidding with every bid in", ErrCorruptSnapshot)
		}
		for pos, p := range s.TurnOrder {
			if (r.Bids[p] != nil) != (pos < s.CurrentBidder) {
				return fmt.Errorf("%w: bid slots do not match bidder position %d", ErrCorruptSnapshot, s.CurrentBidder)
			}
		}
	case PhasePlaying, PhaseResults, PhaseScores:
		for p, b := range r.Bids {
			if b == nil {
				return fmt.Errorf("%w: player %d has no bid in phase %s", ErrCorruptSnapshot, p, s.Phase)
			}
		}
		if s.Phase != PhaseScores {
			return nil
		}
		sum := 0
		for p, a := range r.Actual {
			if a == nil {
				return fmt.Errorf("%w: player %d has no result in phase %s", ErrCorruptSnapshot, p, s.Phase)
			}
			sum += *a
		}
		if sum != r.Size {
			return fmt.Errorf("%w: results add up to %d in a round of %d", ErrCorruptSnapshot, sum, r.Size)
		}
	}
	return nil
}

func fitInts(in []int, n int, field string) ([]int, error) {
	switch len(in) {
	case 0:
		return make([]int, n), nil
	case n:
		return append([]int(nil), in...), nil
	default:
		return nil, fmt.Errorf("%w: %d %s for %d players", ErrCorruptSnapshot, len(in), field, n)
	}
}

func fitSlots(in []*int, n, size int, field string) ([]*int, error) {
	if len(in) == 0 {
		return make([]*int, n), nil
	}
	if len(in) != n {
		return nil, fmt.Errorf("%w: %d %s for %d players", ErrCorruptSnapshot, len(in), field, n)
	}
	out := cloneSlots(in)
	for i, v := range out {
		if v != nil && (*v < 0 || *v > size) {
			return nil, fmt.Errorf("%w: %s[%d]=%d outside 0..%d", ErrCorruptSnapshot, field, i, *v, size)
		}
	}
	return out, nil
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
