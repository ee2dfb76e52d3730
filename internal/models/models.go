package models

import "fmt"

// Phase is the state of the session state machine.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseBidding
	PhasePlaying
	PhaseResults
	PhaseScores
)

var phaseNames = [...]string{"setup", "bidding", "playing", "results", "scores"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase maps a persisted phase name back to a Phase. Unknown or empty
// names fall back to setup.
func ParsePhase(s string) Phase {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i)
		}
	}
	return PhaseSetup
}

// Direction is the trend of the round size along the triangular wave.
type Direction int

const (
	Rising Direction = iota
	Falling
)

func (d Direction) String() string {
	if d == Falling {
		return "falling"
	}
	return "rising"
}

// ParseDirection defaults to rising for anything it does not recognise.
func ParseDirection(s string) Direction {
	if s == "falling" {
		return Falling
	}
	return Rising
}

// Formula selects the penalty applied when a bid is missed.
type Formula int

const (
	Squared Formula = iota
	Cubed
)

func (f Formula) String() string {
	if f == Cubed {
		return "cubed"
	}
	return "squared"
}

// ParseFormula returns an error for names other than "squared" and "cubed".
func ParseFormula(s string) (Formula, error) {
	switch s {
	case "squared", "":
		return Squared, nil
	case "cubed":
		return Cubed, nil
	default:
		return Squared, fmt.Errorf("unknown scoring formula %q", s)
	}
}

// Suit is the cosmetic trump symbol shown for a round.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Suits lists the trump symbols in display order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Player is a seat at the table. Index is stable for the whole session.
type Player struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
}

// Round holds the mutable state of the one live round.
type Round struct {
	Number    int
	Size      int
	Direction Direction
	Trump     Suit
	Bids      []*int // nil means the player has not bid yet
	Actual    []*int // nil means no result entered yet
}

// Session aggregates everything the scorekeeper tracks for one game.
type Session struct {
	ID      string
	Players []Player
	// TurnOrder is the bidding order for the current round; the dealer sits at position 0.
	TurnOrder []int
	Dealer    int
	Totals    []int
	History   []string
	Formula   Formula
	Phase     Phase
	Round     Round

	CurrentBidder int  // position in TurnOrder
	PendingBid    *int // selected on the keypad but not confirmed
	LastDeltas    []int

	// Generation changes on reset and on every entry into the playing phase.
	// Scheduled transitions carry the generation they were issued for.
	Generation int
}

// NewSession returns an empty session in the setup phase.
func NewSession(formula Formula) Session {
	return Session{Phase: PhaseSetup, Formula: formula}
}

// Clone returns a deep copy, so a transition can work on it and be discarded on error.
func (s Session) Clone() Session {
	c := s
	c.Players = append([]Player(nil), s.Players...)
	c.TurnOrder = append([]int(nil), s.TurnOrder...)
	c.Totals = append([]int(nil), s.Totals...)
	c.History = append([]string(nil), s.History...)
	c.LastDeltas = append([]int(nil), s.LastDeltas...)
	c.PendingBid = cloneInt(s.PendingBid)
	c.Round.Bids = cloneSlots(s.Round.Bids)
	c.Round.Actual = cloneSlots(s.Round.Actual)
	return c
}

// PlayerCount is the number of seats.
func (s Session) PlayerCount() int { return len(s.Players) }

// CurrentBidderIndex returns the player index whose bid is awaited, or -1
// when every seat has bid or the session is not bidding.
func (s Session) CurrentBidderIndex() int {
	if s.Phase != PhaseBidding || s.CurrentBidder < 0 || s.CurrentBidder >= len(s.TurnOrder) {
		return -1
	}
	return s.TurnOrder[s.CurrentBidder]
}

// Leader returns the index of the player with the highest total. Ties go to the lower seat.
func (s Session) Leader() int {
	if len(s.Totals) == 0 {
		return -1
	}
	best := 0
	for i, t := range s.Totals {
		if t > s.Totals[best] {
			best = i
		}
	}
	return best
}

// Int returns a pointer to v, for filling optional slots.
func Int(v int) *int { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneSlots(in []*int) []*int {
	if in == nil {
		return nil
	}
	out := make([]*int, len(in))
	for i, p := range in {
		out[i] = cloneInt(p)
	}
	return out
}
