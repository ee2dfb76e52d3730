package engine

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/tatianab/german-bridge/internal/models"
)

const (
	MinPlayers = models.MinPlayers
	MaxPlayers = models.MaxPlayers
)

// Command is an input to the session state machine.
type Command interface {
	Name() string
}

type (
	// StartSession seats the named players and deals round 1.
	StartSession struct{ Names []string }
	// SelectBid picks a value on the keypad for the current bidder.
	SelectBid struct{ Value int }
	// ConfirmBid commits the selected value.
	ConfirmBid struct{}
	// AdjustActual nudges a player's trick count by Delta.
	AdjustActual struct{ Player, Delta int }
	// SetActual enters a player's trick count directly.
	SetActual struct{ Player, Value int }
	// FinalizeResults scores the round.
	FinalizeResults struct{}
	// AdvanceRound passes the deal and starts the next round.
	AdvanceRound struct{}
	// ResetSession discards everything and returns to setup.
	ResetSession struct{}
	// SetScoringFormula switches formula before any round has been scored.
	SetScoringFormula struct{ Formula models.Formula }
	// EndPlaying is delivered by the scheduler once the playing pause is over.
	EndPlaying struct{ Generation int }
)

func (StartSession) Name() string      { return "start_session" }
func (SelectBid) Name() string         { return "select_bid" }
func (ConfirmBid) Name() string        { return "confirm_bid" }
func (AdjustActual) Name() string      { return "adjust_actual" }
func (SetActual) Name() string         { return "set_actual" }
func (FinalizeResults) Name() string   { return "finalize_results" }
func (AdvanceRound) Name() string      { return "advance_round" }
func (ResetSession) Name() string      { return "reset_session" }
func (SetScoringFormula) Name() string { return "set_scoring_formula" }
func (EndPlaying) Name() string        { return "end_playing" }

// Advance applies cmd to s and returns the resulting session. s itself is
// never modified; on error the returned session is s unchanged. A nil rng
// draws dealers and trumps from a freshly seeded source.
func Advance(s models.Session, cmd Command, rng *rand.Rand) (models.Session, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	next := s.Clone()
	var err error
	switch c := cmd.(type) {
	case StartSession:
		err = startSession(&next, c.Names, rng)
	case SelectBid:
		err = selectBid(&next, c.Value)
	case ConfirmBid:
		err = confirmBid(&next)
	case AdjustActual:
		err = withResults(&next, func(r *Results) error { return r.Adjust(c.Player, c.Delta) })
	case SetActual:
		err = withResults(&next, func(r *Results) error { return r.Set(c.Player, c.Value) })
	case FinalizeResults:
		err = finalizeResults(&next)
	case AdvanceRound:
		err = advanceRound(&next, rng)
	case ResetSession:
		next = models.NewSession(s.Formula)
		next.Generation = s.Generation + 1
	case SetScoringFormula:
		err = setFormula(&next, c.Formula)
	case EndPlaying:
		endPlaying(&next, c.Generation)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	if err != nil {
		return s, err
	}
	return next, nil
}

// BiddingOf exposes the bidding state of s. The returned value shares
// storage with s.
func BiddingOf(s *models.Session) *Bidding {
	return &Bidding{
		TurnOrder: s.TurnOrder,
		Position:  s.CurrentBidder,
		Bids:      s.Round.Bids,
		Size:      s.Round.Size,
	}
}

// ResultsOf exposes the results state of s. The returned value shares storage with s.
func ResultsOf(s *models.Session) *Results {
	return &Results{Bids: s.Round.Bids, Actual: s.Round.Actual, Size: s.Round.Size}
}

func requirePhase(s *models.Session, want models.Phase) error {
	if s.Phase != want {
		return PhaseError(fmt.Sprintf("expected phase %s, session is in %s", want, s.Phase))
	}
	return nil
}

func startSession(s *models.Session, names []string, rng *rand.Rand) error {
	if err := requirePhase(s, models.PhaseSetup); err != nil {
		return err
	}
	n := len(names)
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: got %d", ErrPlayerCount, n)
	}

	s.ID = uuid.NewString()
	s.Players = make([]models.Player, n)
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		s.Players[i] = models.Player{Name: name, Index: i}
	}
	s.Totals = make([]int, n)
	s.History = nil
	s.LastDeltas = nil
	s.Dealer = rng.IntN(n)
	s.TurnOrder = TurnOrderFrom(s.Dealer, n)
	s.Round = models.Round{Number: 0, Size: 0, Direction: models.Rising}
	startRound(s, rng)
	return nil
}

func startRound(s *models.Session, rng *rand.Rand) {
	n := s.PlayerCount()
	size, dir := NextSize(s.Round.Size, s.Round.Direction, MaxCardsPerPlayer(n))
	s.Round = models.Round{
		Number:    s.Round.Number + 1,
		Size:      size,
		Direction: dir,
		Trump:     models.Suits[rng.IntN(len(models.Suits))],
		Bids:      make([]*int, n),
		Actual:    make([]*int, n),
	}
	s.CurrentBidder = 0
	s.PendingBid = nil
	s.Phase = models.PhaseBidding
}

func selectBid(s *models.Session, value int) error {
	if err := requirePhase(s, models.PhaseBidding); err != nil {
		return err
	}
	if err := BiddingOf(s).Check(value); err != nil {
		return err
	}
	s.PendingBid = models.Int(value)
	return nil
}

func confirmBid(s *models.Session) error {
	if err := requirePhase(s, models.PhaseBidding); err != nil {
		return err
	}
	if s.PendingBid == nil {
		return ErrNoPendingBid
	}
	b := BiddingOf(s)
	done, err := b.Submit(b.Current(), *s.PendingBid)
	if err != nil {
		return err
	}
	s.CurrentBidder = b.Position
	s.PendingBid = nil
	if done {
		s.Phase = models.PhasePlaying
		s.Generation++
	}
	return nil
}

// endPlaying ignores transitions scheduled for an earlier generation, so a
// reset during the pause is never undone by the timer firing later.
func endPlaying(s *models.Session, generation int) {
	if s.Phase != models.PhasePlaying || s.Generation != generation {
		return
	}
	// Pre-fill results with the bids; players usually make them.
	for i, b := range s.Round.Bids {
		if b != nil && s.Round.Actual[i] == nil {
			s.Round.Actual[i] = models.Int(*b)
		}
	}
	s.Phase = models.PhaseResults
}

func withResults(s *models.Session, fn func(*Results) error) error {
	if err := requirePhase(s, models.PhaseResults); err != nil {
		return err
	}
	return fn(ResultsOf(s))
}

func finalizeResults(s *models.Session) error {
	if err := requirePhase(s, models.PhaseResults); err != nil {
		return err
	}
	done, err := ResultsOf(s).Finalize()
	if err != nil {
		return err
	}
	s.LastDeltas = ApplyRound(s.Totals, done, s.Formula)
	s.History = append(s.History, summarize(s.Players, done))
	s.Phase = models.PhaseScores
	return nil
}

func summarize(players []models.Player, done CompletedRound) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = fmt.Sprintf("%s: bid %d won %d", p.Name, done.Bids[i], done.Actual[i])
	}
	return strings.Join(parts, " | ")
}

func advanceRound(s *models.Session, rng *rand.Rand) error {
	if err := requirePhase(s, models.PhaseScores); err != nil {
		return err
	}
	s.TurnOrder, s.Dealer = Rotate(s.TurnOrder, s.Dealer)
	startRound(s, rng)
	return nil
}

func setFormula(s *models.Session, f models.Formula) error {
	if len(s.History) > 0 {
		return ErrFormulaLocked
	}
	s.Formula = f
	return nil
}
