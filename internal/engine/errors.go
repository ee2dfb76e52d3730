package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange     = errors.New("value out of range")
	ErrIllegalLastBid = errors.New("last bid would make the total equal the round size")
	ErrInvalidTotal   = errors.New("tricks won do not add up to the round size")
	ErrPersistence    = errors.New("persistence failure")
	ErrWrongPhase     = errors.New("command not allowed in this phase")
	ErrPlayerCount    = errors.New("a game needs between 2 and 8 players")
	ErrFormulaLocked  = errors.New("scoring formula can only change before the first round is scored")
	ErrNoPendingBid   = errors.New("no bid selected")
	ErrOutOfTurn      = errors.New("not this player's turn to bid")
	ErrNoSuchPlayer   = errors.New("no such player")
	ErrUnknownCommand = errors.New("unknown command")
)

// PhaseError reports a command issued in the wrong phase.
type PhaseError string

func (e PhaseError) Error() string { return string(e) }

func (e PhaseError) Is(target error) bool { return target == ErrWrongPhase }

// RangeError is a bid or trick count outside 0..Max.
type RangeError struct {
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%d is outside 0..%d", e.Value, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// TotalError carries the entered sum and the expected round size for display.
type TotalError struct {
	Sum  int
	Size int
}

func (e *TotalError) Error() string {
	return fmt.Sprintf("tricks won add up to %d, expected %d", e.Sum, e.Size)
}

func (e *TotalError) Unwrap() error { return ErrInvalidTotal }
