package engine

import "fmt"

// Results collects the tricks each player actually won.
type Results struct {
	Bids   []*int
	Actual []*int
	Size   int
}

// CompletedRound is the immutable outcome of a round, ready for scoring.
type CompletedRound struct {
	Bids   []int
	Actual []int
}

// Value returns the player's current count, falling back to the bid when no
// result has been entered.
func (r *Results) Value(player int) int {
	if v := r.Actual[player]; v != nil {
		return *v
	}
	if b := r.Bids[player]; b != nil {
		return *b
	}
	return 0
}

// Set records value for player.
func (r *Results) Set(player, value int) error {
	if player < 0 || player >= len(r.Actual) {
		return fmt.Errorf("%w: %d", ErrNoSuchPlayer, player)
	}
	if value < 0 || value > r.Size {
		return &RangeError{Value: value, Max: r.Size}
	}
	r.Actual[player] = &value
	return nil
}

// Adjust moves the player's count by delta. Leaving 0..Size is rejected
// with the count unchanged.
func (r *Results) Adjust(player, delta int) error {
	if player < 0 || player >= len(r.Actual) {
		return fmt.Errorf("%w: %d", ErrNoSuchPlayer, player)
	}
	return r.Set(player, r.Value(player)+delta)
}

// Sum adds up the entered counts.
func (r *Results) Sum() int {
	total := 0
	for _, v := range r.Actual {
		if v != nil {
			total += *v
		}
	}
	return total
}

// Finalize succeeds only when every player has a count and the counts add
// up to exactly Size.
func (r *Results) Finalize() (CompletedRound, error) {
	sum := r.Sum()
	done := CompletedRound{
		Bids:   make([]int, len(r.Actual)),
		Actual: make([]int, len(r.Actual)),
	}
	for i, v := range r.Actual {
		if v == nil || r.Bids[i] == nil {
			return CompletedRound{}, &TotalError{Sum: sum, Size: r.Size}
		}
		done.Bids[i] = *r.Bids[i]
		done.Actual[i] = *v
	}
	if sum != r.Size {
		return CompletedRound{}, &TotalError{Sum: sum, Size: r.Size}
	}
	return done, nil
}
