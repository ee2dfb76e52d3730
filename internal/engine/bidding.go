package engine

import "fmt"

// Bidding collects one bid per player in turn order. The last bidder may not
// bring the total to exactly the round size, so at least one player misses.
type Bidding struct {
	TurnOrder []int
	Position  int    // index into TurnOrder of the player to bid next
	Bids      []*int // by player index
	Size      int
}

// Complete reports whether every seat has bid.
func (b *Bidding) Complete() bool {
	return b.Position >= len(b.TurnOrder)
}

// Current returns the player index expected to bid next, or -1 once complete.
func (b *Bidding) Current() int {
	if b.Complete() {
		return -1
	}
	return b.TurnOrder[b.Position]
}

// Sum adds up the bids placed so far.
func (b *Bidding) Sum() int {
	total := 0
	for _, v := range b.Bids {
		if v != nil {
			total += *v
		}
	}
	return total
}

// Forbidden returns the one value the last bidder may not call, if it is in range.
func (b *Bidding) Forbidden() (int, bool) {
	if b.Position != len(b.TurnOrder)-1 {
		return 0, false
	}
	v := b.Size - b.Sum()
	if v < 0 || v > b.Size {
		return 0, false
	}
	return v, true
}

// Check validates value for the current bidder without recording it.
func (b *Bidding) Check(value int) error {
	if b.Complete() {
		return PhaseError("all bids are in")
	}
	if value < 0 || value > b.Size {
		return &RangeError{Value: value, Max: b.Size}
	}
	if forbidden, ok := b.Forbidden(); ok && value == forbidden {
		return fmt.Errorf("%w: %d would make %d", ErrIllegalLastBid, value, b.Size)
	}
	return nil
}

// Submit records player's bid and advances to the next seat. done is true
// once the final seat has bid.
func (b *Bidding) Submit(player, value int) (done bool, err error) {
	if current := b.Current(); player != current {
		return false, fmt.Errorf("%w: expected player %d, got %d", ErrOutOfTurn, current, player)
	}
	if err := b.Check(value); err != nil {
		return false, err
	}
	b.Bids[player] = &value
	b.Position++
	return b.Complete(), nil
}

// LegalBids lists the values the current bidder may call, in ascending order.
func (b *Bidding) LegalBids() []int {
	if b.Complete() {
		return nil
	}
	forbidden, hasForbidden := b.Forbidden()
	out := make([]int, 0, b.Size+1)
	for v := 0; v <= b.Size; v++ {
		if hasForbidden && v == forbidden {
			continue
		}
		out = append(out, v)
	}
	return out
}
