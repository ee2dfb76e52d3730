package engine

import "github.com/tatianab/german-bridge/internal/models"

// MaxCardsPerPlayer is the largest hand for n players.
func MaxCardsPerPlayer(n int) int { return models.MaxCardsPerPlayer(n) }

// NextSize advances the triangular wave 1, 2, ..., max, max-1, ..., 1, 2, ...
// A new session starts from size 0 rising.
func NextSize(current int, dir models.Direction, maxCards int) (int, models.Direction) {
	switch {
	case current == maxCards:
		return maxCards - 1, models.Falling
	case current == 1 && dir == models.Falling:
		return 2, models.Rising
	case dir == models.Rising:
		return min(current+1, maxCards), models.Rising
	default:
		return max(current-1, 1), models.Falling
	}
}
