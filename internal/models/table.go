package models

// Table limits shared by new sessions and restored saves.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// MaxCardsPerPlayer is the largest hand a single 52-card deck allows for n
// players. It is a fixed table rather than 52/n; counts outside 2..8 get 7.
func MaxCardsPerPlayer(n int) int {
	switch n {
	case 2:
		return 26
	case 3:
		return 17
	case 4:
		return 13
	case 5:
		return 10
	case 6:
		return 8
	case 7:
		return 7
	case 8:
		return 6
	default:
		return 7
	}
}

// SeatsFrom seats the players clockwise starting at dealer.
func SeatsFrom(dealer, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = (dealer + i) % n
	}
	return order
}
