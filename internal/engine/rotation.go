package engine

import "github.com/tatianab/german-bridge/internal/models"

// TurnOrderFrom seats the players clockwise starting at dealer.
func TurnOrderFrom(dealer, n int) []int { return models.SeatsFrom(dealer, n) }

// Rotate passes the deal one seat along turnOrder and rebuilds the order so
// the new dealer sits at position 0.
func Rotate(turnOrder []int, dealer int) ([]int, int) {
	n := len(turnOrder)
	pos := 0
	for i, p := range turnOrder {
		if p == dealer {
			pos = i
			break
		}
	}
	next := turnOrder[(pos+1)%n]
	return TurnOrderFrom(next, n), next
}
