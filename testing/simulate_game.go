package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/tatianab/german-bridge/internal/config"
	"github.com/tatianab/german-bridge/internal/engine"
	"github.com/tatianab/german-bridge/internal/logger"
	"github.com/tatianab/german-bridge/internal/models"
)

const maxRounds = 30

// Plays a full session headlessly with random legal bids and random trick
// results, printing each round.
func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zl := logger.Init(logger.Config{Level: cfg.LogLevel, Format: "console", Output: os.Stderr})

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))

	// Run the playing pause inline instead of waiting on a timer.
	var pending []engine.Command
	eng := engine.NewEngine(models.NewMemoryStore(),
		engine.WithLogger(zl),
		engine.WithRand(rng),
		engine.WithFormula(cfg.Formula),
		engine.WithScheduler(func(_ time.Duration, cmd engine.Command) func() {
			pending = append(pending, cmd)
			return func() {}
		}),
	)
	defer eng.Close()

	names := []string{"North", "East", "South", "West"}
	if err := eng.Apply(ctx, engine.StartSession{Names: names}); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}

	for round := 1; round <= maxRounds; round++ {
		s := eng.Session()
		fmt.Printf("--- Round %d: %d cards, trump %s, dealer %s ---\n",
			s.Round.Number, s.Round.Size, s.Round.Trump, s.Players[s.Dealer].Name)

		for eng.Session().Phase == models.PhaseBidding {
			legal := eng.LegalBids()
			bid := legal[rng.IntN(len(legal))]
			if err := eng.Apply(ctx, engine.SelectBid{Value: bid}); err != nil {
				log.Fatalf("Failed to select bid %d: %v", bid, err)
			}
			if err := eng.Apply(ctx, engine.ConfirmBid{}); err != nil {
				log.Fatalf("Failed to confirm bid %d: %v", bid, err)
			}
		}

		for len(pending) > 0 {
			cmd := pending[0]
			pending = pending[1:]
			if err := eng.Apply(ctx, cmd); err != nil {
				log.Fatalf("Failed to apply %s: %v", cmd.Name(), err)
			}
		}

		won := make([]int, len(names))
		for range s.Round.Size {
			won[rng.IntN(len(names))]++
		}
		for i, v := range won {
			if err := eng.Apply(ctx, engine.SetActual{Player: i, Value: v}); err != nil {
				log.Fatalf("Failed to set result for %s: %v", names[i], err)
			}
		}
		if err := eng.Apply(ctx, engine.FinalizeResults{}); err != nil {
			log.Fatalf("Failed to finalize round: %v", err)
		}

		s = eng.Session()
		fmt.Println(s.History[len(s.History)-1])
		fmt.Printf("Totals: %v (deltas %v)\n\n", s.Totals, s.LastDeltas)

		if err := eng.Apply(ctx, engine.AdvanceRound{}); err != nil {
			log.Fatalf("Failed to advance round: %v", err)
		}
	}

	s := eng.Session()
	fmt.Printf("Leader after %d rounds: %s with %d\n", maxRounds, s.Players[s.Leader()].Name, s.Totals[s.Leader()])
}
