package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/tatianab/german-bridge/internal/config"
	"github.com/tatianab/german-bridge/internal/engine"
	"github.com/tatianab/german-bridge/internal/logger"
	"github.com/tatianab/german-bridge/internal/models"
	"github.com/tatianab/german-bridge/internal/tui"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, logFile, err := logger.InitWithFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	store, err := openStore(cfg, log)
	if err != nil {
		log.Error().Err(err).Str("store", cfg.Store).Msg("failed to open store")
		fmt.Printf("Error opening %s store: %v\n", cfg.Store, err)
		os.Exit(1)
	}

	sched := tui.NewScheduler()
	eng := engine.NewEngine(store,
		engine.WithLogger(log),
		engine.WithScheduler(sched.Schedule),
		engine.WithPlayingDelay(cfg.PlayingDelay),
		engine.WithFormula(cfg.Formula),
	)
	defer eng.Close()

	log.Info().Str("store", cfg.Store).Str("formula", cfg.Formula.String()).Msg("starting scorekeeper")
	if err := tui.Run(ctx, eng, sched); err != nil {
		log.Error().Err(err).Msg("tui exited with error")
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) (models.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return models.NewMemoryStore(), nil
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, err
		}
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
			Logger: logger.NewGormLogger(log),
		})
		if err != nil {
			return nil, err
		}
		return models.NewSQLStore(db, cfg.SaveName)
	default:
		return models.NewFileStore(cfg.SaveDir, cfg.SaveName), nil
	}
}
