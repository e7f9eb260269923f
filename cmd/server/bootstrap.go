package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"swingbot/internal/history"
	"swingbot/internal/logger"
	"swingbot/internal/notify"
	"swingbot/internal/predict"
	"swingbot/internal/predict/predictobs"
	"swingbot/internal/results"
	"swingbot/internal/scan"
	"swingbot/internal/sentiment"
	"swingbot/internal/server"
	"swingbot/internal/store"
	"swingbot/internal/trace"
	"swingbot/internal/universe"
)

// initializeSystem loads environment variables, logger, and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

type app struct {
	cfg *store.Config
	srv *server.Server
}

// buildApp wires the inference process: config, history client, sentiment
// service, model-backed predictor, scanner, result store, and HTTP server.
// A missing model artifact fails here, before anything starts.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}

	hist := history.NewClient(
		history.WithTimeout(time.Duration(cfg.Scan.PerSymbolTimeoutSecs) * time.Second),
	)
	sent := sentiment.NewService(sentiment.ConfigFrom(cfg))

	engine, err := predict.New(cfg, hist, sent)
	if err != nil {
		// The one unrecoverable precondition: no trained model, no process.
		return nil, err
	}
	predictor := predictobs.Wrap(engine)

	var listings *universe.NSEListings
	if cfg.Universe.RemoteFetch {
		listings = universe.NewNSEListings()
	}
	symbols := universe.New(cfg.SymbolsCSV, listings)

	scanner := scan.New(cfg, symbols, predictor)
	resultStore := results.NewStore()
	notifier := notify.New(cfg)

	srv := server.New(cfg, scanner, resultStore, notifier)
	return &app{cfg: cfg, srv: srv}, nil
}

func (a *app) run(ctx context.Context) error {
	sched := server.NewScheduler(a.cfg.Schedule.Hour, a.cfg.Schedule.Minute, a.srv.RunScheduledScan)
	go sched.Run(ctx)

	logger.Info(ctx, "SwingBot server started",
		"listen", a.cfg.Listen,
		"workers", a.cfg.Scan.Workers,
		"model", a.cfg.ModelPath,
	)
	return a.srv.Run(ctx)
}
