package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"swingbot/internal/history"
	"swingbot/internal/logger"
	"swingbot/internal/store"
	"swingbot/internal/trace"
	"swingbot/internal/train"
	"swingbot/internal/universe"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer trace.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Warn(ctx, "Interrupted, stopping training run...")
		cancel()
	}()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	hist := history.NewClient(history.WithTimeout(60 * time.Second))

	var listings *universe.NSEListings
	if cfg.Universe.RemoteFetch {
		listings = universe.NewNSEListings()
	}
	symbols := universe.New(cfg.SymbolsCSV, listings)

	pipeline := train.New(cfg, symbols, hist)
	if err := pipeline.Run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Training run failed", err)
		os.Exit(1)
	}
}
