package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"swingbot/internal/logger"
	"swingbot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	app, err := buildApp(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		_ = trace.Shutdown(context.Background())
		os.Exit(1)
	}

	if err := app.run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Server exited with error", err)
	}
	_ = trace.Shutdown(context.Background())
}
