// ladle-worker drives the API's periodic jobs from outside the serving
// process. The tick endpoint is idempotent by timestamp, so the cadence
// here only affects how quickly a period boundary is noticed.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ladle/internal/cli"
	"ladle/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	client := cli.NewClient(config.LoadCLIFromEnv().APIBaseURL)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("LADLE_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := client.Tick(ctx); err != nil {
			logger.Error("tick failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.TickEvery)
	defer ticker.Stop()

	logger.Info("worker started", "tick_every", cfg.TickEvery.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := client.Tick(ctx); err != nil {
				logger.Error("tick failed", "err", err)
				continue
			}
			logger.Info("tick complete")
		}
	}
}
