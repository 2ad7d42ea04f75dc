package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ladle/internal/api"
	"ladle/internal/config"
	"ladle/internal/engine"
	"ladle/internal/mailstore"
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
	game, err := config.LoadGame(cfg.GameConfigPath)
	if err != nil {
		slog.Error("load game config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mail, closeMail, err := openMailStore(ctx, cfg)
	if err != nil {
		logger.Error("mail store init failed", "driver", cfg.MailDriver, "err", err)
		os.Exit(1)
	}
	defer closeMail()

	eng := engine.New(engine.Options{
		Ledger:    game.LedgerConfig(),
		Scheduler: game.SchedulerConfig(),
		Mail:      mail,
		Logger:    logger,
	})
	eng.Market.ApplySeason(cfg.Season)

	server := api.New(cfg, game, logger, eng, mail)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("api listening", "addr", cfg.Addr, "mail_driver", cfg.MailDriver)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("api shutdown")
}

func openMailStore(ctx context.Context, cfg config.APIConfig) (mailstore.Store, func(), error) {
	if cfg.MailDriver == "memory" {
		return mailstore.NewMemory(), func() {}, nil
	}
	store, err := mailstore.OpenSQL(ctx, cfg.MailDriver, cfg.MailDSN)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
