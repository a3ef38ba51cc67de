// Command server runs the campaign engine's HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/combat"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/dispatch"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/rules/tormenta"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/server"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/session"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage/sqlite"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/cmd"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/config"
)

type serverConfig struct {
	Addr     string `env:"T20OS_ADDR" envDefault:":8080"`
	DBPath   string `env:"T20OS_DB_PATH" envDefault:"t20os.db"`
	LogLevel string `env:"T20OS_LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg serverConfig
	if err := cmd.ParseConfig(&cfg); err != nil {
		config.Exitf("server: %v", err)
	}

	fs := flag.NewFlagSet(cmd.ServiceServer, flag.ExitOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := cmd.ParseArgs(fs, os.Args[1:]); err != nil {
		config.Exitf("server: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.RunWithTelemetry(ctx, cmd.ServiceServer, func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	})
	if err != nil {
		config.Exitf("server: %v", err)
	}
}

func run(ctx context.Context, cfg serverConfig, logger *slog.Logger) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := rules.NewRegistry(tormenta.New())
	if err != nil {
		return err
	}

	dispatcher := dispatch.New(store, logger)
	sessions := session.NewService(store, dispatcher, logger)
	combatService := combat.NewService(store, dispatcher, registry, nil, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(sessions, combatService, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "http server listening", "addr", cfg.Addr, "db", cfg.DBPath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.InfoContext(shutdownCtx, "shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
