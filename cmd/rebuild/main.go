// Command rebuild replays a world's ledger into fresh projections.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/projection"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/game/storage/sqlite"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/cmd"
	"github.com/GuilhermeCostaProenca/t20-os-sub000/internal/platform/config"
)

type rebuildConfig struct {
	DBPath string `env:"T20OS_DB_PATH" envDefault:"t20os.db"`
}

func main() {
	var cfg rebuildConfig
	var worldID string

	fs := flag.NewFlagSet(cmd.ServiceRebuild, flag.ExitOnError)
	if err := cmd.ParseConfig(&cfg); err != nil {
		config.Exitf("rebuild: %v", err)
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path")
	fs.StringVar(&worldID, "world", "", "world id to rebuild")
	if err := cmd.ParseArgs(fs, os.Args[1:]); err != nil {
		config.Exitf("rebuild: %v", err)
	}
	if worldID == "" {
		config.Exitf("rebuild: -world is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.RunWithTelemetry(ctx, cmd.ServiceRebuild, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		applied, err := projection.Rebuild(ctx, store, worldID)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "rebuild complete", "world_id", worldID, "events_applied", applied)
		return nil
	})
	if err != nil {
		config.Exitf("rebuild: %v", err)
	}
}
