package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type entrypointConfig struct {
	Port int `env:"T20OS_ENTRYPOINT_TEST_PORT" envDefault:"9090"`
}

func TestParseConfigFromArgs(t *testing.T) {
	var cfg entrypointConfig
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "port")

	if err := ParseConfigFromArgs(&cfg, fs, []string{"-port", "7070"}); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("expected flag to win, got %d", cfg.Port)
	}
}

func TestParseConfigFromArgsEnvDefault(t *testing.T) {
	var cfg entrypointConfig
	fs := flag.NewFlagSet("test", flag.ContinueOnError)

	if err := ParseConfigFromArgs(&cfg, fs, nil); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected env default 9090, got %d", cfg.Port)
	}
}

func TestParseConfigNilTarget(t *testing.T) {
	if err := ParseConfig[entrypointConfig](nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunWithTelemetryRequiresService(t *testing.T) {
	err := RunWithTelemetry(context.Background(), "  ", func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected error for blank service name")
	}
}

func TestRunWithTelemetryPropagatesRunError(t *testing.T) {
	t.Setenv("T20OS_OTEL_ENDPOINT", "")

	wantErr := errors.New("run failed")
	err := RunWithTelemetry(context.Background(), ServiceServer, func(context.Context) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected run error, got %v", err)
	}
}
