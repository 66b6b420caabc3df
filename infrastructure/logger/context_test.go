package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/infrastructure/logger"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "debug", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := logger.WithContext(context.Background(), l)
	if got := logger.FromContext(ctx); got != l {
		t.Errorf("FromContext returned %v, want stored logger", got)
	}
}

func TestFromContext_FallbackIsUsable(t *testing.T) {
	t.Parallel()

	l := logger.FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}

	l.Debug("filtered")
	l.Warn("fallback in use", logger.String("key", "value"))
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Format: logger.FormatConsole, OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.With(logger.String("service", "credibility")).Info("console logger", logger.Int("n", 1))
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	cfg := logger.Config{Format: "yaml"}
	cfg.SetDefaults()

	if cfg.Level != logger.DefaultLevel {
		t.Errorf("Level = %q, want %q", cfg.Level, logger.DefaultLevel)
	}
	if cfg.Format != logger.FormatJSON {
		t.Errorf("Format = %q, want %q", cfg.Format, logger.FormatJSON)
	}
	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stdout" {
		t.Errorf("OutputPaths = %v, want [stdout]", cfg.OutputPaths)
	}
}

func TestNop_WithReturnsNop(t *testing.T) {
	t.Parallel()

	n := logger.NewNop()
	n.Fatal("does not exit")
	if err := n.With(logger.Bool("k", true)).Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
}
