package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zap.AtomicLevel{
		"debug":   zap.NewAtomicLevelAt(zap.DebugLevel),
		" WARN ":  zap.NewAtomicLevelAt(zap.WarnLevel),
		"warning": zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
		"info":    zap.NewAtomicLevelAt(zap.InfoLevel),
		"verbose": zap.NewAtomicLevelAt(zap.InfoLevel),
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want.Level() {
			t.Fatalf("ParseLevel(%q) = %s, want %s", input, got, want.Level())
		}
	}
}

func TestNewHonorsLevel(t *testing.T) {
	t.Parallel()

	logger, err := New("warn", false)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info must be disabled at warn level")
	}
	if !logger.Core().Enabled(zap.WarnLevel) {
		t.Fatalf("warn must be enabled")
	}

	dev, err := New("debug", true)
	if err != nil {
		t.Fatalf("new development failed: %v", err)
	}
	if !dev.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("debug must be enabled in development at debug level")
	}
}
