package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", "off", "warn", "dev", "prod", "PROD"} {
		log, err := New(mode, "")
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		if log == nil || log.SugaredLogger == nil {
			t.Fatalf("mode %q: nil logger", mode)
		}
	}
	if _, err := New("verbose", ""); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestWithAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core)).With("student", "s1")
	log.Warn("skipped mistakes", "count", 2)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["student"] != "s1" || fields["count"] != int64(2) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", entries[0].Level)
	}
}
