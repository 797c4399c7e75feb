package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMirrorReceivesEmittedEntries(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	type captured struct {
		level Level
		msg   string
		args  []any
	}
	var got []captured
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, captured{level: level, msg: msg, args: args})
	})
	defer SetMirror(nil)

	logger.InfoContext(context.Background(), "request counted", "endpoint", "fixtures")
	logger.Debug("below level, not emitted")

	if observed.Len() != 1 {
		t.Fatalf("expected 1 zap entry, got %d", observed.Len())
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 mirrored entry, got %d", len(got))
	}
	if got[0].msg != "request counted" || got[0].level != LevelInfo {
		t.Fatalf("unexpected mirrored entry: %+v", got[0])
	}
	if len(got[0].args) != 2 || got[0].args[0] != "endpoint" {
		t.Fatalf("unexpected mirrored args: %+v", got[0].args)
	}

	SetMirror(nil)
	logger.Info("after removal")
	if len(got) != 1 {
		t.Fatalf("mirror fired after removal: %d entries", len(got))
	}
}
