package logging

import (
	"context"
	"sync/atomic"
)

// MirrorFunc receives every entry that passed the level check, after the zap
// write. It lets an exporter ship log entries without this package importing
// it. The mirror must not log through this package.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var mirror atomic.Pointer[MirrorFunc]

// SetMirror installs fn as the process-wide log mirror. Passing nil removes
// the current mirror.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func mirrorEntry(ctx context.Context, level Level, msg string, args ...any) {
	fn := mirror.Load()
	if fn == nil {
		return
	}
	(*fn)(ctx, level, msg, args...)
}
