package logger

import (
	"context"
	"log/slog"
	"runtime"
)

// levelSourceHandler annotates records with their call site, but only at the
// levels it was built with. Warn and error lines carry the source so denial
// and reconcile failures are easy to trace back; chatty info and debug lines
// stay short. The wrapped handler must run with AddSource disabled.
type levelSourceHandler struct {
	next   slog.Handler
	levels map[slog.Level]bool
}

func newLevelSourceHandler(next slog.Handler, levels ...slog.Level) slog.Handler {
	m := make(map[slog.Level]bool, len(levels))
	for _, level := range levels {
		m[level] = true
	}
	return &levelSourceHandler{next: next, levels: m}
}

func (h *levelSourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *levelSourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.levels[r.Level] && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		}))
	}
	return h.next.Handle(ctx, r)
}

func (h *levelSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelSourceHandler{next: h.next.WithAttrs(attrs), levels: h.levels}
}

func (h *levelSourceHandler) WithGroup(name string) slog.Handler {
	return &levelSourceHandler{next: h.next.WithGroup(name), levels: h.levels}
}
