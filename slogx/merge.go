package slogx

import (
	"context"
	"errors"
	"log/slog"
)

var _ slog.Handler = (*fanout)(nil)

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		errs = append(errs, h.Handle(ctx, record.Clone()))
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := make(fanout, len(f))
	for i, h := range f {
		cp[i] = h.WithAttrs(attrs)
	}
	return cp
}

func (f fanout) WithGroup(name string) slog.Handler {
	cp := make(fanout, len(f))
	for i, h := range f {
		cp[i] = h.WithGroup(name)
	}
	return cp
}

// MergeHandlers will merge many [slog.Handler] into one, so a record can go to the console and a trace file at the same time.
// Each handler's own level is respected. Nil handlers are skipped.
func MergeHandlers(a, b slog.Handler, others ...slog.Handler) slog.Handler {
	var merged fanout
	for _, h := range append([]slog.Handler{a, b}, others...) {
		if h != nil {
			merged = append(merged, h)
		}
	}
	return merged
}
