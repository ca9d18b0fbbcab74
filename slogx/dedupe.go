package slogx

import (
	"context"
	"log/slog"
	"slices"
)

var _ slog.Handler = (*DedupeHandler)(nil)

// DedupeHandler keeps only the most recent value for each attribute key added with WithAttrs.
// A channel logger gets "channel" attached once, and nested operations can re-attach "event" freely without repeating it in the output.
type DedupeHandler struct {
	group string
	attrs []slog.Attr
	impl  slog.Handler
}

func NewDedupeHandler(impl slog.Handler) slog.Handler {
	if impl == nil {
		panic("nil implementing handler")
	}
	if dh, ok := impl.(*DedupeHandler); ok {
		return dh
	}
	return &DedupeHandler{
		impl: impl,
	}
}

func (h *DedupeHandler) qualify(key string) string {
	if len(h.group) == 0 {
		return key
	}
	return h.group + "." + key
}

func (h *DedupeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.impl.Enabled(ctx, level)
}

func (h *DedupeHandler) Handle(ctx context.Context, record slog.Record) error {
	merged := h
	if record.NumAttrs() > 0 {
		extra := make([]slog.Attr, 0, record.NumAttrs())
		record.Attrs(func(attr slog.Attr) bool {
			extra = append(extra, attr)
			return true
		})
		record = slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
		merged = h.WithAttrs(extra).(*DedupeHandler)
	}
	return h.impl.WithAttrs(merged.attrs).Handle(ctx, record)
}

func (h *DedupeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	cp := &DedupeHandler{
		group: h.group,
		attrs: slices.Clone(h.attrs),
		impl:  h.impl,
	}
	for _, attr := range attrs {
		attr.Key = cp.qualify(attr.Key)
		idx := slices.IndexFunc(cp.attrs, func(existing slog.Attr) bool {
			return existing.Key == attr.Key
		})
		if idx >= 0 {
			cp.attrs[idx] = attr
			continue
		}
		cp.attrs = append(cp.attrs, attr)
	}
	return cp
}

func (h *DedupeHandler) WithGroup(name string) slog.Handler {
	if len(name) == 0 {
		return h
	}
	return &DedupeHandler{
		group: h.qualify(name),
		attrs: h.attrs,
		impl:  h.impl,
	}
}
