package slogutil

import (
	"context"
	"log/slog"
	"maps"
)

type data map[string]slog.Attr

type dataKey struct{}

func cloneData(ctx context.Context) data {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return data{}
	}

	return maps.Clone(d)
}

// With returns a new context carrying the given key-value pairs.
// Records logged through a wrapped handler pick them up automatically.
func With(ctx context.Context, kvargs ...any) context.Context {
	if len(kvargs) == 0 {
		return ctx
	}

	d := cloneData(ctx)

	var r slog.Record
	r.Add(kvargs...)
	r.Attrs(func(a slog.Attr) bool {
		d[a.Key] = a
		return true
	})

	return context.WithValue(ctx, dataKey{}, d)
}

// Attrs returns the attributes carried by the context.
func Attrs(ctx context.Context) []slog.Attr {
	d, ok := ctx.Value(dataKey{}).(data)
	if !ok {
		return nil
	}

	attrs := make([]slog.Attr, 0, len(d))
	for _, v := range d {
		attrs = append(attrs, v)
	}

	return attrs
}

// Handler is a slog.Handler that appends context-carried attributes to
// every record before delegating.
type Handler struct {
	handler slog.Handler
}

// WrapHandler wraps the given slog.Handler.
func WrapHandler(h slog.Handler) Handler {
	return Handler{handler: h}
}

func (h Handler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Attrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}

	return h.handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{handler: h.handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{handler: h.handler.WithGroup(name)}
}
