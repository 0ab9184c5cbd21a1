// Package logging enriches slog records with request scoped attributes carried in context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

type attrsKey struct{}

// ContextHandler adds the [slog.Attr] stored with [WithAttrs] to every record passed to the wrapped handler.
type ContextHandler struct {
	next slog.Handler
}

// NewContextHandler wraps h in a ContextHandler.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{next: h}
}

// NewLogger returns a text logger writing to w with request scoped attributes enabled.
//
// replaceAttr may be nil. It is useful for tests that need to observe specific attributes such as the listen
// address of the server.
func NewLogger(w io.Writer, level slog.Leveler, replaceAttr func([]string, slog.Attr) slog.Attr) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       level,
		ReplaceAttr: replaceAttr,
	})))
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds the context attributes to r and passes it on.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(Attrs(ctx)...)
	if err := h.next.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name)}
}

// WithAttrs returns a copy of ctx carrying attr in addition to any attributes already stored.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	// Clip so that sibling contexts never share a backing array.
	existing := slices.Clip(Attrs(ctx))
	return context.WithValue(ctx, attrsKey{}, append(existing, attr...))
}

// Attrs returns the attributes stored in ctx with WithAttrs.
func Attrs(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}
