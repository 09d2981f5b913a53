package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// ConsoleHandler is a slog.Handler that passes records to another handler
// and copies those at or above its level to a viewer's console channel
type ConsoleHandler struct {
	next   slog.Handler
	level  slog.Leveler
	out    chan<- ConsoleMessage
	attrs  []slog.Attr
	prefix string // Group prefix for attrs added later
}

// NewConsoleHandler creates a handler forwarding to out without blocking.
// Messages are dropped while out is full.
func NewConsoleHandler(next slog.Handler, out chan<- ConsoleMessage, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{next: next, level: level, out: out}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() || h.next.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r.Clone())
	}
	if r.Level < h.level.Level() {
		return err
	}

	var b strings.Builder
	b.WriteString(r.Message)
	write := func(key string, a slog.Attr) {
		fmt.Fprintf(&b, " %s%s=%s", key, a.Key, a.Value.Resolve().String())
	}
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h.prefix, a)
		return true
	})

	select {
	case h.out <- ConsoleMessage{Message: b.String(), Timestamp: r.Time, Level: levelName(r.Level)}:
	default:
	}
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.prefix = h.prefix + name + "."
	return &clone
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
