package mq

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"
)

// LevelNotice sits between Info and Warn: for events worth surfacing to an
// operator (subscription confirmed, keep-alive PONG received late) that
// aren't themselves a problem.
const LevelNotice slog.Level = slog.LevelInfo + 2

// NewColorLogger returns a *slog.Logger that writes one colorized line per
// record to w. Client operations log through the Logger field of
// ConnectionSettings; the default is a logger discarding everything.
func NewColorLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(&colorHandler{w: w, level: level})
}

type colorHandler struct {
	w     io.Writer
	level slog.Level
	attrs []slog.Attr
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	label := r.Level.String()
	switch r.Level {
	case slog.LevelDebug:
		label = color.MagentaString(label)
	case slog.LevelInfo:
		label = color.BlueString(label)
	case LevelNotice:
		label = color.CyanString("NOTICE")
	case slog.LevelWarn:
		label = color.YellowString(label)
	case slog.LevelError:
		label = color.RedString(label)
	}

	line := fmt.Sprintf("%s | %-6s | %s", r.Time.Format(time.RFC3339), label, r.Message)
	for _, a := range h.attrs {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})
	line += "\n"

	_, err := io.WriteString(h.w, line)
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &colorHandler{w: h.w, level: h.level, attrs: merged}
}

func (h *colorHandler) WithGroup(_ string) slog.Handler {
	return h
}
