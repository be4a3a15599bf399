// Package logger provides slog loggers with a compact, optionally colored
// text handler for terminal use.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes used by the colored handler.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// Options configures a logger.
type Options struct {
	// Level is the minimum level to emit.
	Level slog.Level

	// NoColor disables ANSI colors even on a terminal.
	NoColor bool
}

// NewDefaultLogger creates a logger writing to stderr at the given level,
// with colors when stderr is a terminal.
func NewDefaultLogger(level slog.Level) *slog.Logger {
	return NewLogger(os.Stderr, Options{Level: level})
}

// NewLogger creates a logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	color := !opts.NoColor
	if f, ok := w.(*os.File); ok {
		color = color && isatty.IsTerminal(f.Fd())
	} else {
		color = false
	}
	return slog.New(&textHandler{w: w, level: opts.Level, color: color, mu: &sync.Mutex{}})
}

// NewColorHandler creates the colored text handler directly, for callers
// composing their own handler chains.
func NewColorHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	level := slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level.Level()
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &textHandler{w: w, level: level, color: color, mu: &sync.Mutex{}}
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type textHandler struct {
	w     io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
	group string

	// mu is shared by all handlers derived via WithAttrs/WithGroup so that
	// concurrent Handle calls serialize writes to the common writer.
	mu *sync.Mutex
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')

	level := r.Level.String()
	if h.color {
		switch {
		case r.Level >= slog.LevelError:
			level = colorRed + level + colorReset
		case r.Level >= slog.LevelWarn:
			level = colorYellow + level + colorReset
		case r.Level < slog.LevelInfo:
			level = colorGray + level + colorReset
		}
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		clone.group += "." + name
	} else {
		clone.group = name
	}
	return &clone
}
