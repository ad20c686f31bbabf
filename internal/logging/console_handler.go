package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiGray  = "\033[90m"
)

var levelColor = map[slog.Level]string{
	slog.LevelDebug: "\033[36m",
	slog.LevelInfo:  "\033[32m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

// ConsoleHandler renders records as one colored line each for terminals.
type ConsoleHandler struct {
	Output io.Writer
	Level  slog.Leveler
	// NameLevels overrides Level for loggers whose "logger" attribute has the key as a
	// dotted prefix.
	NameLevels map[string]slog.Level

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	attrs = append(attrs, h.attrs...)

	min := h.Level.Level()
	if override, ok := h.levelFor(loggerName(attrs)); ok {
		min = override
	}
	if r.Level < min {
		return nil
	}

	var b strings.Builder
	b.WriteString(ansiGray + r.Time.Format("15:04:05.000") + ansiReset)
	b.WriteString(" " + levelColor[r.Level] + "[" + r.Level.String() + "]" + ansiReset)
	b.WriteString(" " + r.Message)

	if len(attrs) > 0 {
		prefix := ""
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}
		b.WriteString(" " + ansiGray + "|" + ansiReset)
		renderAttrs(&b, prefix, attrs)
	}

	_, err := fmt.Fprintln(h.Output, b.String())
	return err
}

func (h *ConsoleHandler) levelFor(name string) (slog.Level, bool) {
	if name == "" || len(h.NameLevels) == 0 {
		return 0, false
	}
	parts := strings.Split(name, ".")
	for i := len(parts); i > 0; i-- {
		if level, ok := h.NameLevels[strings.Join(parts[:i], ".")]; ok {
			return level, true
		}
	}
	return 0, false
}

func loggerName(attrs []slog.Attr) string {
	for _, a := range attrs {
		if a.Key == "logger" {
			return a.Value.String()
		}
	}
	return ""
}

func renderAttrs(b *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, a := range attrs {
		if a.Value.Kind() == slog.KindGroup {
			renderAttrs(b, prefix+a.Key+".", a.Value.Group())
			continue
		}
		b.WriteString(" " + prefix + a.Key + "=" + ansiGray + a.Value.String() + ansiReset)
	}
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if len(h.NameLevels) > 0 {
		// per-name overrides may lower the threshold; Handle filters precisely
		return true
	}
	return h.Level.Level() <= level
}
