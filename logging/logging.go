// Package logging hands out per-component slog loggers whose level can be
// tuned per component at runtime.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level is a textual log level as found in configuration files.
type Level string

// Supported levels.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Component names used across the module.
const (
	Brick     = "brick"
	Graph     = "graph"
	Queue     = "queue"
	Print     = "print"
	Generator = "generator"
	Monitor   = "monitor"
	Metrics   = "metrics"
	Recorder  = "recorder"
	Config    = "config"
	CLI       = "pgctl"
)

var (
	defaultLevel    = slog.LevelInfo
	componentLevels = make(map[string]slog.Level)
	levelsMu        sync.RWMutex
	format          = "text"
	output          io.Writer = os.Stderr
	loggerCache     sync.Map
)

// Configure sets the output format ("text" or "json"), the default level and
// per-component levels. Loggers obtained before the call are refreshed on
// their next Get.
func Configure(logFormat string, level Level, components map[string]Level) {
	levelsMu.Lock()
	defaultLevel = parseLevel(string(level))
	format = strings.ToLower(logFormat)
	componentLevels = make(map[string]slog.Level)
	for name, lvl := range components {
		componentLevels[name] = parseLevel(string(lvl))
	}
	levelsMu.Unlock()

	loggerCache.Range(func(k, _ any) bool {
		loggerCache.Delete(k)
		return true
	})
}

// SetOutput redirects every logger created afterwards.
func SetOutput(w io.Writer) {
	levelsMu.Lock()
	output = w
	levelsMu.Unlock()

	loggerCache.Range(func(k, _ any) bool {
		loggerCache.Delete(k)
		return true
	})
}

// Get returns the logger of a component.
func Get(component string) *slog.Logger {
	if l, ok := loggerCache.Load(component); ok {
		return l.(*slog.Logger)
	}

	levelsMu.RLock()
	w := output
	jsonFormat := format == "json"
	levelsMu.RUnlock()

	var handler slog.Handler
	if jsonFormat {
		handler = newJSONHandler(w, component)
	} else {
		handler = NewTextHandler(w, component)
	}

	l := slog.New(handler)
	loggerCache.Store(component, l)

	return l
}

// SetComponentLevel overrides the level of one component and its children.
func SetComponentLevel(component string, level Level) {
	levelsMu.Lock()
	componentLevels[component] = parseLevel(string(level))
	levelsMu.Unlock()
}

// ClearComponentLevel removes a component override.
func ClearComponentLevel(component string) {
	levelsMu.Lock()
	delete(componentLevels, component)
	levelsMu.Unlock()
}

// ComponentLevels returns the current overrides.
func ComponentLevels() map[string]Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()

	result := make(map[string]Level, len(componentLevels))
	for name, level := range componentLevels {
		result[name] = toLevel(level)
	}

	return result
}

// TextHandler writes "time [component] message k=v" lines.
type TextHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	attrs     []slog.Attr
	component string
}

// NewTextHandler creates a text handler for a component.
func NewTextHandler(w io.Writer, component string) *TextHandler {
	return &TextHandler{mu: &sync.Mutex{}, w: w, component: component}
}

// Enabled reports whether the component logs at the given level.
func (h *TextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= effectiveLevel(h.component)
}

// Handle formats and writes a record.
func (h *TextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format("2006/01/02 15:04:05.000")...)
	buf = append(buf, ' ')
	buf = append(buf, r.Level.String()...)

	if h.component != "" {
		buf = append(buf, fmt.Sprintf(" [%s]", h.component)...)
	}

	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	for _, a := range h.attrs {
		buf = append(buf, fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())...)
	}

	keys := make([]string, 0, r.NumAttrs())
	values := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		keys = append(keys, a.Key)
		values[a.Key] = a.Value.Any()
		return true
	})
	sort.Strings(keys)

	for _, k := range keys {
		buf = append(buf, fmt.Sprintf(" %s=%v", k, values[k])...)
	}

	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf)

	return err
}

// WithAttrs returns a handler that always logs the given attributes.
func (h *TextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &TextHandler{mu: h.mu, w: h.w, attrs: merged, component: h.component}
}

// WithGroup nests the component name.
func (h *TextHandler) WithGroup(name string) slog.Handler {
	return &TextHandler{
		mu:        h.mu,
		w:         h.w,
		attrs:     h.attrs,
		component: childComponent(h.component, name),
	}
}

type jsonHandler struct {
	inner     slog.Handler
	component string
}

func newJSONHandler(w io.Writer, component string) *jsonHandler {
	return &jsonHandler{
		inner: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}),
		component: component,
	}
}

func (h *jsonHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= effectiveLevel(h.component)
}

func (h *jsonHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.component != "" {
		r.AddAttrs(slog.String("component", h.component))
	}

	return h.inner.Handle(ctx, r)
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &jsonHandler{inner: h.inner.WithAttrs(attrs), component: h.component}
}

func (h *jsonHandler) WithGroup(name string) slog.Handler {
	return &jsonHandler{
		inner:     h.inner,
		component: childComponent(h.component, name),
	}
}

func childComponent(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func toLevel(level slog.Level) Level {
	switch level {
	case slog.LevelDebug:
		return LevelDebug
	case slog.LevelWarn:
		return LevelWarn
	case slog.LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// effectiveLevel walks up dotted component names until an override is found.
func effectiveLevel(component string) slog.Level {
	levelsMu.RLock()
	defer levelsMu.RUnlock()

	path := component
	for {
		if level, ok := componentLevels[path]; ok {
			return level
		}

		idx := strings.LastIndex(path, ".")
		if idx < 0 {
			break
		}

		path = path[:idx]
	}

	return defaultLevel
}
