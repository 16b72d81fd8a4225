package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LogEntry is one captured log record with every attribute resolved,
// including attributes bound through Logger.With.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture collects the records written through a captured logger so
// tests can assert on what a component logged.
type LogCapture struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Capture returns a logger whose output lands in the returned capture.
// All levels are recorded.
func Capture() (*slog.Logger, *LogCapture) {
	capture := &LogCapture{}
	return slog.New(&captureHandler{capture: capture}), capture
}

// Entries returns a copy of every captured record in log order.
func (c *LogCapture) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// ByLevel returns the captured records of one level.
func (c *LogCapture) ByLevel(level slog.Level) []LogEntry {
	var out []LogEntry
	for _, e := range c.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether a record at the level contains the message
// substring.
func (c *LogCapture) Has(level slog.Level, message string) bool {
	for _, e := range c.ByLevel(level) {
		if strings.Contains(e.Message, message) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries the attribute, whether it
// was logged inline or bound with Logger.With.
func (c *LogCapture) HasAttr(key string, value any) bool {
	for _, e := range c.Entries() {
		if got, ok := e.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Len returns the number of captured records.
func (c *LogCapture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset drops every captured record.
func (c *LogCapture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
}

func (c *LogCapture) append(e LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

// captureHandler feeds records into a LogCapture. Attributes bound via
// WithAttrs and group prefixes are carried on the handler chain and
// folded into each entry, so component fields added with Logger.With
// stay visible to assertions.
type captureHandler struct {
	capture *LogCapture
	bound   []slog.Attr
	groups  []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.bound)+r.NumAttrs())
	for _, a := range h.bound {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	h.capture.append(LogEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(h.bound)+len(attrs))
	bound = append(bound, h.bound...)
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range attrs {
		bound = append(bound, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &captureHandler{capture: h.capture, bound: bound, groups: h.groups}
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &captureHandler{capture: h.capture, bound: h.bound, groups: groups}
}
