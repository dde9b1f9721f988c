package testutil

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// LogRecord is one captured log call. Attrs include those bound with
// Logger.With, keyed by their group-qualified name.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logStore is shared by a LogCapture and every handler derived from it.
type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that records every call for assertions.
type LogCapture struct {
	store  *logStore
	tb     testing.TB
	attrs  []slog.Attr
	groups []string
}

// NewTestLogger returns a logger whose records are captured, and the
// capture. Records are also echoed to the test log.
func NewTestLogger(tb testing.TB) (*slog.Logger, *LogCapture) {
	c := &LogCapture{store: &logStore{}, tb: tb}
	return slog.New(c), c
}

// Enabled captures every level.
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle records r together with the attributes bound to c.
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.attrs)+r.NumAttrs())
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	prefix := c.prefix()
	r.Attrs(func(a slog.Attr) bool {
		attrs[prefix+a.Key] = a.Value.Any()
		return true
	})

	c.store.mu.Lock()
	c.store.records = append(c.store.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	c.store.mu.Unlock()

	if c.tb != nil {
		c.tb.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs returns a handler sharing c's records with attrs bound.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *c
	next.attrs = slices.Clone(c.attrs)
	prefix := c.prefix()
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &next
}

// WithGroup returns a handler qualifying later keys with name.
func (c *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	next := *c
	next.groups = append(slices.Clone(c.groups), name)
	return &next
}

func (c *LogCapture) prefix() string {
	if len(c.groups) == 0 {
		return ""
	}
	return strings.Join(c.groups, ".") + "."
}

// GetRecords returns a copy of the captured records.
func (c *LogCapture) GetRecords() []LogRecord {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return slices.Clone(c.store.records)
}

// GetRecordsByLevel returns the records logged at level.
func (c *LogCapture) GetRecordsByLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range c.GetRecords() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// ContainsMessage reports whether any record message contains message.
func (c *LogCapture) ContainsMessage(message string) bool {
	return slices.ContainsFunc(c.GetRecords(), func(r LogRecord) bool {
		return strings.Contains(r.Message, message)
	})
}

// ContainsAttr reports whether any record carries key=value.
func (c *LogCapture) ContainsAttr(key string, value any) bool {
	return slices.ContainsFunc(c.GetRecords(), func(r LogRecord) bool {
		v, ok := r.Attrs[key]
		return ok && v == value
	})
}

// Clear drops the captured records.
func (c *LogCapture) Clear() {
	c.store.mu.Lock()
	c.store.records = nil
	c.store.mu.Unlock()
}

// Count returns the number of captured records.
func (c *LogCapture) Count() int {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return len(c.store.records)
}

// AssertLogContains fails tb unless a record at level contains message.
func AssertLogContains(tb testing.TB, c *LogCapture, level slog.Level, message string) {
	tb.Helper()
	var seen []string
	for _, r := range c.GetRecordsByLevel(level) {
		if strings.Contains(r.Message, message) {
			return
		}
		seen = append(seen, r.Message)
	}
	assert.Failf(tb, "log message not found", "no %s record contains %q; captured: %q", level, message, seen)
}

// AssertLogAttr fails tb unless some record carries key=value.
func AssertLogAttr(tb testing.TB, c *LogCapture, key string, value any) {
	tb.Helper()
	if !c.ContainsAttr(key, value) {
		assert.Failf(tb, "log attribute not found", "no record carries %s=%v; captured: %v", key, value, c.GetRecords())
	}
}

// AssertNoErrors fails tb if any error-level record was captured.
func AssertNoErrors(tb testing.TB, c *LogCapture) {
	tb.Helper()
	if errs := c.GetRecordsByLevel(slog.LevelError); len(errs) > 0 {
		assert.Failf(tb, "unexpected error logs", "%v", errs)
	}
}
