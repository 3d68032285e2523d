// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// Record is a captured log line with its attributes flattened to a map.
// Attributes added via Logger.With are included; group prefixes are
// joined with ".".
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that captures every record at or above
// its level. Handlers derived through WithAttrs and WithGroup share the
// same underlying record list.
type LogRecorder struct {
	shared *recorderState
	attrs  []slog.Attr
	group  string
}

type recorderState struct {
	mu      sync.Mutex
	level   slog.Level
	records []Record
}

// NewLogRecorder returns a recorder and a logger writing to it. Debug
// records are captured too.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	recorder := &LogRecorder{shared: &recorderState{level: slog.LevelDebug}}
	return recorder, slog.New(recorder)
}

// Enabled implements slog.Handler.
func (r *LogRecorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.shared.level
}

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	captured := Record{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   make(map[string]any, record.NumAttrs()+len(r.attrs)),
	}
	for _, attr := range r.attrs {
		flatten(captured.Attrs, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		flatten(captured.Attrs, r.group, attr)
		return true
	})

	r.shared.mu.Lock()
	r.shared.records = append(r.shared.records, captured)
	r.shared.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *r
	derived.attrs = make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	derived.attrs = append(derived.attrs, r.attrs...)
	for _, attr := range attrs {
		if r.group != "" {
			attr.Key = r.group + "." + attr.Key
		}
		derived.attrs = append(derived.attrs, attr)
	}
	return &derived
}

// WithGroup implements slog.Handler.
func (r *LogRecorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	derived := *r
	if r.group != "" {
		derived.group = r.group + "." + name
	} else {
		derived.group = name
	}
	return &derived
}

// Records returns a copy of everything captured so far.
func (r *LogRecorder) Records() []Record {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]Record(nil), r.shared.records...)
}

// Messages returns the messages of the captured records, in order.
func (r *LogRecorder) Messages() []string {
	records := r.Records()
	messages := make([]string, len(records))
	for i, record := range records {
		messages[i] = record.Message
	}
	return messages
}

// Count returns how many captured records have the given message.
func (r *LogRecorder) Count(message string) int {
	count := 0
	for _, record := range r.Records() {
		if record.Message == message {
			count++
		}
	}
	return count
}

func flatten(into map[string]any, prefix string, attr slog.Attr) {
	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		for _, member := range value.Group() {
			flatten(into, key, member)
		}
		return
	}
	into[key] = value.Any()
}
