// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package logsink

import (
	"context"
	"errors"
	"log/slog"
)

// fanout delivers each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range f {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range f {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanout, len(f))
	for i, handler := range f {
		derived[i] = handler.WithAttrs(attrs)
	}
	return derived
}

func (f fanout) WithGroup(name string) slog.Handler {
	derived := make(fanout, len(f))
	for i, handler := range f {
		derived[i] = handler.WithGroup(name)
	}
	return derived
}
