// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ctxKey is the context key type for run-scoped loggers.
type ctxKey struct{}

// runIDField is the structured field name for training-run correlation.
const runIDField = "run_id"

// WithRunID returns a context carrying a child logger tagged with the
// given training-run identifier. All pipeline stages log through it so
// a single run can be filtered out of aggregated output.
func WithRunID(ctx context.Context, runID string) context.Context {
	l := Logger().With().Str(runIDField, runID).Logger()
	return context.WithValue(ctx, ctxKey{}, l)
}

// Ctx returns the logger stored in ctx, or the global logger if none
// has been attached.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return Logger()
}
