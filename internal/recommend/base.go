// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"sync"
)

// baseModel carries the shared name, fitted flag and locking discipline
// for all models: Fit takes the write lock, prediction methods take the
// read lock, so a refit never interleaves with in-flight predictions.
type baseModel struct {
	name   string
	mu     sync.RWMutex
	fitted bool
}

func newBaseModel(name string) baseModel {
	return baseModel{name: name}
}

// Name returns the model identifier.
func (b *baseModel) Name() string { return b.name }

// IsFitted reports whether Fit has completed at least once.
func (b *baseModel) IsFitted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fitted
}

func (b *baseModel) acquireFitLock()     { b.mu.Lock() }
func (b *baseModel) releaseFitLock()     { b.mu.Unlock() }
func (b *baseModel) acquirePredictLock() { b.mu.RLock() }
func (b *baseModel) releasePredictLock() { b.mu.RUnlock() }

// markFitted flips the fitted flag (must hold the fit lock).
func (b *baseModel) markFitted() { b.fitted = true }

// contextCancelled is a non-blocking context check for fit loops.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
