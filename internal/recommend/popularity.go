// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"sort"
)

// Popularity ranks the catalog by aggregate quality: rating descending,
// community size descending, item ID ascending. It ignores the user
// entirely and serves as the cold-start fallback for users without any
// rating history.
type Popularity struct {
	baseModel

	cfg Config

	sortedIDs []int
	catalog   map[int]Item
}

// NewPopularity creates an unfitted popularity model.
func NewPopularity(cfg Config) *Popularity {
	return &Popularity{
		baseModel: newBaseModel("popularity"),
		cfg:       cfg.withDefaults(),
	}
}

// Fit ranks catalog items with a rating at or above the configured
// floor. Rating events are not used.
func (p *Popularity) Fit(ctx context.Context, items []Item, _ []RatingEvent) error {
	p.acquireFitLock()
	defer p.releaseFitLock()

	if contextCancelled(ctx) {
		return ctx.Err()
	}

	p.catalog = make(map[int]Item, len(items))
	ranked := make([]Item, 0, len(items))
	for _, it := range items {
		p.catalog[it.ID] = it
		if it.Rating >= p.cfg.MinPopularRating {
			ranked = append(ranked, it)
		}
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Rating != ranked[b].Rating {
			return ranked[a].Rating > ranked[b].Rating
		}
		if ranked[a].Members != ranked[b].Members {
			return ranked[a].Members > ranked[b].Members
		}
		return ranked[a].ID < ranked[b].ID
	})

	p.sortedIDs = make([]int, len(ranked))
	for i, it := range ranked {
		p.sortedIDs[i] = it.ID
	}

	p.markFitted()
	return nil
}

// TopN returns the n highest-ranked item IDs.
func (p *Popularity) TopN(n int) []int {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	if n <= 0 {
		return []int{}
	}
	if n > len(p.sortedIDs) {
		n = len(p.sortedIDs)
	}
	out := make([]int, n)
	copy(out, p.sortedIDs[:n])
	return out
}

// Predict implements Recommender; the user ID is ignored.
func (p *Popularity) Predict(_ context.Context, _, n int) ([]int, error) {
	if !p.IsFitted() {
		return nil, ErrNotFitted
	}
	return p.TopN(n), nil
}

// PredictRating returns the item's catalog-average rating, or the
// midpoint default when the item is unknown or unrated.
func (p *Popularity) PredictRating(_ context.Context, _, itemID int) (float64, error) {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	if !p.fitted {
		return 0, ErrNotFitted
	}
	if it, ok := p.catalog[itemID]; ok && it.Rating > 0 {
		return it.Rating, nil
	}
	return DefaultRating, nil
}
