// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"sort"
)

// ContentBased recommends items whose genre profiles resemble what a
// user already likes. It fits TF-IDF vectors over genre tags and ranks
// by cosine similarity; it has no per-user signal of its own, so ranked
// recommendations require an explicit liked-item list (the hybrid
// derives one from the rating history).
type ContentBased struct {
	baseModel

	cfg Config

	items   IndexMap
	vectors *ContentVectors
	sim     *SimilarityProvider
	catalog map[int]Item
}

// NewContentBased creates an unfitted content-based model.
func NewContentBased(cfg Config) *ContentBased {
	return &ContentBased{
		baseModel: newBaseModel("content_based"),
		cfg:       cfg.withDefaults(),
	}
}

// Fit builds TF-IDF vectors and the item similarity provider from the
// catalog. Rating events are not used. An empty catalog produces a
// valid empty model.
func (c *ContentBased) Fit(ctx context.Context, items []Item, _ []RatingEvent) error {
	c.acquireFitLock()
	defer c.releaseFitLock()

	if contextCancelled(ctx) {
		return ctx.Err()
	}

	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	c.items = NewIndexMap(ids)

	c.catalog = make(map[int]Item, len(items))
	docs := make([][]string, c.items.Len())
	for _, it := range items {
		c.catalog[it.ID] = it
		idx, _ := c.items.Index(it.ID)
		docs[idx] = it.Genres
	}

	c.vectors = BuildContentVectors(docs)
	c.sim = NewSimilarityProvider(c.vectors.Rows, c.cfg.MaterializeThreshold)

	c.markFitted()
	return nil
}

// Similar returns up to n item IDs most similar to itemID, the item
// itself excluded. Ties are broken by catalog order. An unknown item
// yields an empty slice.
func (c *ContentBased) Similar(itemID, n int) ([]int, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.fitted {
		return nil, ErrNotFitted
	}
	idx, ok := c.items.Index(itemID)
	if !ok || n <= 0 {
		return []int{}, nil
	}

	ranked := c.rankSimilar(idx, n)
	out := make([]int, len(ranked))
	for i, j := range ranked {
		out[i] = c.items.ID(j)
	}
	return out, nil
}

// rankSimilar returns up to n item indices ordered by similarity to
// idx, descending, index ascending on ties, self excluded.
// Callers must hold the predict lock.
func (c *ContentBased) rankSimilar(idx, n int) []int {
	row := c.sim.Row(idx)
	cand := make([]int, 0, len(row)-1)
	for j := range row {
		if j != idx {
			cand = append(cand, j)
		}
	}
	sort.SliceStable(cand, func(a, b int) bool {
		return row[cand[a]] > row[cand[b]]
	})
	if len(cand) > n {
		cand = cand[:n]
	}
	return cand
}

// RecommendFromLiked ranks items by how many of the user's liked items
// list them among their most similar neighbors. Each liked item votes
// for its top similar items; already-liked items never appear in the
// result. Ties keep first-vote order.
func (c *ContentBased) RecommendFromLiked(likedIDs []int, n int) ([]int, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.fitted {
		return nil, ErrNotFitted
	}
	if n <= 0 || len(likedIDs) == 0 {
		return []int{}, nil
	}

	liked := make(map[int]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = struct{}{}
	}

	votes := make(map[int]int)
	order := make([]int, 0)
	for _, id := range likedIDs {
		idx, ok := c.items.Index(id)
		if !ok {
			continue
		}
		for _, j := range c.rankSimilar(idx, c.cfg.SimilarPerLiked) {
			candID := c.items.ID(j)
			if _, isLiked := liked[candID]; isLiked {
				continue
			}
			if _, seen := votes[candID]; !seen {
				order = append(order, candID)
			}
			votes[candID]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return votes[order[a]] > votes[order[b]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order, nil
}

// Predict implements Recommender. With no liked-item signal available
// the content model cannot rank for a bare user ID and returns an empty
// list; use RecommendFromLiked (or the hybrid) for ranked output.
func (c *ContentBased) Predict(_ context.Context, _, _ int) ([]int, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.fitted {
		return nil, ErrNotFitted
	}
	return []int{}, nil
}

// PredictRating returns the item's catalog-average rating, or the
// midpoint default when the item is unknown or unrated.
func (c *ContentBased) PredictRating(_ context.Context, _, itemID int) (float64, error) {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	if !c.fitted {
		return 0, ErrNotFitted
	}
	if it, ok := c.catalog[itemID]; ok && it.Rating > 0 {
		return it.Rating, nil
	}
	return DefaultRating, nil
}
