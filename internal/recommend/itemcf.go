// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import "context"

// ItemCF is item-based collaborative filtering: an item's predicted
// rating is the similarity-weighted average of the user's own ratings
// on the k most similar items. Item similarity is cosine over the
// columns of the preference matrix.
type ItemCF struct {
	cfModel

	itemSim *SimilarityProvider
}

// NewItemCF creates an unfitted item-based CF model.
func NewItemCF(cfg Config) *ItemCF {
	m := &ItemCF{}
	m.baseModel = newBaseModel("item_based")
	m.cfg = cfg.withDefaults()
	return m
}

// Fit rebuilds the preference matrix and item-item similarities.
// The catalog is not used. Input with no explicit ratings produces a
// valid empty model.
func (m *ItemCF) Fit(ctx context.Context, _ []Item, ratings []RatingEvent) error {
	m.acquireFitLock()
	defer m.releaseFitLock()

	if contextCancelled(ctx) {
		return ctx.Err()
	}

	m.fitCommon(ratings)
	m.itemSim = NewSimilarityProvider(m.itemUsers, m.cfg.MaterializeThreshold)

	m.markFitted()
	return nil
}

// Predict returns up to n unrated item IDs ranked for the user.
// Unknown users and users with no ratings yield an empty slice.
func (m *ItemCF) Predict(ctx context.Context, userID, n int) ([]int, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if !m.fitted {
		return nil, ErrNotFitted
	}
	uIdx, ok := m.pref.Users.Index(userID)
	if !ok || n <= 0 {
		return []int{}, nil
	}

	ratedCols, ratedVals := m.pref.Ratings.Row(uIdx)
	if len(ratedCols) == 0 {
		return []int{}, nil
	}
	rated := make(map[int]struct{}, len(ratedCols))
	for _, c := range ratedCols {
		rated[c] = struct{}{}
	}

	scores := make([]float64, m.pref.Items.Len())
	for c := range scores {
		if _, isRated := rated[c]; isRated {
			continue
		}
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}
		simRow := m.itemSim.Row(c)
		neighbors := make([]neighbor, 0, len(ratedCols))
		for i, rc := range ratedCols {
			if s := simRow[rc]; s > 0 {
				neighbors = append(neighbors, neighbor{idx: rc, sim: s, rating: ratedVals[i]})
			}
		}
		if est, ok := weightedAverage(neighbors, m.cfg.KNeighbors); ok {
			scores[c] = est
		}
	}

	blendPopularity(scores, m.popNorm, m.cfg.PopularityWeight)
	return m.rankTopN(scores, rated, n), nil
}

// PredictRating estimates the user's rating for one item, falling back
// through item mean, user mean, global mean and the fixed midpoint.
func (m *ItemCF) PredictRating(_ context.Context, userID, itemID int) (float64, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if !m.fitted {
		return 0, ErrNotFitted
	}

	uIdx, userKnown := m.pref.Users.Index(userID)
	iIdx, itemKnown := m.pref.Items.Index(itemID)
	if !userKnown || !itemKnown {
		return m.axisMeanRating(userKnown, itemKnown), nil
	}

	// The candidate itself stays in the neighborhood: for an
	// already-rated pair its self-similarity of one anchors the
	// estimate to the user's own rating.
	ratedCols, ratedVals := m.pref.Ratings.Row(uIdx)
	simRow := m.itemSim.Row(iIdx)
	neighbors := make([]neighbor, 0, len(ratedCols))
	for i, rc := range ratedCols {
		if s := simRow[rc]; s > 0 {
			neighbors = append(neighbors, neighbor{idx: rc, sim: s, rating: ratedVals[i]})
		}
	}
	if est, ok := weightedAverage(neighbors, m.cfg.KNeighbors); ok {
		return est, nil
	}
	return m.fallbackRating(uIdx, iIdx), nil
}
