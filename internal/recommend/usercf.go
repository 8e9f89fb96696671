// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import "context"

// UserCF is user-based collaborative filtering: an item's predicted
// rating is the similarity-weighted average of the ratings given to it
// by the k users most similar to the target. User similarity is cosine
// over the rows of the preference matrix.
type UserCF struct {
	cfModel

	userSim *SimilarityProvider
}

// NewUserCF creates an unfitted user-based CF model.
func NewUserCF(cfg Config) *UserCF {
	m := &UserCF{}
	m.baseModel = newBaseModel("user_based")
	m.cfg = cfg.withDefaults()
	return m
}

// Fit rebuilds the preference matrix and user-user similarities.
func (m *UserCF) Fit(ctx context.Context, _ []Item, ratings []RatingEvent) error {
	m.acquireFitLock()
	defer m.releaseFitLock()

	if contextCancelled(ctx) {
		return ctx.Err()
	}

	m.fitCommon(ratings)
	m.userSim = NewSimilarityProvider(m.pref.Ratings, m.cfg.MaterializeThreshold)

	m.markFitted()
	return nil
}

// Predict returns up to n unrated item IDs ranked for the user, scored
// by the ratings of the most similar users who rated each candidate.
func (m *UserCF) Predict(ctx context.Context, userID, n int) ([]int, error) {
	m.acquirePredictLock()
	defer m.releasePredictLock()

	if !m.fitted {
		return nil, ErrNotFitted
	}
	uIdx, ok := m.pref.Users.Index(userID)
	if !ok || n <= 0 {
		return []int{}, nil
	}

	ratedCols, _ := m.pref.Ratings.Row(uIdx)
	if len(ratedCols) == 0 {
		return []int{}, nil
	}
	rated := make(map[int]struct{}, len(ratedCols))
	for _, c := range ratedCols {
		rated[c] = struct{}{}
	}

	simRow := m.userSim.Row(uIdx)
	scores := make([]float64, m.pref.Items.Len())
	for c := range scores {
		if _, isRated := rated[c]; isRated {
			continue
		}
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}
		if est, ok := m.estimateFromRaters(simRow, uIdx, c); ok {
			scores[c] = est
		}
	}

	blendPopularity(scores, m.popNorm, m.cfg.PopularityWeight)
	return m.rankTopN(scores, rated, n), nil
}

// estimateFromRaters predicts the rating of item itemIdx from the k
// most similar users who rated it, the target user excluded.
func (m *UserCF) estimateFromRaters(simRow []float64, uIdx, itemIdx int) (float64, bool) {
	raters, ratings := m.itemUsers.Row(itemIdx)
	neighbors := make([]neighbor, 0, len(raters))
	for i, v := range raters {
		if v == uIdx {
			continue
		}
		if s := simRow[v]; s > 0 {
			neighbors = append(neighbors, neighbor{idx: v, sim: s, rating: ratings[i]})
		}
	}
	return weightedAverage(neighbors, m.cfg.KNeighbors)
}

// PredictRating estimates the user's rating for one item, falling back
// through item mean, user mean, global mean and the fixed midpoint.
func (m *UserCF) PredictRating(_ context.Context, userID, itemID int) (float64, error) {
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

	simRow := m.userSim.Row(uIdx)
	if est, ok := m.estimateFromRaters(simRow, uIdx, iIdx); ok {
		return est, nil
	}
	return m.fallbackRating(uIdx, iIdx), nil
}
