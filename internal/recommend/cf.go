// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import "sort"

// cfModel carries the state shared by the two neighborhood CF models:
// the preference matrix with both orientations, per-axis mean ratings
// and the normalized popularity signal used for optional blending.
type cfModel struct {
	baseModel

	cfg Config

	pref      *PreferenceMatrix
	itemUsers *Matrix // transpose of pref.Ratings: items × users

	userMeans    []float64
	itemMeans    []float64
	globalMean   float64
	meanUserMean float64
	meanItemMean float64

	// popNorm is each item's rating count divided by the maximum
	// count, in [0, 1].
	popNorm []float64
}

// fitCommon rebuilds the shared CF state from rating events.
// Callers must hold the fit lock.
func (m *cfModel) fitCommon(events []RatingEvent) {
	m.pref = BuildPreferenceMatrix(events)
	m.initDerived()
}

// initDerived computes everything derivable from the preference
// matrix. Also used when restoring persisted state.
func (m *cfModel) initDerived() {
	m.itemUsers = m.pref.Ratings.Transpose()

	m.userMeans = m.pref.Ratings.RowMeans()
	m.itemMeans = m.itemUsers.RowMeans()
	m.globalMean = m.pref.Ratings.GlobalMean()
	m.meanUserMean = meanOf(m.userMeans)
	m.meanItemMean = meanOf(m.itemMeans)

	m.popNorm = make([]float64, m.itemUsers.Rows)
	var maxCount int
	for i := 0; i < m.itemUsers.Rows; i++ {
		if c := m.itemUsers.RowPtr[i+1] - m.itemUsers.RowPtr[i]; c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		for i := 0; i < m.itemUsers.Rows; i++ {
			count := m.itemUsers.RowPtr[i+1] - m.itemUsers.RowPtr[i]
			m.popNorm[i] = float64(count) / float64(maxCount)
		}
	}
}

func meanOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// neighbor is one rated entity considered for a weighted-average
// prediction.
type neighbor struct {
	idx    int
	sim    float64
	rating float64
}

// weightedAverage predicts from the k most similar neighbors. Only
// positive similarities contribute; ties on similarity keep ascending
// index order. Returns false when no neighbor qualifies, so callers
// can fall back without dividing by zero.
func weightedAverage(neighbors []neighbor, k int) (float64, bool) {
	if len(neighbors) == 0 || k <= 0 {
		return 0, false
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].sim > neighbors[b].sim
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	var num, den float64
	for _, nb := range neighbors {
		num += nb.sim * nb.rating
		den += nb.sim
	}
	if den <= 0 {
		return 0, false
	}
	return num / den, true
}

// blendPopularity mixes normalized popularity into raw ranked scores in
// place: score' = (1-w)*score/max(score) + w*pop*max(score). A zero
// weight or an all-zero score vector leaves scores untouched.
func blendPopularity(scores, popNorm []float64, w float64) {
	if w <= 0 {
		return
	}
	var maxScore float64
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		return
	}
	for i := range scores {
		scores[i] = (1-w)*scores[i]/maxScore + w*popNorm[i]*maxScore
	}
}

// rankTopN returns up to n item IDs with positive scores, descending,
// ties broken by ascending item index. rated candidates are excluded.
func (m *cfModel) rankTopN(scores []float64, rated map[int]struct{}, n int) []int {
	cand := make([]int, 0, len(scores))
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		if _, ok := rated[i]; ok {
			continue
		}
		cand = append(cand, i)
	}
	sort.SliceStable(cand, func(a, b int) bool {
		return scores[cand[a]] > scores[cand[b]]
	})
	if len(cand) > n {
		cand = cand[:n]
	}
	out := make([]int, len(cand))
	for i, idx := range cand {
		out[i] = m.pref.Items.ID(idx)
	}
	return out
}

// fallbackRating resolves a rating prediction when no neighborhood
// estimate exists: candidate item mean, then user mean, then global
// mean, then the fixed midpoint.
func (m *cfModel) fallbackRating(userIdx, itemIdx int) float64 {
	if m.itemMeans[itemIdx] > 0 {
		return m.itemMeans[itemIdx]
	}
	if m.userMeans[userIdx] > 0 {
		return m.userMeans[userIdx]
	}
	if m.globalMean > 0 {
		return m.globalMean
	}
	return DefaultRating
}

// axisMeanRating resolves a rating prediction when the user or the item
// is outside the trained matrix: the global mean of whichever axis is
// known, the midpoint when neither is.
func (m *cfModel) axisMeanRating(userKnown, itemKnown bool) float64 {
	if itemKnown && m.meanItemMean > 0 {
		return m.meanItemMean
	}
	if userKnown && m.meanUserMean > 0 {
		return m.meanUserMean
	}
	return DefaultRating
}
