// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

// Package eval provides offline evaluation for recommendation models:
// rating-accuracy metrics (RMSE, MAE), ranking metrics (precision,
// recall, F1 and NDCG at k), catalog coverage and intra-list diversity,
// plus the per-user train/test splitter feeding them.
//
// All metric functions are pure and total: degenerate input (empty
// lists, empty relevance sets, zero denominators) yields 0 rather than
// an error or a NaN.
package eval

import (
	"math"
	"strings"
)

// RMSE returns the root mean squared error between paired actual and
// predicted ratings. Unequal lengths are truncated to the shorter.
func RMSE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// MAE returns the mean absolute error between paired actual and
// predicted ratings. Unequal lengths are truncated to the shorter.
func MAE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(n)
}

// PrecisionAtK returns the fraction of the k recommendation slots
// filled with relevant items. The denominator is always k, so a model
// returning fewer than k items is penalized for the unfilled slots.
func PrecisionAtK(recommended []int, relevant map[int]struct{}, k int) float64 {
	topK := truncate(recommended, k)
	if len(topK) == 0 || len(relevant) == 0 {
		return 0
	}
	hits := 0
	for _, id := range topK {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK returns the fraction of relevant items found in the top-k
// recommendations.
func RecallAtK(recommended []int, relevant map[int]struct{}, k int) float64 {
	topK := truncate(recommended, k)
	if len(topK) == 0 || len(relevant) == 0 {
		return 0
	}
	hits := 0
	for _, id := range topK {
		if _, ok := relevant[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// F1AtK returns the harmonic mean of precision@k and recall@k.
func F1AtK(recommended []int, relevant map[int]struct{}, k int) float64 {
	p := PrecisionAtK(recommended, relevant, k)
	r := RecallAtK(recommended, relevant, k)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// NDCGAtK returns the normalized discounted cumulative gain with binary
// gain: a relevant item at rank i contributes 1/log2(i+2). The ideal
// ordering places min(k, |relevant|) relevant items first.
func NDCGAtK(recommended []int, relevant map[int]struct{}, k int) float64 {
	topK := truncate(recommended, k)
	if len(topK) == 0 || len(relevant) == 0 {
		return 0
	}

	var dcg float64
	for i, id := range topK {
		if _, ok := relevant[id]; ok {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	ideal := min(k, len(relevant))
	var idcg float64
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// Coverage returns the percentage of the catalog that appears in at
// least one recommendation list.
func Coverage(recommendedLists [][]int, catalogSize int) float64 {
	if catalogSize <= 0 {
		return 0
	}
	seen := make(map[int]struct{})
	for _, list := range recommendedLists {
		for _, id := range list {
			seen[id] = struct{}{}
		}
	}
	return float64(len(seen)) / float64(catalogSize) * 100
}

// Diversity returns the average pairwise dissimilarity of one
// recommendation list, where dissimilarity is 1 minus the Jaccard
// overlap of the items' genre sets. Pairs with a missing genre set
// score a neutral 0.5. Lists with fewer than two items score 0.
func Diversity(items []int, features map[int][]string) float64 {
	if len(items) < 2 {
		return 0
	}

	sets := make([]map[string]struct{}, len(items))
	for i, id := range items {
		if tags, ok := features[id]; ok {
			set := make(map[string]struct{}, len(tags))
			for _, t := range tags {
				t = strings.ToLower(strings.TrimSpace(t))
				if t != "" {
					set[t] = struct{}{}
				}
			}
			sets[i] = set
		}
	}

	var sum float64
	var pairs int
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			pairs++
			if sets[i] == nil || sets[j] == nil {
				sum += 0.5
				continue
			}
			sum += 1 - jaccard(sets[i], sets[j])
		}
	}
	return sum / float64(pairs)
}

// jaccard returns |a∩b| / |a∪b|, with 0 for two empty sets.
func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func truncate(ids []int, k int) []int {
	if k <= 0 {
		return nil
	}
	if len(ids) > k {
		return ids[:k]
	}
	return ids
}
