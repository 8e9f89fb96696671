// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package eval

import (
	"math"
	"testing"
)

func relevantSet(ids ...int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func TestPrecisionRecallF1AtK(t *testing.T) {
	recommended := []int{1, 2, 3}
	relevant := relevantSet(2, 3, 4)

	tests := []struct {
		name string
		fn   func([]int, map[int]struct{}, int) float64
		want float64
	}{
		{"precision", PrecisionAtK, 2.0 / 3},
		{"recall", RecallAtK, 2.0 / 3},
		{"f1", F1AtK, 2.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(recommended, relevant, 3); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s@3 = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRankingMetricsDegenerateInputs(t *testing.T) {
	fns := map[string]func([]int, map[int]struct{}, int) float64{
		"precision": PrecisionAtK,
		"recall":    RecallAtK,
		"f1":        F1AtK,
		"ndcg":      NDCGAtK,
	}
	for name, fn := range fns {
		if got := fn(nil, relevantSet(1), 5); got != 0 {
			t.Errorf("%s with no recommendations = %v, want 0", name, got)
		}
		if got := fn([]int{1, 2}, nil, 5); got != 0 {
			t.Errorf("%s with no relevant items = %v, want 0", name, got)
		}
		if got := fn([]int{1, 2}, relevantSet(1), 0); got != 0 {
			t.Errorf("%s with k=0 = %v, want 0", name, got)
		}
	}
}

func TestPrecisionAtKTruncates(t *testing.T) {
	// Only the first two of four recommendations count at k=2.
	got := PrecisionAtK([]int{9, 1, 2, 3}, relevantSet(1, 2, 3), 2)
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("precision@2 = %v, want 0.5", got)
	}
}

func TestPrecisionAtKShortList(t *testing.T) {
	// A single relevant recommendation fills one of five slots; the
	// four empty slots count against precision.
	got := PrecisionAtK([]int{1}, relevantSet(1, 2, 3), 5)
	if math.Abs(got-0.2) > 1e-12 {
		t.Errorf("precision@5 = %v, want 0.2", got)
	}

	// Recall keeps |relevant| as its denominator for the same input.
	if got := RecallAtK([]int{1}, relevantSet(1, 2, 3), 5); math.Abs(got-1.0/3) > 1e-12 {
		t.Errorf("recall@5 = %v, want 1/3", got)
	}
}

func TestNDCGAtK(t *testing.T) {
	tests := []struct {
		name        string
		recommended []int
		relevant    map[int]struct{}
		k           int
		want        float64
	}{
		{
			name:        "perfect ranking",
			recommended: []int{2, 3},
			relevant:    relevantSet(2, 3),
			k:           2,
			want:        1,
		},
		{
			name:        "relevant item demoted to second",
			recommended: []int{5, 1},
			relevant:    relevantSet(1),
			k:           2,
			want:        1 / math.Log2(3),
		},
		{
			name:        "no hits",
			recommended: []int{5, 6},
			relevant:    relevantSet(1),
			k:           2,
			want:        0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NDCGAtK(tt.recommended, tt.relevant, tt.k); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("NDCG = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverage(t *testing.T) {
	lists := [][]int{{1, 2}, {2, 3}}
	if got := Coverage(lists, 10); math.Abs(got-30) > 1e-12 {
		t.Errorf("Coverage = %v, want 30", got)
	}

	// More distinct items can only raise coverage.
	wider := append(lists, []int{7, 8})
	if Coverage(wider, 10) <= Coverage(lists, 10) {
		t.Error("coverage did not grow with additional distinct items")
	}

	if got := Coverage(lists, 0); got != 0 {
		t.Errorf("Coverage with empty catalog = %v, want 0", got)
	}
	if got := Coverage(nil, 10); got != 0 {
		t.Errorf("Coverage with no lists = %v, want 0", got)
	}
}

func TestDiversity(t *testing.T) {
	features := map[int][]string{
		1: {"Action", "Adventure"},
		2: {"action", "adventure"}, // same set after normalization
		3: {"Romance"},
	}

	tests := []struct {
		name  string
		items []int
		want  float64
	}{
		{"identical genre sets", []int{1, 2}, 0},
		{"disjoint genre sets", []int{1, 3}, 1},
		{"missing genre set is neutral", []int{1, 99}, 0.5},
		{"single item", []int{1}, 0},
		{"empty list", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diversity(tt.items, features); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Diversity(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

func TestRMSEAndMAE(t *testing.T) {
	actual := []float64{1, 2}
	predicted := []float64{2, 4}

	if got, want := RMSE(actual, predicted), math.Sqrt(2.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", got, want)
	}
	if got := MAE(actual, predicted); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("MAE = %v, want 1.5", got)
	}

	// Unequal lengths truncate to the shorter side.
	if got := MAE([]float64{1, 2, 100}, []float64{2, 4}); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("MAE with extra actuals = %v, want 1.5", got)
	}

	if RMSE(nil, nil) != 0 || MAE(nil, nil) != 0 {
		t.Error("empty inputs should score 0")
	}
}
