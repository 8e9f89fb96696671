// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
)

// itemCFEvents: users 2 and 3 rate items 10 and 20 identically, so the
// two items are strong neighbors; user 1 has only rated item 20.
func itemCFEvents() []RatingEvent {
	return []RatingEvent{
		{UserID: 2, ItemID: 10, Rating: 8},
		{UserID: 3, ItemID: 10, Rating: 6},
		{UserID: 2, ItemID: 20, Rating: 8},
		{UserID: 3, ItemID: 20, Rating: 6},
		{UserID: 1, ItemID: 20, Rating: 7},
	}
}

func TestItemCFNotFitted(t *testing.T) {
	m := NewItemCF(DefaultConfig())

	if _, err := m.Predict(context.Background(), 1, 5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Predict error = %v, want ErrNotFitted", err)
	}
	if _, err := m.PredictRating(context.Background(), 1, 10); !errors.Is(err, ErrNotFitted) {
		t.Errorf("PredictRating error = %v, want ErrNotFitted", err)
	}
}

func TestItemCFPredictRatingFromNeighbor(t *testing.T) {
	m := NewItemCF(DefaultConfig())
	if err := m.Fit(context.Background(), nil, itemCFEvents()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// User 1's only neighbor for item 10 is item 20, rated 7; the
	// weighted average over a single neighbor is that rating.
	got, err := m.PredictRating(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("PredictRating: %v", err)
	}
	if got != 7 {
		t.Errorf("PredictRating(1, 10) = %v, want 7", got)
	}
}

func TestItemCFPredictRanksUnratedItems(t *testing.T) {
	m := NewItemCF(DefaultConfig())
	if err := m.Fit(context.Background(), nil, itemCFEvents()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	got, err := m.Predict(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(got) != 1 || got[0] != 10 {
		t.Errorf("Predict(1) = %v, want [10]", got)
	}

	// Fully-rated users have nothing left to rank.
	got, err = m.Predict(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Predict(2) = %v, want empty", got)
	}
}

func TestItemCFUnknownEntities(t *testing.T) {
	m := NewItemCF(DefaultConfig())
	if err := m.Fit(context.Background(), nil, itemCFEvents()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Unknown user: empty ranked list, never an error.
	recs, err := m.Predict(context.Background(), 99, 5)
	if err != nil || len(recs) != 0 {
		t.Errorf("Predict(unknown) = (%v, %v), want ([], nil)", recs, err)
	}

	// Item means: 10 -> 7, 20 -> 7; user means: 7, 8, 6.
	tests := []struct {
		name           string
		userID, itemID int
		want           float64
	}{
		{"unknown user, known item", 99, 10, 7},
		{"known user, unknown item", 1, 999, 7},
		{"both unknown", 99, 999, DefaultRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.PredictRating(context.Background(), tt.userID, tt.itemID)
			if err != nil {
				t.Fatalf("PredictRating: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("PredictRating(%d, %d) = %v, want %v", tt.userID, tt.itemID, got, tt.want)
			}
		})
	}
}

func TestItemCFPredictRatingAlreadyRatedItem(t *testing.T) {
	// Items 1 and 2 have proportional rating columns, so their cosine
	// similarity is exactly 1, as is item 1's self-similarity. The
	// estimate for the already-rated (1, 1) pair averages the user's
	// own rating with the neighbor's.
	events := []RatingEvent{
		{UserID: 1, ItemID: 1, Rating: 10},
		{UserID: 1, ItemID: 2, Rating: 2},
		{UserID: 2, ItemID: 1, Rating: 10},
		{UserID: 2, ItemID: 2, Rating: 2},
	}
	m := NewItemCF(DefaultConfig())
	if err := m.Fit(context.Background(), nil, events); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	got, err := m.PredictRating(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("PredictRating: %v", err)
	}
	if math.Abs(got-6) > 1e-12 {
		t.Errorf("PredictRating(1, 1) = %v, want 6 ((1*10 + 1*2) / 2)", got)
	}
}

func TestItemCFDegenerateFit(t *testing.T) {
	m := NewItemCF(DefaultConfig())
	if err := m.Fit(context.Background(), nil, nil); err != nil {
		t.Fatalf("Fit on empty input: %v", err)
	}

	recs, err := m.Predict(context.Background(), 1, 5)
	if err != nil || len(recs) != 0 {
		t.Errorf("Predict = (%v, %v), want ([], nil)", recs, err)
	}
	got, err := m.PredictRating(context.Background(), 1, 10)
	if err != nil || got != DefaultRating {
		t.Errorf("PredictRating = (%v, %v), want (%v, nil)", got, err, DefaultRating)
	}
}

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name      string
		neighbors []neighbor
		k         int
		want      float64
		wantOK    bool
	}{
		{
			name: "truncates to k most similar",
			neighbors: []neighbor{
				{idx: 0, sim: 0.5, rating: 10},
				{idx: 1, sim: 0.5, rating: 2},
				{idx: 2, sim: 0.3, rating: 6},
			},
			k:      2,
			want:   6, // (0.5*10 + 0.5*2) / 1.0
			wantOK: true,
		},
		{
			name:      "no neighbors",
			neighbors: nil,
			k:         5,
			wantOK:    false,
		},
		{
			name: "single neighbor returns its rating",
			neighbors: []neighbor{
				{idx: 0, sim: 0.1, rating: 9},
			},
			k:      20,
			want:   9,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := weightedAverage(tt.neighbors, tt.k)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("weightedAverage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlendPopularity(t *testing.T) {
	scores := []float64{2, 1}
	blendPopularity(scores, []float64{0.5, 1}, 0.5)

	// max(score) = 2:
	//   scores[0] = 0.5*2/2 + 0.5*0.5*2 = 1.0
	//   scores[1] = 0.5*1/2 + 0.5*1.0*2 = 1.25
	if math.Abs(scores[0]-1.0) > 1e-12 || math.Abs(scores[1]-1.25) > 1e-12 {
		t.Errorf("blended scores = %v, want [1 1.25]", scores)
	}

	// Zero weight leaves scores untouched.
	scores = []float64{2, 1}
	blendPopularity(scores, []float64{0.5, 1}, 0)
	if scores[0] != 2 || scores[1] != 1 {
		t.Errorf("scores changed with zero weight: %v", scores)
	}

	// All-zero scores stay zero rather than dividing by zero.
	scores = []float64{0, 0}
	blendPopularity(scores, []float64{0.5, 1}, 0.5)
	if scores[0] != 0 || scores[1] != 0 {
		t.Errorf("zero scores changed: %v", scores)
	}
}
