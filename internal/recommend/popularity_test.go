// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"context"
	"errors"
	"testing"
)

func popularityCatalog() []Item {
	return []Item{
		{ID: 1, Name: "Everyday Hit", Rating: 8.5, Members: 10000},
		{ID: 2, Name: "Hidden Gem", Rating: 9.0, Members: 500},
		{ID: 3, Name: "Crowd Pleaser", Rating: 8.5, Members: 20000},
		{ID: 4, Name: "Forgettable", Rating: 5.0, Members: 90000},
		{ID: 5, Name: "Twin Peak", Rating: 8.5, Members: 10000},
	}
}

func TestPopularityNotFitted(t *testing.T) {
	p := NewPopularity(DefaultConfig())

	if _, err := p.Predict(context.Background(), 1, 5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Predict error = %v, want ErrNotFitted", err)
	}
	if _, err := p.PredictRating(context.Background(), 1, 1); !errors.Is(err, ErrNotFitted) {
		t.Errorf("PredictRating error = %v, want ErrNotFitted", err)
	}
}

func TestPopularityRanking(t *testing.T) {
	p := NewPopularity(DefaultConfig())
	if err := p.Fit(context.Background(), popularityCatalog(), nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Item 4 sits below the rating floor; ties on rating break on
	// members descending, then on ID ascending.
	want := []int{2, 3, 1, 5}
	got := p.TopN(10)
	if len(got) != len(want) {
		t.Fatalf("TopN = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TopN[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPopularityTopNBounds(t *testing.T) {
	p := NewPopularity(DefaultConfig())
	if err := p.Fit(context.Background(), popularityCatalog(), nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if got := p.TopN(2); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("TopN(2) = %v, want [2 3]", got)
	}
	if got := p.TopN(0); len(got) != 0 {
		t.Errorf("TopN(0) = %v, want empty", got)
	}
	if got := p.TopN(-1); len(got) != 0 {
		t.Errorf("TopN(-1) = %v, want empty", got)
	}
}

func TestPopularityPredictIgnoresUser(t *testing.T) {
	p := NewPopularity(DefaultConfig())
	if err := p.Fit(context.Background(), popularityCatalog(), nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	a, err := p.Predict(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	b, err := p.Predict(context.Background(), 999, 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lists differ in length: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Predict differs across users: %v vs %v", a, b)
		}
	}
}

func TestPopularityPredictRating(t *testing.T) {
	p := NewPopularity(DefaultConfig())
	if err := p.Fit(context.Background(), popularityCatalog(), nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	tests := []struct {
		name   string
		itemID int
		want   float64
	}{
		{"known item", 2, 9.0},
		{"below-floor item keeps its rating", 4, 5.0},
		{"unknown item", 999, DefaultRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.PredictRating(context.Background(), 1, tt.itemID)
			if err != nil {
				t.Fatalf("PredictRating: %v", err)
			}
			if got != tt.want {
				t.Errorf("PredictRating(%d) = %v, want %v", tt.itemID, got, tt.want)
			}
		})
	}
}

func TestPopularityDegenerateFit(t *testing.T) {
	p := NewPopularity(DefaultConfig())
	if err := p.Fit(context.Background(), nil, nil); err != nil {
		t.Fatalf("Fit on empty catalog: %v", err)
	}

	if got := p.TopN(5); len(got) != 0 {
		t.Errorf("TopN = %v, want empty", got)
	}
}
