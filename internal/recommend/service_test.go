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

func TestServiceBeforeFirstRefit(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, ok := svc.Active(); ok {
		t.Error("Active() reported a model set before any Refit")
	}
	if _, err := svc.Recommend(context.Background(), ModelHybrid, 1, 5); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Recommend error = %v, want ErrNotFitted", err)
	}
	if _, err := svc.PredictRating(context.Background(), ModelHybrid, 1, 10); !errors.Is(err, ErrNotFitted) {
		t.Errorf("PredictRating error = %v, want ErrNotFitted", err)
	}
}

func TestServiceRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KNeighbors = -1
	if _, err := NewService(cfg); err == nil {
		t.Error("NewService accepted a negative neighbor count")
	}
}

func TestServiceRefitAndRecommend(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	set, err := svc.Refit(context.Background(), hybridCatalog(), hybridEvents())
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}
	if set.Version != 1 {
		t.Errorf("first generation version = %d, want 1", set.Version)
	}
	if set.UserCount != 2 || set.ItemCount != 4 || set.RatingCount != 5 {
		t.Errorf("dimensions = (%d, %d, %d), want (2, 4, 5)",
			set.UserCount, set.ItemCount, set.RatingCount)
	}

	for _, name := range ModelNames() {
		recs, err := svc.Recommend(context.Background(), name, 1, 5)
		if err != nil {
			t.Errorf("Recommend(%s): %v", name, err)
			continue
		}
		if len(recs) == 0 {
			t.Errorf("Recommend(%s) returned no items", name)
		}
	}

	est, err := svc.PredictRating(context.Background(), ModelItemBased, 1, 30)
	if err != nil {
		t.Fatalf("PredictRating: %v", err)
	}
	if est < 1 || est > 10 {
		t.Errorf("PredictRating = %v, want a value on the rating scale", est)
	}
}

func TestServiceUnknownModel(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Refit(context.Background(), hybridCatalog(), hybridEvents()); err != nil {
		t.Fatalf("Refit: %v", err)
	}

	if _, err := svc.Recommend(context.Background(), "nonsense", 1, 5); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Recommend error = %v, want ErrUnknownModel", err)
	}
	if _, err := svc.PredictRating(context.Background(), "nonsense", 1, 10); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("PredictRating error = %v, want ErrUnknownModel", err)
	}
}

func TestServiceVersionIncrements(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	first, err := svc.Refit(context.Background(), hybridCatalog(), hybridEvents())
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}
	second, err := svc.Refit(context.Background(), hybridCatalog(), hybridEvents())
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}
	if second.Version != first.Version+1 {
		t.Errorf("versions = %d then %d, want consecutive", first.Version, second.Version)
	}

	active, ok := svc.Active()
	if !ok || active.Version != second.Version {
		t.Errorf("Active() version = %d, want %d", active.Version, second.Version)
	}
}

func TestServiceColdStartFallsBackToPopularity(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.Refit(context.Background(), hybridCatalog(), hybridEvents()); err != nil {
		t.Fatalf("Refit: %v", err)
	}

	// User 999 has no history; personalized models produce nothing, so
	// the popularity ranking is served instead.
	recs, err := svc.Recommend(context.Background(), ModelItemBased, 999, 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("cold-start user got no recommendations")
	}

	set, _ := svc.Active()
	want := set.Popularity.TopN(3)
	if len(recs) != len(want) {
		t.Fatalf("fallback = %v, want %v", recs, want)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("fallback[%d] = %d, want %d", i, recs[i], want[i])
		}
	}
}

func TestServiceRestore(t *testing.T) {
	svc, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	donor, err := NewService(DefaultConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	set, err := donor.Refit(context.Background(), hybridCatalog(), hybridEvents())
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}

	svc.Restore(set)
	active, ok := svc.Active()
	if !ok {
		t.Fatal("Active() reported no model set after Restore")
	}
	if active.Version != 1 {
		t.Errorf("restored version = %d, want 1", active.Version)
	}
	if _, err := svc.Recommend(context.Background(), ModelPopularity, 1, 3); err != nil {
		t.Errorf("Recommend after Restore: %v", err)
	}
}

func TestModelNames(t *testing.T) {
	want := []string{ModelContentBased, ModelItemBased, ModelUserBased, ModelHybrid, ModelPopularity}
	got := ModelNames()
	if len(got) != len(want) {
		t.Fatalf("ModelNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ModelNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
