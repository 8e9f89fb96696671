// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package eval

import (
	"math/rand"
	"sort"

	"github.com/otakulab/anisuggest/internal/recommend"
)

// Splitter partitions rating events into train and test sets per user,
// so every tested user keeps enough training history to be predictable.
type Splitter struct {
	// TestRatio is the fraction of each user's events held out for
	// testing. Default: 0.2.
	TestRatio float64

	// MinRatings is the per-user training floor. Users with this many
	// events or fewer contribute nothing to the test set, and no user's
	// training count drops below it. Default: 5.
	MinRatings int

	// Seed feeds the shuffle RNG; the same seed over the same input
	// reproduces the same split. Default: 42.
	Seed int64
}

// DefaultSplitter returns the default split configuration.
func DefaultSplitter() Splitter {
	return Splitter{TestRatio: 0.2, MinRatings: 5, Seed: 42}
}

func (s Splitter) withDefaults() Splitter {
	if s.TestRatio <= 0 || s.TestRatio >= 1 {
		s.TestRatio = 0.2
	}
	if s.MinRatings <= 0 {
		s.MinRatings = 5
	}
	if s.Seed == 0 {
		s.Seed = 42
	}
	return s
}

// Split partitions events per user. Users are processed in ascending ID
// order with a single seeded RNG, so the split is deterministic for a
// given (input, seed) pair. Event order within each output set follows
// the shuffled per-user order.
func (s Splitter) Split(events []recommend.RatingEvent) (train, test []recommend.RatingEvent) {
	s = s.withDefaults()

	byUser := make(map[int][]recommend.RatingEvent)
	for _, e := range events {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	userIDs := make([]int, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Ints(userIDs)

	rng := rand.New(rand.NewSource(s.Seed)) //nolint:gosec // reproducible offline split, not crypto
	train = make([]recommend.RatingEvent, 0, len(events))
	test = make([]recommend.RatingEvent, 0, len(events)/4)

	for _, uid := range userIDs {
		ue := byUser[uid]
		if len(ue) <= s.MinRatings {
			train = append(train, ue...)
			continue
		}

		shuffled := make([]recommend.RatingEvent, len(ue))
		copy(shuffled, ue)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		nTest := int(float64(len(shuffled)) * s.TestRatio)
		if nTest < 1 {
			nTest = 1
		}
		// Keep the training floor.
		if len(shuffled)-nTest < s.MinRatings {
			nTest = len(shuffled) - s.MinRatings
		}
		if nTest <= 0 {
			train = append(train, shuffled...)
			continue
		}

		train = append(train, shuffled[:len(shuffled)-nTest]...)
		test = append(test, shuffled[len(shuffled)-nTest:]...)
	}
	return train, test
}
