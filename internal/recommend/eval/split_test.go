// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package eval

import (
	"testing"

	"github.com/otakulab/anisuggest/internal/recommend"
)

func userEvents(userID, n int) []recommend.RatingEvent {
	events := make([]recommend.RatingEvent, n)
	for i := range events {
		events[i] = recommend.RatingEvent{UserID: userID, ItemID: 100 + i, Rating: 7}
	}
	return events
}

func countByUser(events []recommend.RatingEvent) map[int]int {
	counts := make(map[int]int)
	for _, e := range events {
		counts[e.UserID]++
	}
	return counts
}

func TestSplitKeepsSmallUsersInTraining(t *testing.T) {
	events := userEvents(1, 5) // exactly at the floor
	train, test := DefaultSplitter().Split(events)

	if len(train) != 5 {
		t.Errorf("train size = %d, want 5", len(train))
	}
	if len(test) != 0 {
		t.Errorf("test size = %d, want 0", len(test))
	}
}

func TestSplitRatio(t *testing.T) {
	events := userEvents(1, 10)
	train, test := DefaultSplitter().Split(events)

	if len(train) != 8 || len(test) != 2 {
		t.Errorf("split = %d/%d, want 8/2", len(train), len(test))
	}
}

func TestSplitEnforcesTrainingFloor(t *testing.T) {
	// 7 events at a 0.5 ratio would hold out 3, leaving only 4 for
	// training; the floor of 5 caps the holdout at 2.
	s := Splitter{TestRatio: 0.5, MinRatings: 5, Seed: 42}
	train, test := s.Split(userEvents(1, 7))

	if len(train) != 5 || len(test) != 2 {
		t.Errorf("split = %d/%d, want 5/2", len(train), len(test))
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	events := append(userEvents(1, 10), userEvents(2, 8)...)

	train1, test1 := DefaultSplitter().Split(events)
	train2, test2 := DefaultSplitter().Split(events)

	if len(train1) != len(train2) || len(test1) != len(test2) {
		t.Fatalf("repeated splits differ in size: %d/%d vs %d/%d",
			len(train1), len(test1), len(train2), len(test2))
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Errorf("test[%d] = %+v vs %+v, want identical", i, test1[i], test2[i])
		}
	}
}

func TestSplitPartitionsInput(t *testing.T) {
	events := append(userEvents(1, 10), userEvents(2, 3)...)
	events = append(events, userEvents(3, 20)...)

	train, test := DefaultSplitter().Split(events)

	if len(train)+len(test) != len(events) {
		t.Fatalf("train+test = %d, want %d", len(train)+len(test), len(events))
	}

	trainCounts := countByUser(train)
	testCounts := countByUser(test)
	wantCounts := countByUser(events)
	for uid, want := range wantCounts {
		if got := trainCounts[uid] + testCounts[uid]; got != want {
			t.Errorf("user %d has %d events after split, want %d", uid, got, want)
		}
	}

	// User 2 is below the floor, so none of its events are held out.
	if testCounts[2] != 0 {
		t.Errorf("user 2 test events = %d, want 0", testCounts[2])
	}
}

func TestSplitEmptyInput(t *testing.T) {
	train, test := DefaultSplitter().Split(nil)
	if len(train) != 0 || len(test) != 0 {
		t.Errorf("split of nothing = %d/%d, want 0/0", len(train), len(test))
	}
}
