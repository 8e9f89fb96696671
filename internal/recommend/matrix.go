// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"sort"
)

// IndexMap is a bijection between external entity IDs and dense matrix
// indices. Indices are assigned in ascending ID order, which makes
// every fit byte-reproducible for the same input set.
type IndexMap struct {
	ids []int       // index -> id, ascending
	idx map[int]int // id -> index
}

// NewIndexMap builds a bijection over the distinct values of ids.
func NewIndexMap(ids []int) IndexMap {
	seen := make(map[int]struct{}, len(ids))
	distinct := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	sort.Ints(distinct)

	idx := make(map[int]int, len(distinct))
	for i, id := range distinct {
		idx[id] = i
	}
	return IndexMap{ids: distinct, idx: idx}
}

// indexMapFromSorted wraps an already sorted, distinct ID slice.
// Used when restoring persisted model state.
func indexMapFromSorted(ids []int) IndexMap {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return IndexMap{ids: ids, idx: idx}
}

// Len returns the number of mapped entities.
func (m IndexMap) Len() int { return len(m.ids) }

// ID returns the external ID at dense index i.
func (m IndexMap) ID(i int) int { return m.ids[i] }

// Index returns the dense index for an external ID.
func (m IndexMap) Index(id int) (int, bool) {
	i, ok := m.idx[id]
	return i, ok
}

// IDs returns a copy of the mapped IDs in index order.
func (m IndexMap) IDs() []int {
	out := make([]int, len(m.ids))
	copy(out, m.ids)
	return out
}

// Matrix is a sparse matrix in compressed sparse row form. Column
// indices within each row are strictly ascending.
type Matrix struct {
	Rows   int
	Cols   int
	RowPtr []int // len Rows+1
	ColIdx []int
	Values []float64
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int { return len(m.Values) }

// Row returns the column indices and values of row i as subslices of
// the underlying storage. Callers must not mutate them.
func (m *Matrix) Row(i int) (cols []int, vals []float64) {
	lo, hi := m.RowPtr[i], m.RowPtr[i+1]
	return m.ColIdx[lo:hi], m.Values[lo:hi]
}

// Transpose returns a new CSR matrix with rows and columns exchanged.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		Rows:   m.Cols,
		Cols:   m.Rows,
		RowPtr: make([]int, m.Cols+1),
		ColIdx: make([]int, len(m.ColIdx)),
		Values: make([]float64, len(m.Values)),
	}

	// Count entries per transposed row.
	for _, c := range m.ColIdx {
		t.RowPtr[c+1]++
	}
	for i := 1; i <= m.Cols; i++ {
		t.RowPtr[i] += t.RowPtr[i-1]
	}

	// Scatter. Walking rows in order keeps transposed columns ascending.
	next := make([]int, m.Cols)
	copy(next, t.RowPtr[:m.Cols])
	for r := 0; r < m.Rows; r++ {
		for p := m.RowPtr[r]; p < m.RowPtr[r+1]; p++ {
			c := m.ColIdx[p]
			t.ColIdx[next[c]] = r
			t.Values[next[c]] = m.Values[p]
			next[c]++
		}
	}
	return t
}

// RowMeans returns the mean of the stored entries in each row, zero for
// rows with no entries.
func (m *Matrix) RowMeans() []float64 {
	means := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		lo, hi := m.RowPtr[r], m.RowPtr[r+1]
		if lo == hi {
			continue
		}
		var sum float64
		for _, v := range m.Values[lo:hi] {
			sum += v
		}
		means[r] = sum / float64(hi-lo)
	}
	return means
}

// GlobalMean returns the mean of all stored entries, zero when empty.
func (m *Matrix) GlobalMean() float64 {
	if len(m.Values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m.Values {
		sum += v
	}
	return sum / float64(len(m.Values))
}

// PreferenceMatrix is the fitted sparse user-item rating matrix with
// its ID bijections.
type PreferenceMatrix struct {
	Ratings *Matrix
	Users   IndexMap
	Items   IndexMap
}

// BuildPreferenceMatrix assembles a user×item CSR matrix from rating
// events. Only explicit ratings (> 0) become entries; WatchedUnrated
// events are ignored. When the same (user, item) pair appears more than
// once the event with the latest timestamp wins, input order breaking
// ties. Empty input yields a valid 0×0 matrix.
func BuildPreferenceMatrix(events []RatingEvent) *PreferenceMatrix {
	type key struct{ user, item int }
	type latest struct {
		rating float64
		ts     int64
		seq    int
	}

	dedup := make(map[key]latest, len(events))
	for seq, e := range events {
		if !e.Explicit() {
			continue
		}
		k := key{e.UserID, e.ItemID}
		cand := latest{rating: float64(e.Rating), ts: e.Timestamp.UnixNano(), seq: seq}
		if prev, ok := dedup[k]; ok {
			if cand.ts < prev.ts || (cand.ts == prev.ts && cand.seq < prev.seq) {
				continue
			}
		}
		dedup[k] = cand
	}

	userIDs := make([]int, 0, len(dedup))
	itemIDs := make([]int, 0, len(dedup))
	for k := range dedup {
		userIDs = append(userIDs, k.user)
		itemIDs = append(itemIDs, k.item)
	}
	users := NewIndexMap(userIDs)
	items := NewIndexMap(itemIDs)

	type entry struct {
		row, col int
		val      float64
	}
	entries := make([]entry, 0, len(dedup))
	for k, v := range dedup {
		r, _ := users.Index(k.user)
		c, _ := items.Index(k.item)
		entries = append(entries, entry{row: r, col: c, val: v.rating})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].row != entries[j].row {
			return entries[i].row < entries[j].row
		}
		return entries[i].col < entries[j].col
	})

	m := &Matrix{
		Rows:   users.Len(),
		Cols:   items.Len(),
		RowPtr: make([]int, users.Len()+1),
		ColIdx: make([]int, len(entries)),
		Values: make([]float64, len(entries)),
	}
	for i, e := range entries {
		m.RowPtr[e.row+1]++
		m.ColIdx[i] = e.col
		m.Values[i] = e.val
	}
	for i := 1; i <= m.Rows; i++ {
		m.RowPtr[i] += m.RowPtr[i-1]
	}

	return &PreferenceMatrix{Ratings: m, Users: users, Items: items}
}
