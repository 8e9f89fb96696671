// Anisuggest - Anime Catalog Recommendation and Evaluation Engine
// Copyright 2026 Otakulab
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/otakulab/anisuggest

package recommend

import (
	"github.com/otakulab/anisuggest/internal/recommend/storage"
)

// Conversions between fitted in-memory models and the explicit artifact
// schema in the storage package. Export never exposes internal slices;
// Restore rebuilds every derived structure (transposes, similarity
// providers) from the persisted core state.

func matrixToState(m *Matrix) storage.SparseMatrixState {
	st := storage.SparseMatrixState{
		Rows:   m.Rows,
		Cols:   m.Cols,
		RowPtr: make([]int, len(m.RowPtr)),
		ColIdx: make([]int, len(m.ColIdx)),
		Values: make([]float64, len(m.Values)),
	}
	copy(st.RowPtr, m.RowPtr)
	copy(st.ColIdx, m.ColIdx)
	copy(st.Values, m.Values)
	return st
}

func matrixFromState(st storage.SparseMatrixState) *Matrix {
	return &Matrix{
		Rows:   st.Rows,
		Cols:   st.Cols,
		RowPtr: st.RowPtr,
		ColIdx: st.ColIdx,
		Values: st.Values,
	}
}

// ExportState snapshots the fitted content model.
func (c *ContentBased) ExportState() *storage.ContentState {
	c.acquirePredictLock()
	defer c.releasePredictLock()

	ratings := make(map[int]float64, len(c.catalog))
	for id, it := range c.catalog {
		ratings[id] = it.Rating
	}
	terms := make([]string, len(c.vectors.Terms))
	copy(terms, c.vectors.Terms)
	idf := make([]float64, len(c.vectors.IDF))
	copy(idf, c.vectors.IDF)

	return &storage.ContentState{
		ItemIDs:        c.items.IDs(),
		Terms:          terms,
		IDF:            idf,
		Rows:           matrixToState(c.vectors.Rows),
		CatalogRatings: ratings,
	}
}

// ContentBasedFromState rebuilds a fitted content model from persisted
// state.
func ContentBasedFromState(cfg Config, st *storage.ContentState) *ContentBased {
	c := NewContentBased(cfg)
	c.items = indexMapFromSorted(st.ItemIDs)
	c.vectors = &ContentVectors{
		Terms: st.Terms,
		IDF:   st.IDF,
		Rows:  matrixFromState(st.Rows),
	}
	c.sim = NewSimilarityProvider(c.vectors.Rows, c.cfg.MaterializeThreshold)
	c.catalog = make(map[int]Item, len(st.CatalogRatings))
	for id, r := range st.CatalogRatings {
		c.catalog[id] = Item{ID: id, Rating: r}
	}
	c.fitted = true
	return c
}

// exportCFState snapshots the shared CF core.
func (m *cfModel) exportCFState() *storage.CFState {
	return &storage.CFState{
		UserIDs: m.pref.Users.IDs(),
		ItemIDs: m.pref.Items.IDs(),
		Matrix:  matrixToState(m.pref.Ratings),
	}
}

// restoreCFState rebuilds the shared CF core and its derived state.
func (m *cfModel) restoreCFState(st *storage.CFState) {
	m.pref = &PreferenceMatrix{
		Ratings: matrixFromState(st.Matrix),
		Users:   indexMapFromSorted(st.UserIDs),
		Items:   indexMapFromSorted(st.ItemIDs),
	}
	m.initDerived()
}

// ExportState snapshots the fitted item-based CF model.
func (m *ItemCF) ExportState() *storage.CFState {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.exportCFState()
}

// ItemCFFromState rebuilds a fitted item-based CF model.
func ItemCFFromState(cfg Config, st *storage.CFState) *ItemCF {
	m := NewItemCF(cfg)
	m.restoreCFState(st)
	m.itemSim = NewSimilarityProvider(m.itemUsers, m.cfg.MaterializeThreshold)
	m.fitted = true
	return m
}

// ExportState snapshots the fitted user-based CF model.
func (m *UserCF) ExportState() *storage.CFState {
	m.acquirePredictLock()
	defer m.releasePredictLock()
	return m.exportCFState()
}

// UserCFFromState rebuilds a fitted user-based CF model.
func UserCFFromState(cfg Config, st *storage.CFState) *UserCF {
	m := NewUserCF(cfg)
	m.restoreCFState(st)
	m.userSim = NewSimilarityProvider(m.pref.Ratings, m.cfg.MaterializeThreshold)
	m.fitted = true
	return m
}

// ExportState snapshots the fitted popularity ranking.
func (p *Popularity) ExportState() *storage.PopularityState {
	p.acquirePredictLock()
	defer p.releasePredictLock()

	ids := make([]int, len(p.sortedIDs))
	copy(ids, p.sortedIDs)
	ratings := make(map[int]float64, len(p.catalog))
	for id, it := range p.catalog {
		ratings[id] = it.Rating
	}
	return &storage.PopularityState{SortedIDs: ids, CatalogRatings: ratings}
}

// PopularityFromState rebuilds a fitted popularity model.
func PopularityFromState(cfg Config, st *storage.PopularityState) *Popularity {
	p := NewPopularity(cfg)
	p.sortedIDs = st.SortedIDs
	p.catalog = make(map[int]Item, len(st.CatalogRatings))
	for id, r := range st.CatalogRatings {
		p.catalog[id] = Item{ID: id, Rating: r}
	}
	p.fitted = true
	return p
}

// ExportState snapshots the fitted hybrid with all three sub-models.
func (h *Hybrid) ExportState() *storage.HybridState {
	h.acquirePredictLock()
	defer h.releasePredictLock()

	history := make(map[int]map[int]float64, len(h.userRatings))
	for uid, ur := range h.userRatings {
		cp := make(map[int]float64, len(ur))
		for id, r := range ur {
			cp[id] = r
		}
		history[uid] = cp
	}

	return &storage.HybridState{
		ContentWeight: h.wContent,
		ItemWeight:    h.wItem,
		UserWeight:    h.wUser,
		Content:       *h.content.ExportState(),
		ItemCF:        *h.itemCF.ExportState(),
		UserCF:        *h.userCF.ExportState(),
		UserRatings:   history,
	}
}

// HybridFromState rebuilds a fitted hybrid model.
func HybridFromState(cfg Config, st *storage.HybridState) *Hybrid {
	h := NewHybrid(cfg)
	h.wContent = st.ContentWeight
	h.wItem = st.ItemWeight
	h.wUser = st.UserWeight
	h.content = ContentBasedFromState(cfg, &st.Content)
	h.itemCF = ItemCFFromState(cfg, &st.ItemCF)
	h.userCF = UserCFFromState(cfg, &st.UserCF)
	h.userRatings = st.UserRatings
	h.fitted = true
	return h
}
