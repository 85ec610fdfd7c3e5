// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank deduplicates and scores candidate paper pools against a
// query. Scoring uses the Okapi BM25 formula over case-folded
// whitespace-split tokens; deduplication runs an exact URL pass, a
// normalized-title pass, and an optional embedding-similarity pass.
// Everything here is a pure function of its inputs.
package rank

import (
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// Okapi BM25 parameters.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25Model holds per-corpus statistics for scoring. Documents are
// tokenized once at construction.
type bm25Model struct {
	docFreqs  []map[string]int
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// newBM25 builds a model over the corpus. Terms that appear in more than
// half the documents get a negative raw IDF; those are floored to a
// fraction of the average IDF so common terms still contribute.
func newBM25(corpus [][]string) *bm25Model {
	m := &bm25Model{
		docFreqs: make([]map[string]int, len(corpus)),
		docLens:  make([]int, len(corpus)),
		idf:      make(map[string]float64),
	}

	df := make(map[string]int)
	totalLen := 0
	for i, doc := range corpus {
		freqs := make(map[string]int, len(doc))
		for _, term := range doc {
			freqs[term]++
		}
		m.docFreqs[i] = freqs
		m.docLens[i] = len(doc)
		totalLen += len(doc)
		for term := range freqs {
			df[term]++
		}
	}
	if len(corpus) > 0 {
		m.avgDocLen = float64(totalLen) / float64(len(corpus))
	}

	n := float64(len(corpus))
	idfSum := 0.0
	var negative []string
	for term, freq := range df {
		idf := math.Log((n - float64(freq) + 0.5) / (float64(freq) + 0.5))
		m.idf[term] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, term)
		}
	}
	if len(df) > 0 {
		floor := bm25Epsilon * idfSum / float64(len(df))
		for _, term := range negative {
			m.idf[term] = floor
		}
	}
	return m
}

// scores returns one BM25 score per corpus document for the query tokens.
func (m *bm25Model) scores(query []string) []float64 {
	out := make([]float64, len(m.docFreqs))
	for i := range m.docFreqs {
		var score float64
		for _, term := range query {
			tf := float64(m.docFreqs[i][term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(m.docLens[i])/m.avgDocLen
			score += m.idf[term] * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
		out[i] = score
	}
	return out
}

// tokenize case-folds and whitespace-splits text. No stemming or
// stopword removal.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Score attaches a BM25 score to each record, measured over the
// concatenated title and abstract against the query, and returns the
// records sorted descending by score. The sort is stable, so ties keep
// discovery order. The input slice is not modified.
func Score(records []types.PaperRecord, query string) []types.PaperRecord {
	if len(records) == 0 {
		return nil
	}

	corpus := make([][]string, len(records))
	for i, r := range records {
		corpus[i] = tokenize(r.Title + " " + r.Abstract)
	}

	model := newBM25(corpus)
	scores := model.scores(tokenize(query))

	out := make([]types.PaperRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].BM25Score = scores[i]
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BM25Score > out[j].BM25Score
	})
	return out
}
