// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve runs the two-stage retrieval flow: per-sub-query
// federated search with local ranking, then a merged global ranking
// against the original query.
package retrieve

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/litscout/internal/rank"
	"github.com/pdiddy/litscout/internal/sources"
	"github.com/pdiddy/litscout/pkg/types"
)

// DefaultTopK bounds the final merged result list.
const DefaultTopK = 10

// Retriever coordinates source fan-out, deduplication, and BM25
// ranking. The embedder is optional; when nil the similarity pass is
// skipped.
type Retriever struct {
	sources             *sources.Manager
	embedder            rank.Embedder
	topK                int
	similarityThreshold float64
	warnW               io.Writer
}

// New builds a Retriever over the given source manager. TopK values
// below one fall back to DefaultTopK.
func New(m *sources.Manager, e rank.Embedder, topK int, similarityThreshold float64, warnW io.Writer) *Retriever {
	if topK < 1 {
		topK = DefaultTopK
	}
	if warnW == nil {
		warnW = io.Discard
	}
	return &Retriever{
		sources:             m,
		embedder:            e,
		topK:                topK,
		similarityThreshold: similarityThreshold,
		warnW:               warnW,
	}
}

// Search runs both retrieval stages. Each sub-query is searched across
// every registered source, deduplicated, and ranked against that
// sub-query; the per-sub-query buckets are preserved in the result for
// inspection. The buckets are then merged, deduplicated again (with the
// embedding similarity pass when an embedder is configured), ranked
// against the original query, and truncated to the top K.
//
// A sub-query yielding no records is not an error; it produces an empty
// bucket and the merge continues with the rest.
func (r *Retriever) Search(ctx context.Context, originalQuery string, subQueries []string) (*types.SearchResultSet, error) {
	if originalQuery == "" {
		return nil, fmt.Errorf("original query must not be empty")
	}
	if len(subQueries) == 0 {
		subQueries = []string{originalQuery}
	}

	result := &types.SearchResultSet{
		SubQueries: make(map[string][]types.PaperRecord, len(subQueries)),
	}

	var merged []types.PaperRecord
	for _, sq := range subQueries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bucket := r.searchSubQuery(ctx, sq)
		if len(bucket) > 0 {
			result.SubQueries[sq] = bucket
		}
		merged = append(merged, bucket...)
	}

	merged = rank.Dedup(merged)
	merged = rank.DedupSimilar(ctx, merged, r.embedder, r.similarityThreshold)
	merged = rank.Score(merged, originalQuery)
	if len(merged) > r.topK {
		merged = merged[:r.topK]
	}
	result.OriginalQuery = merged
	return result, nil
}

// searchSubQuery fans a single sub-query out to every source, merges
// the per-source slices in registration order, deduplicates, and ranks
// against the sub-query.
func (r *Retriever) searchSubQuery(ctx context.Context, query string) []types.PaperRecord {
	bySource := r.sources.SearchAll(ctx, query, r.topK)

	var pool []types.PaperRecord
	for _, name := range r.sources.Names() {
		pool = append(pool, bySource[name]...)
	}
	if len(pool) == 0 {
		fmt.Fprintf(r.warnW, "warning: no results for sub-query %q\n", query)
		return nil
	}

	pool = rank.Dedup(pool)
	return rank.Score(pool, query)
}

// Lookup fetches a single record by identifier from a named source.
func (r *Retriever) Lookup(ctx context.Context, sourceName, id string) (*types.PaperRecord, error) {
	return r.sources.Fetch(ctx, sourceName, id)
}
