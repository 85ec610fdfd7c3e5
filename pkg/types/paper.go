// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litscout pipeline:
// paper records produced by source adapters, cache entries managed by the
// PDF cache, and structured extraction results.
package types

import "time"

// Source names for the registered paper catalogs.
const (
	SourceArxiv           = "arxiv"
	SourceSemanticScholar = "semantic_scholar"
	SourceHuggingFace     = "huggingface"
	SourceWeb             = "web"
)

// PaperRecord is the universal catalog entry produced by a source adapter.
// The ranker attaches BM25Score; the processor enriches the record with
// extraction results. Ownership transfers in pipeline order, so no two
// components mutate a record concurrently.
type PaperRecord struct {
	// ID is the source-local identifier (arXiv ID, Semantic Scholar paper
	// ID, model repo ID). May be empty for web results.
	ID string `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or result snippet.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CanonicalURL is the landing-page URL for the paper. A usable record
	// always has a non-empty CanonicalURL.
	CanonicalURL string `json:"url" yaml:"url"`

	// PDFURL is the direct artifact URL. Empty until resolved; web-search
	// results without a resolvable PDF URL are dropped by the adapter.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source identifies which adapter produced this record.
	Source string `json:"source" yaml:"source"`

	// PublishedDate is the publication or preprint date, zero if unknown.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// BM25Score is set by the ranker; zero before ranking.
	BM25Score float64 `json:"score_bm25" yaml:"score_bm25"`
}

// ArtifactURL returns the URL the downloader should fetch: the PDF URL if
// resolved, otherwise the canonical URL.
func (p PaperRecord) ArtifactURL() string {
	if p.PDFURL != "" {
		return p.PDFURL
	}
	return p.CanonicalURL
}

// SearchResultSet is the retriever's output: one ranked bucket per
// sub-query plus the merged pool re-scored against the original query.
// Ordering within each slice is significant and is the retriever's
// primary observable contract.
type SearchResultSet struct {
	// SubQueries maps each sub-query string to its ranked candidates.
	// A sub-query that yielded zero candidates from all sources is absent.
	SubQueries map[string][]PaperRecord `json:"sub_query" yaml:"sub_query"`

	// OriginalQuery is the merged, deduplicated pool re-scored against
	// the original query, sorted descending by score.
	OriginalQuery []PaperRecord `json:"original_query" yaml:"original_query"`
}
