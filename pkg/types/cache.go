// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CacheStatus tracks the lifecycle of a cached artifact. Status only
// advances forward: cached -> processing -> extracted.
type CacheStatus string

const (
	StatusCached     CacheStatus = "cached"
	StatusProcessing CacheStatus = "processing"
	StatusExtracted  CacheStatus = "extracted"
)

// rank orders statuses for the forward-only advancement check.
func (s CacheStatus) rank() int {
	switch s {
	case StatusCached:
		return 0
	case StatusProcessing:
		return 1
	case StatusExtracted:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether a transition from s to next is legal.
// Re-asserting the current status is allowed.
func (s CacheStatus) CanAdvanceTo(next CacheStatus) bool {
	return next.rank() >= s.rank() && next.rank() >= 0
}

// ExtraPayload holds the extraction results attached to a cache entry
// once processing completes.
type ExtraPayload struct {
	// ExtractedInfo is the structured extraction. Non-nil whenever the
	// entry's status is extracted.
	ExtractedInfo *ExtractedInfo `json:"extracted_info,omitempty" yaml:"extracted_info,omitempty"`

	// Citations lists raw citation lines found in the references section.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// PageCount is the number of pages extracted from the artifact.
	PageCount int `json:"page_count,omitempty" yaml:"page_count,omitempty"`

	// SectionCount is the number of sections detected.
	SectionCount int `json:"section_count,omitempty" yaml:"section_count,omitempty"`
}

// CacheEntry is one row of the content-addressed artifact index.
type CacheEntry struct {
	// ContentKey is a stable hash of the source URL. Distinct paper
	// records sharing a URL share one entry.
	ContentKey string `json:"content_key" yaml:"content_key"`

	// SourceURL is the URL the artifact was downloaded from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// LocalPath is the on-disk location of the artifact.
	LocalPath string `json:"local_path" yaml:"local_path"`

	// SizeBytes is the artifact size on disk.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes"`

	// ContentHash is the SHA-256 of the file bytes, for integrity.
	// Distinct from ContentKey, which hashes the URL.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// DownloadedAt records when the artifact was first cached.
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`

	// Status is the entry lifecycle state.
	Status CacheStatus `json:"status" yaml:"status"`

	// ExtractedAt records when extraction completed, nil before then.
	ExtractedAt *time.Time `json:"extracted_at,omitempty" yaml:"extracted_at,omitempty"`

	// Extra carries extraction results once status reaches extracted.
	Extra *ExtraPayload `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// CacheStats summarizes the state of the cache index.
type CacheStats struct {
	TotalEntries   int   `json:"total_entries" yaml:"total_entries"`
	CachedCount    int   `json:"cached_count" yaml:"cached_count"`
	ExtractedCount int   `json:"extracted_count" yaml:"extracted_count"`
	TotalSizeBytes int64 `json:"total_size_bytes" yaml:"total_size_bytes"`
}
