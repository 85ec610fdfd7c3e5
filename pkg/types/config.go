// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litscout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the search and ranking stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// TopK is the per-source result count requested from each adapter (default 10).
	TopK int `json:"top_k" yaml:"top_k"`

	// Sources names the adapters to query. Empty means the default set
	// (arxiv, semantic_scholar).
	Sources []string `json:"sources" yaml:"sources"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// SimilarityThreshold is the cosine similarity above which two titles
	// are collapsed during the optional embedding dedup pass (default 0.95).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// EmbeddingsURL is an OpenAI-compatible /v1/embeddings endpoint for
	// the optional similarity dedup pass. Empty disables the pass.
	EmbeddingsURL string `json:"embeddings_url,omitempty" yaml:"embeddings_url,omitempty"`

	// EmbeddingsAPIKey authenticates against EmbeddingsURL.
	EmbeddingsAPIKey string `json:"embeddings_api_key,omitempty" yaml:"embeddings_api_key,omitempty"`

	// EmbeddingsModel names the embedding model to request.
	EmbeddingsModel string `json:"embeddings_model,omitempty" yaml:"embeddings_model,omitempty"`
}

// DownloadConfig holds settings for the artifact download stage.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of download attempts per artifact (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxWorkers bounds the batch download worker pool (default 4).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// RequestsPerSecond paces outgoing requests across workers (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds settings for the content-addressed PDF cache.
type CacheConfig struct {
	// Dir is the cache directory holding artifacts and metadata.json.
	Dir string `json:"dir" yaml:"dir"`

	// MaxAgeDays is the cleanup age threshold (default 30).
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`

	// MaxSizeBytes is the cleanup size threshold (default 5 GiB).
	MaxSizeBytes int64 `json:"max_size_bytes" yaml:"max_size_bytes"`
}

// LLMConfig holds settings for the text-generation collaborator used by
// structured extraction.
type LLMConfig struct {
	// Model is the model identifier (e.g. "anthropic/claude-sonnet-4.5").
	Model string `json:"model" yaml:"model"`

	// APIKey is the OpenRouter authentication key. Empty disables the
	// LLM extraction mode; the parser falls back to heuristics.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// StoreConfig holds settings for the search result store.
type StoreConfig struct {
	// Dir is the directory holding the SQLite database.
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Download  DownloadConfig  `json:"download" yaml:"download"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}
