// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/litscout/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "litscout/0.1"
	defaultTopK      = 10
)

// loadConfig assembles the pipeline configuration from the config file,
// environment, and loaded secrets.
func loadConfig() types.PipelineConfig {
	viper.SetDefault("retrieval.top_k", defaultTopK)
	viper.SetDefault("retrieval.timeout", defaultTimeout)
	viper.SetDefault("retrieval.similarity_threshold", 0.95)
	viper.SetDefault("download.timeout", defaultTimeout)
	viper.SetDefault("download.max_retries", 3)
	viper.SetDefault("download.max_workers", 4)
	viper.SetDefault("download.requests_per_second", 2.0)
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.max_age_days", 30)
	viper.SetDefault("cache.max_size_bytes", int64(5)<<30)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("store.dir", "store")

	cfg := types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("retrieval.timeout"),
				UserAgent: defaultUserAgent,
			},
			TopK:                  viper.GetInt("retrieval.top_k"),
			Sources:               viper.GetStringSlice("retrieval.sources"),
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("retrieval.semantic_scholar_api_key")),
			SimilarityThreshold:   viper.GetFloat64("retrieval.similarity_threshold"),
			EmbeddingsURL:         viper.GetString("retrieval.embeddings_url"),
			EmbeddingsAPIKey:      secretDefault("embeddings-api-key", viper.GetString("retrieval.embeddings_api_key")),
			EmbeddingsModel:       viper.GetString("retrieval.embeddings_model"),
		},
		Download: types.DownloadConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("download.timeout"),
				UserAgent: defaultUserAgent,
			},
			MaxRetries:        viper.GetInt("download.max_retries"),
			MaxWorkers:        viper.GetInt("download.max_workers"),
			RequestsPerSecond: viper.GetFloat64("download.requests_per_second"),
		},
		Cache: types.CacheConfig{
			Dir:          viper.GetString("cache.dir"),
			MaxAgeDays:   viper.GetInt("cache.max_age_days"),
			MaxSizeBytes: viper.GetInt64("cache.max_size_bytes"),
		},
		LLM: types.LLMConfig{
			Model:       viper.GetString("llm.model"),
			APIKey:      secretDefault("openrouter-api-key", viper.GetString("llm.api_key")),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Temperature: viper.GetFloat64("llm.temperature"),
		},
		Store: types.StoreConfig{
			Dir: viper.GetString("store.dir"),
		},
	}
	return cfg
}

// httpClient returns a client with the configured timeout.
func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
