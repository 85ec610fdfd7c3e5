// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/rank"
	"github.com/pdiddy/litscout/internal/retrieve"
	"github.com/pdiddy/litscout/internal/sources"
	"github.com/pdiddy/litscout/internal/store"
	"github.com/pdiddy/litscout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [sub-queries...]",
	Short: "Search paper catalogs and rank candidates",
	Long: `Search fans each sub-query out across the configured paper catalogs
(arXiv, Semantic Scholar, Hugging Face, web), deduplicates the merged
candidates, and ranks them against the original query with BM25.

With no sub-queries, the original query itself is the only sub-query.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "original research question (required)")
	searchCmd.Flags().StringSlice("sources", nil, "catalogs to query (default arxiv,semantic_scholar)")
	searchCmd.Flags().Int("top-k", 0, "maximum number of merged results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("save", false, "save the session to the result store")

	rootCmd.AddCommand(searchCmd)
}

// buildSourceManager registers the requested catalog adapters.
func buildSourceManager(cfg types.RetrievalConfig, names []string) (*sources.Manager, error) {
	if len(names) == 0 {
		names = cfg.Sources
	}
	if len(names) == 0 {
		names = []string{types.SourceArxiv, types.SourceSemanticScholar}
	}

	client := httpClient(cfg.HTTPConfig)
	m := sources.NewManager(os.Stderr)
	for _, name := range names {
		switch name {
		case types.SourceArxiv:
			m.Register(&sources.ArxivSource{Client: client, UserAgent: cfg.UserAgent})
		case types.SourceSemanticScholar:
			m.Register(&sources.SemanticScholarSource{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.SemanticScholarAPIKey})
		case types.SourceHuggingFace:
			m.Register(&sources.HuggingFaceSource{Client: client, UserAgent: cfg.UserAgent})
		case types.SourceWeb:
			m.Register(&sources.WebSource{Client: client, UserAgent: cfg.UserAgent})
		default:
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return m, nil
}

// buildEmbedder returns the optional similarity-pass embedder, nil when
// no endpoint is configured.
func buildEmbedder(cfg types.RetrievalConfig) rank.Embedder {
	if cfg.EmbeddingsURL == "" {
		return nil
	}
	return &rank.HTTPEmbedder{
		Client:  httpClient(cfg.HTTPConfig),
		BaseURL: cfg.EmbeddingsURL,
		APIKey:  cfg.EmbeddingsAPIKey,
		Model:   cfg.EmbeddingsModel,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide the original research question with --query")
	}
	sourceNames, _ := cmd.Flags().GetStringSlice("sources")
	topK, _ := cmd.Flags().GetInt("top-k")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")

	cfg := loadConfig()
	if topK == 0 {
		topK = cfg.Retrieval.TopK
	}

	m, err := buildSourceManager(cfg.Retrieval, sourceNames)
	if err != nil {
		return err
	}

	r := retrieve.New(m, buildEmbedder(cfg.Retrieval), topK, cfg.Retrieval.SimilarityThreshold, os.Stderr)
	result, err := r.Search(context.Background(), query, args)
	if err != nil {
		return err
	}

	if save {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.SaveSearch(context.Background(), query, args, result.OriginalQuery)
		if err != nil {
			return fmt.Errorf("saving search: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved search session %d\n", id)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResults(result)
	return nil
}

func printResults(result *types.SearchResultSet) {
	if len(result.OriginalQuery) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, p := range result.OriginalQuery {
		fmt.Printf("%2d. [%.2f] %s\n", i+1, p.BM25Score, p.Title)
		if len(p.Authors) > 0 {
			fmt.Printf("    %s\n", strings.Join(p.Authors, ", "))
		}
		fmt.Printf("    %s (%s)\n", p.CanonicalURL, p.Source)
		if p.PDFURL != "" {
			fmt.Printf("    pdf: %s\n", p.PDFURL)
		}
	}
}
