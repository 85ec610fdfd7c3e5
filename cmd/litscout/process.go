// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litscout/internal/cache"
	"github.com/pdiddy/litscout/internal/download"
	"github.com/pdiddy/litscout/internal/llm"
	"github.com/pdiddy/litscout/internal/parse"
	"github.com/pdiddy/litscout/internal/pipeline"
	"github.com/pdiddy/litscout/internal/store"
	"github.com/pdiddy/litscout/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process [pdf-urls...]",
	Short: "Download, cache, and extract papers",
	Long: `Process downloads each PDF into the content-addressed cache, parses
its structure and citations, and extracts key information. Papers already
extracted are skipped unless --force is given.

Instead of URLs, --search loads the results of a saved search session.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().Bool("force", false, "reprocess papers even when already extracted")
	processCmd.Flags().Int64("search", 0, "process the results of a saved search session by id")

	rootCmd.AddCommand(processCmd)
}

// buildProcessor wires the cache, fetcher, and extractor. The LLM
// extraction mode activates only when an API key is configured.
func buildProcessor(cfg types.PipelineConfig) (*pipeline.Processor, error) {
	c, err := cache.Open(cfg.Cache.Dir, os.Stderr)
	if err != nil {
		return nil, err
	}

	f := download.NewFetcher(httpClient(cfg.Download.HTTPConfig), cfg.Download, cfg.Download.UserAgent)

	var client llm.Client
	if cfg.LLM.APIKey != "" {
		or, err := llm.NewOpenRouter(cfg.LLM)
		if err != nil {
			return nil, err
		}
		client = or
	}
	e := parse.NewExtractor(client, os.Stderr)

	return pipeline.NewProcessor(c, f, e, os.Stderr), nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	searchID, _ := cmd.Flags().GetInt64("search")

	cfg := loadConfig()

	var records []types.PaperRecord
	switch {
	case searchID != 0:
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		saved, err := s.GetSearch(context.Background(), searchID)
		s.Close()
		if err != nil {
			return err
		}
		records = saved.Results
	case len(args) > 0:
		for i, u := range args {
			records = append(records, types.PaperRecord{
				ID:     "url-" + strconv.Itoa(i+1),
				PDFURL: u,
			})
		}
	default:
		return fmt.Errorf("provide PDF URLs or --search with a saved session id")
	}

	p, err := buildProcessor(cfg)
	if err != nil {
		return err
	}

	results := p.ProcessBatch(context.Background(), records, force)

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Printf("failed    %s: %v\n", r.PaperID, r.Err)
		case r.FromCache:
			fmt.Printf("cached    %s (%s)\n", r.PaperID, r.ContentKey)
		default:
			fmt.Printf("extracted %s (%s)\n", r.PaperID, r.ContentKey)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d paper(s) failed processing", failed)
	}
	return nil
}
