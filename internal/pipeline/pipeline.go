// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires download, cache, parse, and extraction into
// the paper processing flow.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litscout/internal/cache"
	"github.com/pdiddy/litscout/internal/download"
	"github.com/pdiddy/litscout/internal/parse"
	"github.com/pdiddy/litscout/pkg/types"
)

// extractedDir holds the per-paper YAML sidecars under the cache
// directory.
const extractedDir = "extracted"

// Processor runs papers through download, parse, and extraction.
type Processor struct {
	Cache     *cache.Manager
	Fetcher   *download.Fetcher
	Extractor *parse.Extractor
	WarnW     io.Writer

	// readDoc is swapped in tests to avoid real PDF parsing.
	readDoc func(path string) (*parse.Document, error)
}

// NewProcessor builds a Processor over the given collaborators.
func NewProcessor(c *cache.Manager, f *download.Fetcher, e *parse.Extractor, warnW io.Writer) *Processor {
	if warnW == nil {
		warnW = io.Discard
	}
	return &Processor{
		Cache:     c,
		Fetcher:   f,
		Extractor: e,
		WarnW:     warnW,
		readDoc:   parse.ReadDocument,
	}
}

// Result describes the outcome of processing one paper.
type Result struct {
	PaperID    string
	ContentKey string
	FromCache  bool
	Entry      *types.CacheEntry
	Err        error
}

// Process runs one paper through the pipeline. A record whose artifact
// is already extracted short-circuits with zero network traffic unless
// force is set. Otherwise the artifact is downloaded (or reused from
// disk), parsed, extracted, and committed to the cache with a YAML
// sidecar of the extraction.
func (p *Processor) Process(ctx context.Context, record types.PaperRecord, force bool) Result {
	res := Result{PaperID: record.ID}

	url := record.ArtifactURL()
	if url == "" {
		res.Err = fmt.Errorf("paper %q has no artifact URL", record.ID)
		return res
	}
	key := cache.ContentKey(url)
	res.ContentKey = key

	if entry := p.Cache.Get(key); entry != nil && entry.Status == types.StatusExtracted && !force {
		res.FromCache = true
		res.Entry = entry
		return res
	}

	destPath := p.Cache.ArtifactPath(key)
	if _, err := p.Fetcher.Fetch(ctx, url, destPath); err != nil {
		res.Err = fmt.Errorf("fetching artifact for %q: %w", record.ID, err)
		return res
	}

	if _, err := p.Cache.Register(url, destPath); err != nil {
		res.Err = fmt.Errorf("registering artifact for %q: %w", record.ID, err)
		return res
	}
	if err := p.Cache.UpdateStatus(key, types.StatusProcessing, nil); err != nil {
		res.Err = err
		return res
	}

	doc, err := p.readDoc(destPath)
	if err != nil {
		res.Err = fmt.Errorf("parsing artifact for %q: %w", record.ID, err)
		return res
	}

	info, err := p.Extractor.Extract(ctx, doc)
	if err != nil {
		res.Err = fmt.Errorf("extracting %q: %w", record.ID, err)
		return res
	}
	if info.IsEmpty() {
		// Keep the invariant that extracted entries carry content.
		info.Title = record.Title
	}

	fullText := doc.FullText()
	extra := &types.ExtraPayload{
		ExtractedInfo: info,
		Citations:     parse.ExtractCitations(fullText),
		PageCount:     doc.PageCount(),
		SectionCount:  len(parse.ParseStructure(fullText)),
	}
	if err := p.Cache.UpdateStatus(key, types.StatusExtracted, extra); err != nil {
		res.Err = err
		return res
	}

	if err := p.writeSidecar(key); err != nil {
		fmt.Fprintf(p.WarnW, "warning: writing extraction sidecar for %q: %v\n", record.ID, err)
	}

	res.Entry = p.Cache.Get(key)
	return res
}

// ProcessBatch runs papers sequentially, recording per-item failures
// without aborting the batch.
func (p *Processor) ProcessBatch(ctx context.Context, records []types.PaperRecord, force bool) []Result {
	results := make([]Result, 0, len(records))
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{PaperID: r.ID, Err: err})
			continue
		}
		res := p.Process(ctx, r, force)
		if res.Err != nil {
			fmt.Fprintf(p.WarnW, "warning: processing %q failed: %v\n", r.ID, res.Err)
		}
		results = append(results, res)
	}
	return results
}

// writeSidecar exports the entry's extraction as YAML next to the
// cache, at extracted/<key>.yaml.
func (p *Processor) writeSidecar(key string) error {
	entry := p.Cache.Get(key)
	if entry == nil || entry.Extra == nil {
		return fmt.Errorf("no extraction for key %q", key)
	}

	dir := filepath.Join(p.Cache.Dir(), extractedDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling extraction: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, key+".yaml"), data, 0o644)
}
