// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/litscout/internal/llm"
	"github.com/pdiddy/litscout/pkg/types"
)

const (
	// heuristicAbstractLimit bounds the fallback abstract taken from the
	// head of the document when no abstract section is found.
	heuristicAbstractLimit = 1000

	// promptSectionLimit and promptExcerptLimit bound the extraction
	// prompt: only the leading sections go in, a capped excerpt each.
	promptSectionLimit = 5
	promptExcerptLimit = 2000
)

// extractionTags lists the fields requested from the model, in prompt
// order.
var extractionTags = []string{
	"title", "authors", "abstract", "objectives", "methodology",
	"datasets", "models", "evaluation", "results", "contributions",
	"limitations",
}

// Extractor produces structured key information from a document. With a
// nil LLM client it runs in heuristic-only mode; with one configured it
// asks the model first and falls back to heuristics when the model
// yields nothing usable.
type Extractor struct {
	LLM   llm.Client
	WarnW io.Writer
}

// NewExtractor builds an Extractor. Both arguments may be nil.
func NewExtractor(client llm.Client, warnW io.Writer) *Extractor {
	if warnW == nil {
		warnW = io.Discard
	}
	return &Extractor{LLM: client, WarnW: warnW}
}

// Extract returns key information for the document. It never returns an
// error for content it cannot find; missing fields stay empty.
func (e *Extractor) Extract(ctx context.Context, doc *Document) (*types.ExtractedInfo, error) {
	text := doc.FullText()
	if strings.TrimSpace(text) == "" {
		return &types.ExtractedInfo{}, nil
	}

	sections := ParseStructure(text)
	if e.LLM != nil {
		info, err := e.extractLLM(ctx, sections)
		if err != nil {
			fmt.Fprintf(e.WarnW, "warning: model extraction failed, falling back to heuristics: %v\n", err)
		} else if !info.IsEmpty() {
			return info, nil
		}
	}
	return e.extractHeuristic(text, sections), nil
}

// extractLLM asks the model for tagged fields over excerpts of the
// document's leading sections.
func (e *Extractor) extractLLM(ctx context.Context, sections []Section) (*types.ExtractedInfo, error) {
	prompt := buildExtractionPrompt(sections)
	response, err := e.LLM.Call(ctx, prompt, llm.CallOptions{})
	if err != nil {
		return nil, err
	}

	fields := llm.ParseTags(response, extractionTags)
	info := &types.ExtractedInfo{
		Title:         fields["title"],
		Authors:       splitList(fields["authors"]),
		Abstract:      fields["abstract"],
		Objectives:    fields["objectives"],
		Methodology:   fields["methodology"],
		Datasets:      splitList(fields["datasets"]),
		Models:        splitList(fields["models"]),
		Evaluation:    fields["evaluation"],
		Results:       fields["results"],
		Contributions: fields["contributions"],
		Limitations:   fields["limitations"],
	}
	return info, nil
}

func buildExtractionPrompt(sections []Section) string {
	var b strings.Builder
	b.WriteString("Extract key information from the following research paper content.\n")
	b.WriteString("Respond with exactly these XML-style tags, leaving a tag empty when the information is absent:\n")
	for _, tag := range extractionTags {
		fmt.Fprintf(&b, "<%s></%s>\n", tag, tag)
	}
	b.WriteString("\nFor <authors>, <datasets>, and <models> use a comma-separated list.\n")
	b.WriteString("\nPaper content:\n")

	n := len(sections)
	if n > promptSectionLimit {
		n = promptSectionLimit
	}
	for _, s := range sections[:n] {
		if s.Title != "" {
			fmt.Fprintf(&b, "## %s\n", s.Title)
		}
		excerpt := s.Content
		if len(excerpt) > promptExcerptLimit {
			excerpt = excerpt[:promptExcerptLimit]
		}
		b.WriteString(excerpt)
		b.WriteString("\n\n")
	}
	return b.String()
}

// splitList splits a comma-separated model answer into trimmed items.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// extractHeuristic derives what it can without a model: the title from
// the first non-empty line, the abstract from the abstract section or
// the head of the text.
func (e *Extractor) extractHeuristic(text string, sections []Section) *types.ExtractedInfo {
	info := &types.ExtractedInfo{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			info.Title = line
			break
		}
	}

	if abs := FindSection(sections, "abstract"); abs != nil && abs.Content != "" {
		info.Abstract = abs.Content
	} else {
		head := strings.TrimSpace(text)
		if len(head) > heuristicAbstractLimit {
			head = head[:heuristicAbstractLimit]
		}
		info.Abstract = head
	}

	if m := FindSection(sections, "method"); m != nil {
		info.Methodology = summarize(m.Content)
	}
	if r := FindSection(sections, "results"); r != nil {
		info.Results = summarize(r.Content)
	}
	if c := FindSection(sections, "conclusion"); c != nil {
		info.Contributions = summarize(c.Content)
	}
	return info
}

// summarize truncates section content to a usable snippet.
func summarize(content string) string {
	content = strings.TrimSpace(content)
	if len(content) > heuristicAbstractLimit {
		content = content[:heuristicAbstractLimit]
	}
	return content
}
