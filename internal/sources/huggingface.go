// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

// huggingfaceAPIBase is the Hugging Face Hub API root. Declared as a var
// so tests can substitute an httptest server.
var huggingfaceAPIBase = "https://huggingface.co/api"

// huggingfaceHubBase is the public hub URL used for canonical links.
var huggingfaceHubBase = "https://huggingface.co"

// HuggingFaceSource queries the Hugging Face model hub. Models are
// presented as paper records so downstream ranking treats the catalog
// uniformly; model cards have no PDF artifact.
type HuggingFaceSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *HuggingFaceSource) Name() string { return types.SourceHuggingFace }

// Search queries the model hub sorted by downloads.
func (s *HuggingFaceSource) Search(ctx context.Context, query string, topK int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Hugging Face query")
	}
	if topK <= 0 {
		topK = 10
	}

	params := url.Values{
		"search": {query},
		"sort":   {"downloads"},
		"limit":  {fmt.Sprintf("%d", topK)},
	}

	var models []hfModel
	if err := s.getJSON(ctx, huggingfaceAPIBase+"/models?"+params.Encode(), &models); err != nil {
		return nil, err
	}

	var papers []types.PaperRecord
	for _, m := range models {
		if r := formatHFModel(m); r != nil {
			papers = append(papers, *r)
		}
	}
	return papers, nil
}

// FetchByID retrieves a single model by repo ID (e.g. "org/model").
func (s *HuggingFaceSource) FetchByID(ctx context.Context, id string) (*types.PaperRecord, error) {
	var m hfModel
	if err := s.getJSON(ctx, huggingfaceAPIBase+"/models/"+id, &m); err != nil {
		return nil, err
	}
	return formatHFModel(m), nil
}

func (s *HuggingFaceSource) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("Hugging Face API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Hugging Face API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Hugging Face response: %w", err)
	}
	return nil
}

func formatHFModel(m hfModel) *types.PaperRecord {
	if m.ID == "" {
		return nil
	}

	r := types.PaperRecord{
		ID:           m.ID,
		Title:        m.ID,
		Abstract:     m.Description,
		CanonicalURL: huggingfaceHubBase + "/" + m.ID,
		Source:       types.SourceHuggingFace,
	}
	if m.Author != "" {
		r.Authors = []string{m.Author}
	}
	if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		r.PublishedDate = t
	}
	return &r
}

// Hugging Face Hub API JSON structure.
type hfModel struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Downloads   int    `json:"downloads"`
}
