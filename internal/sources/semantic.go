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

	"github.com/pdiddy/litscout/internal/httputil"
	"github.com/pdiddy/litscout/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "paperId,title,abstract,authors,url,openAccessPdf,year,publicationDate"

// SemanticScholarSource queries the Semantic Scholar graph API.
type SemanticScholarSource struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return types.SourceSemanticScholar }

// Search queries the Semantic Scholar paper search endpoint.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, topK int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if topK <= 0 {
		topK = 10
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", topK)},
		"fields": {semanticFields},
	}

	var sr semanticResponse
	if err := s.getJSON(ctx, semanticAPIBase+"?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	var papers []types.PaperRecord
	for _, paper := range sr.Data {
		if r := formatSemanticPaper(paper); r != nil {
			papers = append(papers, *r)
		}
	}
	return papers, nil
}

// FetchByID retrieves a single paper by Semantic Scholar paper ID.
func (s *SemanticScholarSource) FetchByID(ctx context.Context, id string) (*types.PaperRecord, error) {
	base := strings.TrimSuffix(semanticAPIBase, "/search")
	reqURL := base + "/" + url.PathEscape(id) + "?fields=" + semanticFields

	var paper semanticPaper
	if err := s.getJSON(ctx, reqURL, &paper); err != nil {
		return nil, err
	}
	return formatSemanticPaper(paper), nil
}

func (s *SemanticScholarSource) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	if s.APIKey != "" {
		req.Header.Set("x-api-key", s.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

func formatSemanticPaper(paper semanticPaper) *types.PaperRecord {
	if paper.PaperID == "" && paper.Title == "" {
		return nil
	}

	r := types.PaperRecord{
		ID:           paper.PaperID,
		Title:        paper.Title,
		Abstract:     paper.Abstract,
		CanonicalURL: paper.URL,
		Source:       types.SourceSemanticScholar,
	}

	for _, a := range paper.Authors {
		r.Authors = append(r.Authors, a.Name)
	}

	if paper.OpenAccessPDF != nil {
		r.PDFURL = paper.OpenAccessPDF.URL
	}

	if paper.PublicationDate != "" {
		if t, parseErr := time.Parse("2006-01-02", paper.PublicationDate); parseErr == nil {
			r.PublishedDate = t
		}
	} else if paper.Year > 0 {
		r.PublishedDate = time.Date(paper.Year, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	if r.CanonicalURL == "" {
		return nil
	}
	return &r
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string           `json:"paperId"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	URL             string           `json:"url"`
	Year            int              `json:"year"`
	PublicationDate string           `json:"publicationDate"`
	Authors         []semanticAuthor `json:"authors"`
	OpenAccessPDF   *semanticPDF     `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticPDF struct {
	URL string `json:"url"`
}
