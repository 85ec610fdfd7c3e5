// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/litscout/pkg/types"
)

// webSearchAPIBase is the DuckDuckGo instant-answer endpoint. Declared as
// a var so tests can substitute an httptest server.
var webSearchAPIBase = "https://api.duckduckgo.com"

// arxivPDFBase is the arXiv PDF endpoint used when synthesizing artifact
// URLs from page links.
var arxivPDFBase = "https://arxiv.org/pdf/"

var (
	// arxivURLPattern matches abs/pdf/html arXiv URLs and captures the ID.
	arxivURLPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf|html)/(\d{4}\.\d{4,5}(?:v\d+)?)`)

	// hrefPDFPattern finds the first href pointing at a .pdf file.
	hrefPDFPattern = regexp.MustCompile(`href="([^"]*?\.pdf)"`)
)

// maxHTMLScanBytes bounds how much of a landing page is read when
// scanning for a PDF link.
const maxHTMLScanBytes = 1 << 20

// WebSource discovers papers through general web search. A PDF URL is
// load-bearing for this adapter: results without a resolvable one are
// dropped.
type WebSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *WebSource) Name() string { return types.SourceWeb }

// Search runs a web search and keeps only results that resolve to a PDF.
func (s *WebSource) Search(ctx context.Context, query string, topK int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty web query")
	}
	if topK <= 0 {
		topK = 10
	}

	hits, err := s.searchWeb(ctx, query)
	if err != nil {
		return nil, err
	}

	var papers []types.PaperRecord
	for _, hit := range hits {
		if len(papers) >= topK {
			break
		}
		if hit.URL == "" {
			continue
		}

		id, pdfURL := s.resolvePDFURL(ctx, hit.URL)
		if pdfURL == "" {
			continue
		}

		papers = append(papers, types.PaperRecord{
			ID:           id,
			Title:        strings.TrimSpace(hit.Title),
			Abstract:     strings.TrimSpace(hit.Snippet),
			CanonicalURL: hit.URL,
			PDFURL:       pdfURL,
			Source:       types.SourceWeb,
		})
	}
	return papers, nil
}

// FetchByID is not supported for web search; there is no stable web-wide
// identifier to look up.
func (s *WebSource) FetchByID(ctx context.Context, id string) (*types.PaperRecord, error) {
	return nil, fmt.Errorf("web source does not support fetch by id")
}

// webHit is one result from the search engine.
type webHit struct {
	Title   string
	URL     string
	Snippet string
}

func (s *WebSource) searchWeb(ctx context.Context, query string) ([]webHit, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webSearchAPIBase+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned HTTP %d", resp.StatusCode)
	}

	var ddg ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ddg); err != nil {
		return nil, fmt.Errorf("parsing web search response: %w", err)
	}

	var hits []webHit
	if ddg.AbstractURL != "" {
		hits = append(hits, webHit{
			Title:   ddg.Heading,
			URL:     ddg.AbstractURL,
			Snippet: ddg.AbstractText,
		})
	}
	for _, topic := range ddg.RelatedTopics {
		if topic.FirstURL == "" {
			continue
		}
		hits = append(hits, webHit{
			Title:   topic.Text,
			URL:     topic.FirstURL,
			Snippet: topic.Text,
		})
	}
	return hits, nil
}

// resolvePDFURL turns a landing-page URL into a direct PDF URL. Three
// strategies in order: arXiv ID in the URL, direct .pdf suffix, and as a
// last resort fetching the page and scanning for a .pdf href.
func (s *WebSource) resolvePDFURL(ctx context.Context, pageURL string) (id, pdfURL string) {
	if m := arxivURLPattern.FindStringSubmatch(pageURL); m != nil {
		return m[1], arxivPDFBase + m[1] + ".pdf"
	}

	if strings.HasSuffix(strings.ToLower(strings.TrimSpace(pageURL)), ".pdf") {
		return "", pageURL
	}

	if found := s.scanPageForPDF(ctx, pageURL); found != "" {
		return "", found
	}
	return "", ""
}

// scanPageForPDF fetches the landing page and regex-scans for an href
// ending in .pdf, normalizing relative paths against the page origin.
func (s *WebSource) scanPageForPDF(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLScanBytes))
	if err != nil {
		return ""
	}

	m := hrefPDFPattern.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return normalizePDFPath(string(m[1]), pageURL)
}

// normalizePDFPath resolves an href value against the page it came from.
// Absolute URLs pass through; rooted paths are joined to the page origin.
func normalizePDFPath(href, pageURL string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return u.Scheme + "://" + u.Host + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.ResolveReference(ref).String()
}

// DuckDuckGo instant-answer JSON structures.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
}
