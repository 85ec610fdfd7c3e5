// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv Atom feed.
type ArxivSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return types.SourceArxiv }

// Search queries the arXiv API sorted by relevance.
func (s *ArxivSource) Search(ctx context.Context, query string, topK int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if topK <= 0 {
		topK = 10
	}

	params := url.Values{
		"search_query": {query},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", topK)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	feed, err := s.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}
	return parseArxivFeed(feed), nil
}

// FetchByID retrieves a single record by arXiv ID.
func (s *ArxivSource) FetchByID(ctx context.Context, id string) (*types.PaperRecord, error) {
	params := url.Values{
		"search_query": {"arxiv:" + id},
		"max_results":  {"1"},
	}

	feed, err := s.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}
	papers := parseArxivFeed(feed)
	if len(papers) == 0 {
		return nil, nil
	}
	return &papers[0], nil
}

func (s *ArxivSource) fetchFeed(ctx context.Context, params url.Values) (*arxivFeed, error) {
	reqURL := arxivAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

func parseArxivFeed(feed *arxivFeed) []types.PaperRecord {
	var papers []types.PaperRecord
	for _, entry := range feed.Entries {
		r := types.PaperRecord{
			ID:           extractArxivID(entry.ID),
			Title:        strings.TrimSpace(entry.Title),
			Abstract:     strings.TrimSpace(entry.Summary),
			CanonicalURL: entry.ID,
			Source:       types.SourceArxiv,
		}

		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}

		// arXiv entries carry multiple links; the PDF link is tagged
		// with title="pdf".
		for _, link := range entry.Links {
			if link.Title == "pdf" {
				r.PDFURL = link.Href
				break
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.PublishedDate = t
		}

		if r.CanonicalURL == "" {
			continue
		}
		papers = append(papers, r)
	}
	return papers
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(prefix):]
}
