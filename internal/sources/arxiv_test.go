// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v1</id>
    <title>Attention Is All You Need, Revisited</title>
    <summary>
      We revisit the transformer architecture.
    </summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Smith</name></author>
    <link href="http://arxiv.org/abs/2301.07041v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2301.07041v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v2</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>2023-02-01T00:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_query"); got != "graph neural networks" {
			t.Errorf("search_query = %q", got)
		}
		if got := r.URL.Query().Get("max_results"); got != "5" {
			t.Errorf("max_results = %q, want 5", got)
		}
		w.Write([]byte(arxivFeedXML))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	s := &ArxivSource{Client: ts.Client(), UserAgent: "test/0.1"}
	papers, err := s.Search(context.Background(), "graph neural networks", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}

	first := papers[0]
	if first.ID != "2301.07041v1" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Title != "Attention Is All You Need, Revisited" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Abstract != "We revisit the transformer architecture." {
		t.Errorf("Abstract = %q", first.Abstract)
	}
	if len(first.Authors) != 2 || first.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", first.Authors)
	}
	if first.PDFURL != "http://arxiv.org/pdf/2301.07041v1" {
		t.Errorf("PDFURL = %q", first.PDFURL)
	}
	if first.CanonicalURL != "http://arxiv.org/abs/2301.07041v1" {
		t.Errorf("CanonicalURL = %q", first.CanonicalURL)
	}
	if first.PublishedDate.IsZero() {
		t.Error("PublishedDate should be set")
	}

	// Second entry has no pdf link; the record survives with empty PDFURL.
	if papers[1].PDFURL != "" {
		t.Errorf("papers[1].PDFURL = %q, want empty", papers[1].PDFURL)
	}
}

func TestArxivSearchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	s := &ArxivSource{Client: ts.Client(), UserAgent: "test/0.1"}
	if _, err := s.Search(context.Background(), "q", 5); err == nil {
		t.Error("Search should surface HTTP errors to the manager")
	}
}

func TestArxivSearchEmptyQuery(t *testing.T) {
	s := &ArxivSource{Client: http.DefaultClient, UserAgent: "test/0.1"}
	if _, err := s.Search(context.Background(), "   ", 5); err == nil {
		t.Error("Search should reject empty queries")
	}
}

func TestArxivFetchByID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search_query"); got != "arxiv:2301.07041" {
			t.Errorf("search_query = %q", got)
		}
		w.Write([]byte(arxivFeedXML))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	s := &ArxivSource{Client: ts.Client(), UserAgent: "test/0.1"}
	paper, err := s.FetchByID(context.Background(), "2301.07041")
	if err != nil {
		t.Fatalf("FetchByID: %v", err)
	}
	if paper == nil || paper.ID != "2301.07041v1" {
		t.Fatalf("paper = %+v", paper)
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		idURL string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041v1"},
		{"https://arxiv.org/abs/1706.03762", "1706.03762"},
		{"https://example.org/paper", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.idURL); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.idURL, got, tt.want)
		}
	}
}
