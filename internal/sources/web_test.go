// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebSearchResolvesArxivURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ddgResponse{
			Heading:      "Transformers",
			AbstractText: "A landmark paper.",
			AbstractURL:  "https://arxiv.org/abs/1706.03762",
		})
	}))
	defer ts.Close()

	orig := webSearchAPIBase
	webSearchAPIBase = ts.URL
	defer func() { webSearchAPIBase = orig }()

	s := &WebSource{Client: ts.Client(), UserAgent: "test/0.1"}
	papers, err := s.Search(context.Background(), "transformers", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	if papers[0].ID != "1706.03762" {
		t.Errorf("ID = %q", papers[0].ID)
	}
	if papers[0].PDFURL != "https://arxiv.org/pdf/1706.03762.pdf" {
		t.Errorf("PDFURL = %q", papers[0].PDFURL)
	}
}

func TestWebSearchDirectPDFSuffix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ddgResponse{
			RelatedTopics: []ddgTopic{
				{Text: "Some paper", FirstURL: "https://example.org/papers/p1.pdf"},
			},
		})
	}))
	defer ts.Close()

	orig := webSearchAPIBase
	webSearchAPIBase = ts.URL
	defer func() { webSearchAPIBase = orig }()

	s := &WebSource{Client: ts.Client(), UserAgent: "test/0.1"}
	papers, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 || papers[0].PDFURL != "https://example.org/papers/p1.pdf" {
		t.Fatalf("papers = %+v", papers)
	}
}

func TestWebSearchScansHTMLForPDFLink(t *testing.T) {
	// One server plays both the search engine and the landing page.
	mux := http.NewServeMux()
	var ts *httptest.Server

	mux.HandleFunc("/search/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ddgResponse{
			RelatedTopics: []ddgTopic{
				{Text: "ACL paper", FirstURL: ts.URL + "/2023.acl-long.1/"},
			},
		})
	})
	mux.HandleFunc("/2023.acl-long.1/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a class="btn" href="/2023.acl-long.1.pdf">PDF</a></body></html>`)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	orig := webSearchAPIBase
	webSearchAPIBase = ts.URL + "/search"
	defer func() { webSearchAPIBase = orig }()

	s := &WebSource{Client: ts.Client(), UserAgent: "test/0.1"}
	papers, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 {
		t.Fatalf("len(papers) = %d, want 1", len(papers))
	}
	want := ts.URL + "/2023.acl-long.1.pdf"
	if papers[0].PDFURL != want {
		t.Errorf("PDFURL = %q, want %q", papers[0].PDFURL, want)
	}
}

func TestWebSearchDropsUnresolvable(t *testing.T) {
	mux := http.NewServeMux()
	var ts *httptest.Server

	mux.HandleFunc("/search/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(ddgResponse{
			RelatedTopics: []ddgTopic{
				{Text: "Plain page", FirstURL: ts.URL + "/plain"},
			},
		})
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>No artifacts here.</body></html>`)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	orig := webSearchAPIBase
	webSearchAPIBase = ts.URL + "/search"
	defer func() { webSearchAPIBase = orig }()

	s := &WebSource{Client: ts.Client(), UserAgent: "test/0.1"}
	papers, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 0 {
		t.Errorf("unresolvable result should be dropped, got %+v", papers)
	}
}

func TestNormalizePDFPath(t *testing.T) {
	tests := []struct {
		name    string
		href    string
		pageURL string
		want    string
	}{
		{"absolute", "https://cdn.example.org/p.pdf", "https://example.org/page", "https://cdn.example.org/p.pdf"},
		{"rooted", "/pdf/p.pdf", "https://example.org/venue/page", "https://example.org/pdf/p.pdf"},
		{"relative", "p.pdf", "https://example.org/venue/page", "https://example.org/venue/p.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePDFPath(tt.href, tt.pageURL); got != tt.want {
				t.Errorf("normalizePDFPath(%q, %q) = %q, want %q", tt.href, tt.pageURL, got, tt.want)
			}
		})
	}
}
