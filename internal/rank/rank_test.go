// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/litscout/pkg/types"
)

// --- Deduplication ---

func TestDedupByURL(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "Paper A", CanonicalURL: "https://example.org/a", Source: "arxiv"},
		{Title: "Paper A from elsewhere", CanonicalURL: "https://example.org/a", Source: "web"},
		{Title: "Paper B", CanonicalURL: "https://example.org/b", Source: "arxiv"},
	}

	out := Dedup(records)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	// Earlier-indexed record wins.
	if out[0].Source != "arxiv" {
		t.Errorf("kept record source = %q, want arxiv", out[0].Source)
	}
}

func TestDedupByNormalizedTitle(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "Attention Is All You Need", CanonicalURL: "https://arxiv.org/abs/1706.03762"},
		{Title: "attention is all you need!", CanonicalURL: "https://example.org/mirror"},
	}

	out := Dedup(records)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}

func TestDedupFallsBackToPDFURL(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "One", PDFURL: "https://example.org/p.pdf"},
		{Title: "Two", PDFURL: "https://example.org/p.pdf"},
	}

	out := Dedup(records)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
}

func TestDedupProperty(t *testing.T) {
	// No two survivors share a non-empty canonical URL or normalized title.
	records := []types.PaperRecord{
		{Title: "Alpha", CanonicalURL: "https://e.org/1"},
		{Title: "ALPHA", CanonicalURL: "https://e.org/2"},
		{Title: "Beta", CanonicalURL: "https://e.org/1"},
		{Title: "Gamma", CanonicalURL: "https://e.org/3"},
		{Title: "gamma?", CanonicalURL: ""},
	}

	out := Dedup(records)
	urls := make(map[string]bool)
	titles := make(map[string]bool)
	for _, r := range out {
		if r.CanonicalURL != "" {
			if urls[r.CanonicalURL] {
				t.Errorf("duplicate canonical URL survived: %q", r.CanonicalURL)
			}
			urls[r.CanonicalURL] = true
		}
		nt := normalizeTitle(r.Title)
		if nt != "" {
			if titles[nt] {
				t.Errorf("duplicate normalized title survived: %q", nt)
			}
			titles[nt] = true
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Attention Is All You Need!", "attention is all you need"},
		{"  BERT:  Pre-training   of Deep...  ", "bert pretraining of deep"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTitle(tt.in); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Similarity pass ---

type mockEmbedder struct {
	vecs [][]float64
	err  error
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vecs[:len(texts)], nil
}

func TestDedupSimilarCollapsesNearDuplicates(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "Graph Neural Networks Survey", CanonicalURL: "https://e.org/1"},
		{Title: "A Survey of Graph Neural Networks", CanonicalURL: "https://e.org/2"},
		{Title: "Unrelated Topic", CanonicalURL: "https://e.org/3"},
	}
	e := &mockEmbedder{vecs: [][]float64{
		{1, 0, 0},
		{0.999, 0.04, 0},
		{0, 1, 0},
	}}

	out := DedupSimilar(context.Background(), records, e, 0.95)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].CanonicalURL != "https://e.org/1" {
		t.Errorf("earlier-indexed record should survive, got %q", out[0].CanonicalURL)
	}
	if out[1].CanonicalURL != "https://e.org/3" {
		t.Errorf("dissimilar record should survive, got %q", out[1].CanonicalURL)
	}
}

func TestDedupSimilarNilEmbedder(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "A", CanonicalURL: "https://e.org/1"},
		{Title: "B", CanonicalURL: "https://e.org/2"},
	}
	out := DedupSimilar(context.Background(), records, nil, 0.95)
	if len(out) != 2 {
		t.Errorf("nil embedder should leave the pool unchanged")
	}
}

func TestDedupSimilarEmbedderFailure(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "A", CanonicalURL: "https://e.org/1"},
		{Title: "B", CanonicalURL: "https://e.org/2"},
	}
	e := &mockEmbedder{err: fmt.Errorf("endpoint down")}
	out := DedupSimilar(context.Background(), records, e, 0.95)
	if len(out) != 2 {
		t.Errorf("embedding failure should leave the pool unchanged")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0}); got < 0.999 {
		t.Errorf("identical vectors similarity = %f, want ~1", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors similarity = %f, want 0", got)
	}
	if got := cosineSimilarity([]float64{1}, []float64{1, 2}); got != 0 {
		t.Errorf("mismatched lengths similarity = %f, want 0", got)
	}
}

// --- BM25 scoring ---

func TestScoreExactMatchBeatsNoOverlap(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "cooking with cast iron", Abstract: "skillet recipes", CanonicalURL: "https://e.org/1"},
		{Title: "graph neural networks", Abstract: "graph neural networks at scale", CanonicalURL: "https://e.org/2"},
		{Title: "medieval pottery", Abstract: "archaeology of ceramics", CanonicalURL: "https://e.org/3"},
	}

	out := Score(records, "graph neural networks")
	if out[0].CanonicalURL != "https://e.org/2" {
		t.Fatalf("top result = %q, want the exact-match record", out[0].CanonicalURL)
	}
	var matched, unmatched float64
	for _, r := range out {
		switch r.CanonicalURL {
		case "https://e.org/2":
			matched = r.BM25Score
		case "https://e.org/1":
			unmatched = r.BM25Score
		}
	}
	if matched <= unmatched {
		t.Errorf("exact-match score %f should exceed no-overlap score %f", matched, unmatched)
	}
}

func TestScoreStableTiebreak(t *testing.T) {
	// Records sharing no query tokens all score zero; discovery order holds.
	records := []types.PaperRecord{
		{Title: "first", CanonicalURL: "https://e.org/1"},
		{Title: "second", CanonicalURL: "https://e.org/2"},
		{Title: "third", CanonicalURL: "https://e.org/3"},
	}

	out := Score(records, "quantum chromodynamics")
	for i, want := range []string{"https://e.org/1", "https://e.org/2", "https://e.org/3"} {
		if out[i].CanonicalURL != want {
			t.Fatalf("out[%d] = %q, want %q (stable order)", i, out[i].CanonicalURL, want)
		}
	}
}

func TestScoreEmptyInput(t *testing.T) {
	if out := Score(nil, "anything"); out != nil {
		t.Errorf("Score(nil) = %v, want nil", out)
	}
}

func TestScoreDoesNotMutateInput(t *testing.T) {
	records := []types.PaperRecord{
		{Title: "alpha beta", CanonicalURL: "https://e.org/1"},
	}
	Score(records, "alpha")
	if records[0].BM25Score != 0 {
		t.Errorf("input slice was mutated")
	}
}

// --- HTTP embedder ---

func TestHTTPEmbedder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "test-embed" {
			t.Errorf("model = %q", req.Model)
		}
		resp := embeddingsResponse{}
		// Return vectors out of order to exercise index handling.
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingsDatum{
				Index:     i,
				Embedding: []float64{float64(i), 1},
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	e := &HTTPEmbedder{Client: ts.Client(), BaseURL: ts.URL, Model: "test-embed"}
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("len(vecs) = %d, want 3", len(vecs))
	}
	if vecs[0][0] != 0 || vecs[2][0] != 2 {
		t.Errorf("vectors not ordered by index: %v", vecs)
	}
}

func TestHTTPEmbedderCountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embeddingsResponse{
			Data: []embeddingsDatum{{Index: 0, Embedding: []float64{1}}},
		})
	}))
	defer ts.Close()

	e := &HTTPEmbedder{Client: ts.Client(), BaseURL: ts.URL, Model: "m"}
	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("count mismatch should error")
	}
}
