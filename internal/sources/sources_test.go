// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/litscout/pkg/types"
)

// --- mock source ---

type mockSource struct {
	name    string
	results []types.PaperRecord
	err     error
	calls   int
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Search(_ context.Context, _ string, _ int) ([]types.PaperRecord, error) {
	m.calls++
	return m.results, m.err
}

func (m *mockSource) FetchByID(_ context.Context, id string) (*types.PaperRecord, error) {
	for i := range m.results {
		if m.results[i].ID == id {
			return &m.results[i], nil
		}
	}
	return nil, nil
}

func TestManagerSearchAll(t *testing.T) {
	a := &mockSource{name: "a", results: []types.PaperRecord{
		{ID: "1", Title: "Paper One", CanonicalURL: "https://example.org/1", Source: "a"},
	}}
	b := &mockSource{name: "b", results: []types.PaperRecord{
		{ID: "2", Title: "Paper Two", CanonicalURL: "https://example.org/2", Source: "b"},
		{ID: "3", Title: "Paper Three", CanonicalURL: "https://example.org/3", Source: "b"},
	}}

	m := NewManager(nil, a, b)
	results := m.SearchAll(context.Background(), "anything", 10)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if len(results["a"]) != 1 || len(results["b"]) != 2 {
		t.Errorf("per-source counts = %d/%d, want 1/2", len(results["a"]), len(results["b"]))
	}
}

func TestManagerIsolatesFailures(t *testing.T) {
	good := &mockSource{name: "good", results: []types.PaperRecord{
		{ID: "1", Title: "Survivor", CanonicalURL: "https://example.org/1", Source: "good"},
	}}
	bad := &mockSource{name: "bad", err: fmt.Errorf("upstream exploded")}

	var warnings bytes.Buffer
	m := NewManager(&warnings, bad, good)
	results := m.SearchAll(context.Background(), "q", 5)

	if len(results["good"]) != 1 {
		t.Errorf("good source returned %d results, want 1", len(results["good"]))
	}
	if results["bad"] != nil {
		t.Errorf("failed source should contribute an empty result")
	}
	if !strings.Contains(warnings.String(), "bad") {
		t.Errorf("warning output %q should name the failed source", warnings.String())
	}
	if good.calls != 1 {
		t.Errorf("sibling source called %d times, want 1", good.calls)
	}
}

func TestManagerSearchOne(t *testing.T) {
	s := &mockSource{name: "only", results: []types.PaperRecord{
		{ID: "x", Title: "X", CanonicalURL: "https://example.org/x", Source: "only"},
	}}
	m := NewManager(nil, s)

	papers, err := m.SearchOne(context.Background(), "only", "q", 3)
	if err != nil {
		t.Fatalf("SearchOne: %v", err)
	}
	if len(papers) != 1 {
		t.Errorf("len(papers) = %d, want 1", len(papers))
	}

	if _, err := m.SearchOne(context.Background(), "missing", "q", 3); err == nil {
		t.Error("SearchOne on unregistered source should error")
	}
}

func TestManagerRegisterReplaces(t *testing.T) {
	first := &mockSource{name: "dup"}
	second := &mockSource{name: "dup", results: []types.PaperRecord{
		{ID: "new", Title: "New", CanonicalURL: "https://example.org/new", Source: "dup"},
	}}

	m := NewManager(nil, first)
	m.Register(second)

	if len(m.Names()) != 1 {
		t.Fatalf("Names() = %v, want one entry", m.Names())
	}
	papers, err := m.SearchOne(context.Background(), "dup", "q", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 || papers[0].ID != "new" {
		t.Errorf("registration did not replace the source")
	}
}

func TestManagerRegistrationOrder(t *testing.T) {
	m := NewManager(nil, &mockSource{name: "c"}, &mockSource{name: "a"}, &mockSource{name: "b"})
	got := m.Names()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}
