// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries external paper catalogs and normalizes their
// heterogeneous responses into PaperRecords. Each adapter owns exactly one
// upstream protocol; the Manager fans a query out across registered
// adapters and isolates per-source failures.
package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/litscout/pkg/types"
)

// Source is a single paper catalog. Implementations are registered with a
// Manager at construction time.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, topK int) ([]types.PaperRecord, error)
	FetchByID(ctx context.Context, id string) (*types.PaperRecord, error)
}

// Manager dispatches searches across registered sources. Adding a source
// is a pure registration call with no side effects on existing sources.
type Manager struct {
	sources map[string]Source
	order   []string
	warnW   io.Writer
}

// NewManager returns a Manager with the given sources registered in order.
// Warnings about failed sources are written to w; pass io.Discard to
// silence them.
func NewManager(w io.Writer, srcs ...Source) *Manager {
	if w == nil {
		w = io.Discard
	}
	m := &Manager{
		sources: make(map[string]Source),
		warnW:   w,
	}
	for _, s := range srcs {
		m.Register(s)
	}
	return m
}

// Register adds a source. Re-registering a name replaces the previous
// source but keeps its position in the dispatch order.
func (m *Manager) Register(s Source) {
	if _, exists := m.sources[s.Name()]; !exists {
		m.order = append(m.order, s.Name())
	}
	m.sources[s.Name()] = s
}

// Names returns the registered source names in registration order.
func (m *Manager) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// SearchAll queries every registered source. A failing source contributes
// an empty slice and a warning; sibling sources are unaffected.
func (m *Manager) SearchAll(ctx context.Context, query string, topK int) map[string][]types.PaperRecord {
	results := make(map[string][]types.PaperRecord, len(m.sources))
	for _, name := range m.order {
		papers, err := m.sources[name].Search(ctx, query, topK)
		if err != nil {
			fmt.Fprintf(m.warnW, "warning: source %s failed: %v\n", name, err)
			results[name] = nil
			continue
		}
		results[name] = papers
	}
	return results
}

// SearchOne queries a single named source.
func (m *Manager) SearchOne(ctx context.Context, name, query string, topK int) ([]types.PaperRecord, error) {
	s, ok := m.sources[name]
	if !ok {
		return nil, fmt.Errorf("source not registered: %q", name)
	}
	return s.Search(ctx, query, topK)
}

// Fetch retrieves a single record by identifier from a named source.
func (m *Manager) Fetch(ctx context.Context, name, id string) (*types.PaperRecord, error) {
	s, ok := m.sources[name]
	if !ok {
		return nil, fmt.Errorf("source not registered: %q", name)
	}
	return s.FetchByID(ctx, id)
}
