// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/pdiddy/litscout/pkg/types"
)

// DefaultSimilarityThreshold is the cosine similarity above which two
// titles are considered duplicates in the embedding pass.
const DefaultSimilarityThreshold = 0.95

// Dedup removes duplicate records, keeping the earliest occurrence. Two
// passes: exact match on the canonical URL (falling back to the PDF URL
// when the canonical one is empty), then exact match on the normalized
// title. Records with neither key always survive.
func Dedup(records []types.PaperRecord) []types.PaperRecord {
	byURL := dedupBy(records, func(r types.PaperRecord) string {
		if r.CanonicalURL != "" {
			return r.CanonicalURL
		}
		return r.PDFURL
	})
	return dedupBy(byURL, func(r types.PaperRecord) string {
		return normalizeTitle(r.Title)
	})
}

// dedupBy keeps the first record for each non-empty key.
func dedupBy(records []types.PaperRecord, key func(types.PaperRecord) string) []types.PaperRecord {
	seen := make(map[string]bool, len(records))
	var out []types.PaperRecord
	for _, r := range records {
		k := key(r)
		if k != "" && seen[k] {
			continue
		}
		if k != "" {
			seen[k] = true
		}
		out = append(out, r)
	}
	return out
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DedupSimilar runs the optional third pass: pairwise cosine similarity
// over title embeddings, collapsing any pair above threshold into the
// earlier-indexed record. The clustering is greedy and order-dependent,
// not globally optimal, which is fine for pools of tens to low hundreds
// of records. A nil embedder or an embedding failure leaves the pool
// unchanged.
func DedupSimilar(ctx context.Context, records []types.PaperRecord, e Embedder, threshold float64) []types.PaperRecord {
	if e == nil || len(records) < 2 {
		return records
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r.Title
	}

	vecs, err := e.Embed(ctx, titles)
	if err != nil || len(vecs) != len(records) {
		return records
	}

	dropped := make([]bool, len(records))
	for i := 0; i < len(records); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(records); j++ {
			if dropped[j] {
				continue
			}
			if cosineSimilarity(vecs[i], vecs[j]) > threshold {
				dropped[j] = true
			}
		}
	}

	var out []types.PaperRecord
	for i, r := range records {
		if !dropped[i] {
			out = append(out, r)
		}
	}
	return out
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
