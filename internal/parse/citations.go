// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"unicode"
)

// minCitationLength filters out fragments that are too short to be a
// real reference line.
const minCitationLength = 20

// ExtractCitations pulls raw citation lines from the references section
// of the text. A line counts as a citation when it starts with a digit,
// bracket, or paren marker, or when it is long enough and contains a
// comma, which catches author-year styles without markers.
func ExtractCitations(text string) []string {
	sections := ParseStructure(text)
	ref := FindSection(sections, "references")
	if ref == nil {
		ref = FindSection(sections, "bibliography")
	}
	if ref == nil {
		return nil
	}

	var citations []string
	for _, line := range strings.Split(ref.Content, "\n") {
		line = strings.TrimSpace(line)
		if looksLikeCitation(line) {
			citations = append(citations, line)
		}
	}
	return citations
}

func looksLikeCitation(line string) bool {
	if line == "" {
		return false
	}
	r := rune(line[0])
	if unicode.IsDigit(r) || r == '[' || r == '(' {
		return true
	}
	return len(line) > minCitationLength && strings.Contains(line, ",")
}
