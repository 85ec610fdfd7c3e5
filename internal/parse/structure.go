// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"strings"
	"unicode"
)

// Section is one detected document section.
type Section struct {
	Title   string
	Content string
}

// sectionVocabulary lists heading words common in papers. A short line
// containing one of these counts as a heading even when it is not
// uppercase.
var sectionVocabulary = []string{
	"abstract",
	"introduction",
	"background",
	"related work",
	"methodology",
	"methods",
	"method",
	"approach",
	"experiments",
	"experimental setup",
	"evaluation",
	"results",
	"discussion",
	"conclusion",
	"conclusions",
	"future work",
	"acknowledgments",
	"acknowledgements",
	"references",
	"appendix",
}

// isHeading reports whether a line looks like a section heading: either
// short all-uppercase text, or a short line containing a known section
// word. The containment test trades precision for recall; the length
// cap keeps body paragraphs out.
func isHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 80 {
		return false
	}

	if isAllUpper(line) && len(line) > 3 {
		return true
	}

	lower := strings.ToLower(line)
	for _, word := range sectionVocabulary {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// isAllUpper reports whether every letter in s is uppercase, and s has
// at least one letter.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// ParseStructure splits text into sections at heading lines. Text
// before the first heading becomes a section with an empty title.
func ParseStructure(text string) []Section {
	var sections []Section
	current := Section{}
	var body strings.Builder

	flush := func() {
		content := strings.TrimSpace(body.String())
		if current.Title != "" || content != "" {
			current.Content = content
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		if isHeading(line) {
			flush()
			current = Section{Title: strings.TrimSpace(line)}
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()
	return sections
}

// FindSection returns the first section whose title contains name,
// matched case-insensitively, or nil.
func FindSection(sections []Section, name string) *Section {
	name = strings.ToLower(name)
	for i := range sections {
		if strings.Contains(strings.ToLower(sections[i].Title), name) {
			return &sections[i]
		}
	}
	return nil
}
