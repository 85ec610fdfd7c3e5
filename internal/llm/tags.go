// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"regexp"
	"strings"
	"sync"
)

// Model output is asked for as loose XML-style tagged fields. Responses
// routinely violate strict XML (unescaped ampersands, stray prose
// around the tags), so extraction is regex per tag rather than a parser.

var (
	tagPatternMu sync.Mutex
	tagPatterns  = make(map[string]*regexp.Regexp)
)

func tagPattern(tag string) *regexp.Regexp {
	tagPatternMu.Lock()
	defer tagPatternMu.Unlock()
	re, ok := tagPatterns[tag]
	if !ok {
		re = regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)
		tagPatterns[tag] = re
	}
	return re
}

// ParseTag returns the trimmed content of the first <tag>...</tag> pair
// in text, or "" if the tag is absent or empty.
func ParseTag(text, tag string) string {
	m := tagPattern(tag).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ParseTags extracts each named tag from text. Missing tags map to "".
func ParseTags(text string, tags []string) map[string]string {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[tag] = ParseTag(text, tag)
	}
	return out
}

// ParseTagList splits a tag's content into lines, dropping empties and
// leading list markers. Useful for fields the model returns as bullet
// lists.
func ParseTagList(text, tag string) []string {
	content := ParseTag(text, tag)
	if content == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
