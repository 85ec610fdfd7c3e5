// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"reflect"
	"testing"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		name, text, tag, want string
	}{
		{
			name: "simple",
			text: "<title>Attention Is All You Need</title>",
			tag:  "title",
			want: "Attention Is All You Need",
		},
		{
			name: "surrounding prose",
			text: "Here is the extraction:\n<title>\n  A Paper\n</title>\nHope this helps!",
			tag:  "title",
			want: "A Paper",
		},
		{
			name: "multiline content",
			text: "<abstract>Line one.\nLine two.</abstract>",
			tag:  "abstract",
			want: "Line one.\nLine two.",
		},
		{
			name: "unescaped ampersand",
			text: "<methodology>RNNs & attention</methodology>",
			tag:  "methodology",
			want: "RNNs & attention",
		},
		{
			name: "missing tag",
			text: "<title>x</title>",
			tag:  "abstract",
			want: "",
		},
		{
			name: "unclosed tag",
			text: "<title>dangling",
			tag:  "title",
			want: "",
		},
		{
			name: "first occurrence wins",
			text: "<title>first</title><title>second</title>",
			tag:  "title",
			want: "first",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTag(tt.text, tt.tag); got != tt.want {
				t.Errorf("ParseTag(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	text := "<title>T</title>\n<authors>A, B</authors>"
	got := ParseTags(text, []string{"title", "authors", "abstract"})
	want := map[string]string{"title": "T", "authors": "A, B", "abstract": ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTags = %v, want %v", got, want)
	}
}

func TestParseTagList(t *testing.T) {
	text := "<contributions>\n- first finding\n* second finding\n\nthird finding\n</contributions>"
	got := ParseTagList(text, "contributions")
	want := []string{"first finding", "second finding", "third finding"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTagList = %v, want %v", got, want)
	}

	if got := ParseTagList(text, "absent"); got != nil {
		t.Errorf("absent tag = %v, want nil", got)
	}
}
