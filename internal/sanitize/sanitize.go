// Package sanitize cleans user supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxTextPasses = 4

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips all markup and trims surrounding whitespace. The result is
// plain text with entities unescaped, so "R&D" stays "R&D"; it must be
// escaped again wherever it is rendered as HTML. Sanitizing repeats until
// unescaping stops revealing markup, which turns "&lt;b&gt;" into nothing
// rather than a literal tag.
func Text(s string) string {
	for i := 0; i < maxTextPasses; i++ {
		out := html.UnescapeString(strict.Sanitize(s))
		if out == s {
			return strings.TrimSpace(s)
		}
		s = out
	}
	// Escapes nested deeper than that stay escaped.
	return strings.TrimSpace(strict.Sanitize(s))
}

// HTML keeps safe formatting markup (links, emphasis, lists) and removes
// scripts, event handlers and javascript: URLs.
func HTML(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Tags sanitizes, lowercases and de-duplicates tags, dropping empty ones.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(Text(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
