package source

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// plainText strips markup and collapses whitespace.
// Feeds often carry escaped markup, so entities are decoded before and after stripping.
func plainText(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(stripPolicy.Sanitize(html.UnescapeString(s)))
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to n runes and marks the cut with "..."
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}
