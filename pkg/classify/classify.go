// Package classify assigns topic categories and relevance using keyword substring matching.
package classify

import (
	"strings"

	"github.com/umputun/newsnexus/pkg/domain"
)

// Categorize returns the first category in table order having a keyword contained in
// the lowercased title and body, General if nothing matches.
// The All pseudo-category and empty keywords never match.
func Categorize(title, body string, table domain.KeywordTable) domain.Category {
	text := normalize(title, body)
	for _, entry := range table.Entries() {
		if entry.Category == domain.CategoryAll {
			continue
		}
		if containsAny(text, entry.Keywords) {
			return entry.Category
		}
	}
	return domain.CategoryGeneral
}

// IsRelevant reports whether any keyword is a case-insensitive substring of title and body
func IsRelevant(title, body string, keywords []string) bool {
	return containsAny(normalize(title, body), keywords)
}

func normalize(title, body string) string {
	return strings.ToLower(title + " " + body)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
