// Package slugify turns article titles into URL-safe slugs.
package slugify

import (
	"strings"
	"unicode"
)

// Make normalizes a title into a base slug: lowercase, with every run
// of non-alphanumeric characters collapsed into a single hyphen and
// leading/trailing hyphens trimmed. Uniqueness against the article
// store is the caller's responsibility.
func Make(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// MakeSnake normalizes a tag name into its snake_case key form:
// lowercase with spaces replaced by underscores.
func MakeSnake(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
