package common

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// NormalizeTitle performs basic cleanup on an article title copied out of a
// spreadsheet: edge whitespace and wrapping quotes are removed and inner runs
// of whitespace collapse to a single space.
func NormalizeTitle(raw string) string {
	cleaned := strings.TrimSpace(raw)

	// Strip matching wrapping quotes: "Stegosaurus" -> Stegosaurus
	for _, q := range []string{`"`, `'`} {
		if len(cleaned) >= 2 && strings.HasPrefix(cleaned, q) && strings.HasSuffix(cleaned, q) {
			cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
		}
	}

	return strings.Join(strings.Fields(cleaned), " ")
}

// ArticleSlug converts a title into the path segment the pageviews API
// expects: spaces become underscores, then the segment is URL encoded.
// Slashes are encoded too, so "AC/DC" stays one segment.
func ArticleSlug(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
