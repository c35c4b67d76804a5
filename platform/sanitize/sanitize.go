// Package sanitize provides text sanitization utilities for inbound content.
package sanitize

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRegex  = regexp.MustCompile(`<[^>]*>`)
	slugDashRegex = regexp.MustCompile(`[^a-z0-9]+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.ReplaceAll(result, "&lt;", "<")
	result = strings.ReplaceAll(result, "&gt;", ">")
	result = strings.ReplaceAll(result, "&amp;", "&")
	result = strings.ReplaceAll(result, "&quot;", "\"")
	result = strings.ReplaceAll(result, "&#39;", "'")
	// Re-strip after entity decode to catch encoded tags
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes inbound message text for storage and prompting.
func Text(s string) string {
	return StripHTML(s)
}

// Slug lowercases s, strips diacritics and joins words with dashes.
// "Áudio Cliente 01" becomes "audio-cliente-01".
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	slug := slugDashRegex.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// FileName slugifies the base name of fileName and keeps its extension.
func FileName(fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	base := Slug(strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)))
	if base == "" {
		base = "file"
	}
	return base + ext
}
