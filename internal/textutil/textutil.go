// Package textutil canonicalizes scraped text so that downstream keyword
// matching sees one consistent form regardless of source formatting.
package textutil

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	doubleBullet  = regexp.MustCompile(`•\s*[•\-*]\s*`)
	sentenceGapRe = regexp.MustCompile(`([.!?])([A-Z])`)
	excessPunctRe = regexp.MustCompile(`([.!?,:;]){2,}`)
	elisionRe     = regexp.MustCompile(`\bl ([aeiouAEIOU])`)
	spacePunctRe  = regexp.MustCompile(`\s+([.,;:!?])`)
	leadMarkerRe  = regexp.MustCompile(`^(?:[•\-*\d]+[.)]*\s*)+`)
)

var unicodeReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	" ", " ",
)

// NormalizeWhitespace collapses any whitespace run to a single space and
// trims both ends. Empty input stays empty.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Clean normalizes whitespace, typographic punctuation, bullet glyphs,
// Italian elision ("l aiuto" -> "l'aiuto") and leading list markers.
// Idempotent: Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = NormalizeWhitespace(text)
	text = unicodeReplacer.Replace(text)

	text = doubleBullet.ReplaceAllString(text, "• ")
	text = sentenceGapRe.ReplaceAllString(text, "$1 $2")
	text = elisionRe.ReplaceAllString(text, "l'$1")
	// Removing spaces before punctuation can join marks into a run, so the
	// run collapse must come after it.
	text = spacePunctRe.ReplaceAllString(text, "$1")
	text = excessPunctRe.ReplaceAllString(text, "$1")
	text = leadMarkerRe.ReplaceAllString(text, "")

	return text
}

// Truncate shortens text to at most maxLength characters, cutting at the
// last sentence-ending period inside the limit when one exists. When no
// period is available the hard prefix is returned with an ellipsis marker.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if text == "" || len(runes) <= maxLength {
		return text
	}

	prefix := runes[:maxLength]
	lastPeriod := -1
	for i, r := range prefix {
		if r == '.' {
			lastPeriod = i
		}
	}
	if lastPeriod == -1 {
		return string(prefix) + "..."
	}
	return string(prefix[:lastPeriod+1])
}
