// Package summary ranks the merged grant information by informativeness and
// renders it into the final documentation text.
package summary

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxItems bounds how many items a category section shows.
	DefaultMaxItems = 10

	minItemLength  = 15
	lengthCeiling  = 5
	lengthPerScore = 50
)

var digitRe = regexp.MustCompile(`\d`)

// importantKeywords raise an item's score; each keyword counts once.
var importantKeywords = []string{
	"document", "allegat", "modulistic", "requisit",
	"scadenz", "termin", "entro il", "deadline",
	"beneficiari", "destinatari", "ammissibil",
	"contribut", "finanz", "budget", "fond", "euro", "€",
	"visura", "camerale", "bilanci", "ula", "dipendenti",
	"brevetto", "patent", "concessione", "identità", "digitale",
}

// SelectMostInformative returns the maxItems highest-scoring items. Short
// inputs pass through unchanged; above the limit, items under 15 characters
// are discarded outright and the rest are scored by length, keyword hits
// and the presence of digits. The sort is stable, so ties keep input order.
func SelectMostInformative(items []string, maxItems int) []string {
	if len(items) <= maxItems {
		return items
	}

	type scored struct {
		item  string
		score float64
	}
	var candidates []scored
	for _, item := range items {
		// Length is counted in runes so accented text scores the same as
		// its plain-ASCII equivalent.
		length := utf8.RuneCountInString(item)
		if length < minItemLength {
			continue
		}

		score := float64(length) / lengthPerScore
		if score > lengthCeiling {
			score = lengthCeiling
		}

		lower := strings.ToLower(item)
		for _, kw := range importantKeywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if digitRe.MatchString(item) {
			score++
		}

		candidates = append(candidates, scored{item: item, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxItems {
		candidates = candidates[:maxItems]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.item)
	}
	return out
}
