package extract

import (
	"regexp"
	"strconv"

	"github.com/openbandi/grantdocs/internal/record"
	"github.com/openbandi/grantdocs/internal/textutil"
	"github.com/openbandi/grantdocs/internal/vocab"
)

// termPattern anchors context windows around one vocabulary term.
type termPattern struct {
	key string
	re  *regexp.Regexp
}

func compileTermPatterns(terms []string, window int) []termPattern {
	w := strconv.Itoa(window)
	patterns := make([]termPattern, 0, len(terms))
	for _, term := range terms {
		patterns = append(patterns, termPattern{
			key: vocab.Capitalize(term),
			re:  regexp.MustCompile(`(?i).{0,` + w + `}` + regexp.QuoteMeta(term) + `.{0,` + w + `}`),
		})
	}
	return patterns
}

// collectSnippets records the cleaned, deduplicated context around every
// term occurrence in text, bucketed under the term's capitalized form.
func collectSnippets(rec *record.SourceRecord, text string, patterns []termPattern) {
	if text == "" {
		return
	}
	for _, p := range patterns {
		for _, match := range p.re.FindAllString(text, -1) {
			if cleaned := textutil.Clean(match); cleaned != "" {
				rec.AddSnippet(p.key, cleaned)
			}
		}
	}
}
