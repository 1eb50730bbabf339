// Package categorize files (key, content) pairs into the fixed semantic
// buckets using ordered, first-match-wins lexical rules.
package categorize

import (
	"regexp"
	"strings"

	"github.com/openbandi/grantdocs/internal/record"
)

// keyRule matches against a lowercased key. The chain order is a deliberate
// tie-break: many keys satisfy more than one family, and only the first
// matching rule applies.
type keyRule struct {
	terms    []string
	category record.Category
}

var keyRules = []keyRule{
	{[]string{"document", "allegat", "modulistic", "certificaz"}, record.CategoryDocumentation},
	{[]string{"requisit", "necessari", "obblig"}, record.CategoryRequirements},
	{[]string{"scadenz", "termin", "tempistic", "deadline"}, record.CategoryDeadlines},
	{[]string{"beneficiari", "destinatari", "ammissibil", "eligibil"}, record.CategoryEligibility},
	{[]string{"contribut", "finanz", "budget", "fond", "spese"}, record.CategoryFunding},
}

// contentRule matches against joined lowercased content. The traversal
// order differs from the key chain: deadlines outrank requirements here.
type contentRule struct {
	pattern  *regexp.Regexp
	category record.Category
}

var contentRules = []contentRule{
	{regexp.MustCompile(`document|allegat|modulistic|certificaz`), record.CategoryDocumentation},
	{regexp.MustCompile(`scadenz|termin|entro il|deadline`), record.CategoryDeadlines},
	{regexp.MustCompile(`requisit|necessari|obblig|richiesto`), record.CategoryRequirements},
	{regexp.MustCompile(`beneficiari|destinatari|ammissibil|eligible`), record.CategoryEligibility},
	{regexp.MustCompile(`contribut|finanz|budget|fond|euro|€`), record.CategoryFunding},
}

// interestingKeyTerms gate which document snippet buckets are worth routing
// into categories at merge time.
var interestingKeyTerms = []string{
	"document", "allegat", "modulistic", "certificaz",
	"requisit", "necessari", "obblig",
	"scadenz", "termin", "tempistic", "deadline",
	"beneficiari", "destinatari", "ammissibil", "eligibil",
	"contribut", "finanz", "budget", "fond", "spese",
}

// Categorize maps a key and its content to a semantic bucket. Key-based
// rules run first; when none fires, the joined content is matched instead.
// The second return is false when nothing matched, leaving the caller to
// keep the pair as a generic section or drop it.
func Categorize(key string, values []string) (record.Category, bool) {
	keyLower := strings.ToLower(key)
	for _, rule := range keyRules {
		for _, term := range rule.terms {
			if strings.Contains(keyLower, term) {
				return rule.category, true
			}
		}
	}

	text := strings.ToLower(strings.TrimSpace(strings.Join(values, " ")))
	if text != "" {
		for _, rule := range contentRules {
			if rule.pattern.MatchString(text) {
				return rule.category, true
			}
		}
	}

	return "", false
}

// IsInterestingKey reports whether a snippet-bucket key belongs to one of
// the keyword families worth routing through Categorize.
func IsInterestingKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, term := range interestingKeyTerms {
		if strings.Contains(keyLower, term) {
			return true
		}
	}
	return false
}
