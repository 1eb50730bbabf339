// Package vocab holds the fixed Italian grant vocabulary driving extraction:
// search terms, section names, attachment link patterns and priority markers.
// Loaded once at startup and treated as immutable.
package vocab

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vocabulary is the process-wide extraction configuration.
type Vocabulary struct {
	// SearchTerms anchor context snippets in page and document text.
	SearchTerms []string
	// ImportantSections drive heading-based section harvesting on web pages.
	ImportantSections []string
	// AttachmentPatterns match hrefs that point at grant documents.
	AttachmentPatterns []*regexp.Regexp
	// AttachmentTextPattern matches anchor text that hints at an attachment.
	AttachmentTextPattern *regexp.Regexp
	// PriorityKeywords flag attachments likely to carry the core grant rules.
	PriorityKeywords []string
}

var searchTerms = []string{
	"bando", "contributo", "finanziamento", "sovvenzione", "agevolazione",
	"scadenza", "deadline", "termine", "presentazione", "domanda",
	"beneficiari", "destinatari", "requisiti", "ammissibilità", "eligibilità",
	"documentazione", "allegati", "modulistica", "documenti", "certificazioni",
	"fondo", "misura", "intervento", "programma", "progetto",
	"spese", "costi", "ammissibili", "finanziabili",
	"istruttoria", "valutazione", "punteggio", "criteri", "graduatoria",
	"erogazione", "rendicontazione", "liquidazione", "saldo", "anticipo",
	"visura", "camerale", "bilanci", "ula", "dipendenti",
	"brevetto", "patent", "concessione", "titolo", "invention",
	"servizi", "specialistici", "preventivi", "quotation", "valorizzazione",
}

var importantSections = []string{
	"oggetto", "finalità", "obiettivi", "beneficiari", "destinatari",
	"requisiti", "documentazione", "allegati", "modalità", "presentazione",
	"scadenza", "termine", "dotazione", "finanziaria", "contributo",
	"agevolazione", "spese", "ammissibili", "istruttoria", "valutazione",
	"erogazione", "rendicontazione", "contatti", "informazioni", "faq",
}

var attachmentPatterns = []string{
	`.*\.pdf$`,
	`.*document.*\.pdf`,
	`.*allegat.*\.pdf`,
	`.*modulistic.*\.pdf`,
	`.*bando.*\.pdf`,
	`.*avviso.*\.pdf`,
	`.*decreto.*\.pdf`,
	`.*circolare.*\.pdf`,
	`.*istruzion.*\.pdf`,
	`.*guid.*\.pdf`,
	`.*regolament.*\.pdf`,
}

var priorityKeywords = []string{
	"bando", "avviso", "decreto", "documenti", "allegat", "modulistic",
	"istruzion", "guid", "faq", "regolament",
}

var defaultVocabulary = compile()

func compile() *Vocabulary {
	v := &Vocabulary{
		SearchTerms:           searchTerms,
		ImportantSections:     importantSections,
		PriorityKeywords:      priorityKeywords,
		AttachmentTextPattern: regexp.MustCompile(`(?i)\.pdf|documento|allegato|modulistic`),
	}
	for _, p := range attachmentPatterns {
		v.AttachmentPatterns = append(v.AttachmentPatterns, regexp.MustCompile(`(?i)`+p))
	}
	return v
}

// Default returns the shared vocabulary. Callers must not mutate it.
func Default() *Vocabulary {
	return defaultVocabulary
}

var titleCaser = cases.Title(language.Italian)

// Capitalize turns a lowercase search term into its snippet-bucket key
// ("scadenza" -> "Scadenza").
func Capitalize(term string) string {
	return titleCaser.String(strings.ToLower(term))
}

// IsAttachmentHref reports whether an href looks like a grant document link.
func (v *Vocabulary) IsAttachmentHref(href string) bool {
	for _, re := range v.AttachmentPatterns {
		if re.MatchString(href) {
			return true
		}
	}
	return false
}

// IsPriority reports whether an attachment URL or its context mention any
// of the priority markers.
func (v *Vocabulary) IsPriority(href, context string) bool {
	href = strings.ToLower(href)
	context = strings.ToLower(context)
	for _, kw := range v.PriorityKeywords {
		if strings.Contains(href, kw) || strings.Contains(context, kw) {
			return true
		}
	}
	return false
}
