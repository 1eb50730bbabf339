package summary

import (
	"strings"
	"time"

	"github.com/openbandi/grantdocs/internal/record"
	"github.com/openbandi/grantdocs/internal/textutil"
)

// EmptySummary is returned when a grant yielded no information at all.
const EmptySummary = "Nessuna documentazione necessaria specificata."

const (
	fallbackTitle    = "Documentazione Necessaria"
	overviewLimit    = 500
	sectionBodyLimit = 300
	listMaxItems     = 5
	minSectionLength = 100
)

// categoryHeadings fixes the render order and the Italian section labels.
var categoryHeadings = []struct {
	category record.Category
	label    string
}{
	{record.CategoryDocumentation, "Documentazione Richiesta"},
	{record.CategoryRequirements, "Requisiti"},
	{record.CategoryEligibility, "Beneficiari Ammissibili"},
	{record.CategoryFunding, "Finanziamento"},
	{record.CategoryDeadlines, "Scadenze"},
}

// sectionKeywords gate which leftover sections are relevant enough to show.
var sectionKeywords = []string{"document", "allegat", "requisi", "benefi", "scad", "finanz"}

// Renderer turns a unified record into the final summary document.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererAt fixes the generation timestamp; used by tests.
func NewRendererAt(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// Render produces the structured summary text with its fixed section order.
// An entirely empty record yields the EmptySummary sentinel, never "".
func (r *Renderer) Render(unified *record.UnifiedRecord) string {
	if unified.IsEmpty() {
		return EmptySummary
	}

	var parts []string

	if unified.Title != "" {
		parts = append(parts, "# "+unified.Title)
	} else {
		parts = append(parts, "# "+fallbackTitle)
	}

	if unified.Overview != "" {
		parts = append(parts, "\n## Panoramica\n"+textutil.Truncate(unified.Overview, overviewLimit))
	}

	for _, heading := range categoryHeadings {
		items := unified.Items[heading.category]
		if len(items) == 0 {
			continue
		}
		parts = append(parts, "\n## "+heading.label)
		for _, item := range SelectMostInformative(items, DefaultMaxItems) {
			parts = append(parts, "- "+item)
		}
	}

	for _, list := range unified.Lists {
		if len(list.Items) <= 1 {
			continue
		}
		parts = append(parts, "\n## "+list.Title)
		for _, item := range SelectMostInformative(list.Items, listMaxItems) {
			parts = append(parts, "- "+item)
		}
	}

	for _, section := range unified.Sections {
		if len(section.Body) <= minSectionLength || !isRelevantSection(section) {
			continue
		}
		parts = append(parts, "\n## "+section.Title)
		parts = append(parts, textutil.Truncate(section.Body, sectionBodyLimit))
	}

	if len(unified.PDFSources) > 0 {
		parts = append(parts, "\n## Fonti PDF")
		for _, pdf := range unified.PDFSources {
			filename := pdf.Filename
			if filename == "" {
				filename = "PDF"
			}
			if pdf.Context != "" {
				parts = append(parts, "- "+pdf.Context+" ["+filename+"]")
			} else {
				parts = append(parts, "- "+filename)
			}
		}
	}

	parts = append(parts, "\n\n_Ultimo aggiornamento: "+r.now().Format("02/01/2006 15:04")+"_")

	return strings.Join(parts, "\n")
}

func isRelevantSection(section record.Section) bool {
	haystack := strings.ToLower(section.Title + section.Body)
	for _, kw := range sectionKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
