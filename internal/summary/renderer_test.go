package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbandi/grantdocs/internal/merge"
	"github.com/openbandi/grantdocs/internal/record"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func TestRenderEmptyRecordSentinel(t *testing.T) {
	r := NewRendererAt(fixedClock)
	got := r.Render(record.NewUnifiedRecord())
	assert.Equal(t, EmptySummary, got)
	assert.NotEmpty(t, got)
}

func TestRenderSectionOrder(t *testing.T) {
	unified := record.NewUnifiedRecord()
	unified.Title = "Bando Innovazione"
	unified.Overview = "Il bando sostiene le imprese innovative."
	unified.Items[record.CategoryDocumentation] = []string{"Visura camerale aggiornata"}
	unified.Items[record.CategoryDeadlines] = []string{"Domande entro il 30 giugno 2025"}
	unified.Items[record.CategoryFunding] = []string{"Contributo fino a 50.000 euro"}
	unified.PDFSources = []record.PDFSource{
		{URL: "https://example.it/moduli.pdf", Filename: "moduli.pdf", Context: "Modulistica"},
		{URL: "https://example.it/faq.pdf", Filename: "faq.pdf"},
	}

	r := NewRendererAt(fixedClock)
	got := r.Render(unified)

	headings := []string{
		"# Bando Innovazione",
		"## Panoramica",
		"## Documentazione Richiesta",
		"## Finanziamento",
		"## Scadenze",
		"## Fonti PDF",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(got, h)
		require.GreaterOrEqual(t, idx, 0, "missing heading %q", h)
		assert.Greater(t, idx, last, "heading %q out of order", h)
		last = idx
	}

	assert.Contains(t, got, "- Modulistica [moduli.pdf]")
	assert.Contains(t, got, "- faq.pdf")
	assert.Contains(t, got, "_Ultimo aggiornamento: 15/06/2025 10:30_")
	assert.NotContains(t, got, "## Requisiti")
}

func TestRenderFallbackTitle(t *testing.T) {
	unified := record.NewUnifiedRecord()
	unified.Overview = "Qualche contenuto."

	r := NewRendererAt(fixedClock)
	got := r.Render(unified)
	assert.True(t, strings.HasPrefix(got, "# Documentazione Necessaria"))
}

func TestRenderListAndSectionFilters(t *testing.T) {
	unified := record.NewUnifiedRecord()
	unified.Title = "Bando"
	unified.Lists = []record.ItemList{
		{Title: "Allegati", Items: []string{"Modulo A1", "Modulo A2"}},
		{Title: "Voce singola", Items: []string{"solo una"}},
	}
	unified.Sections = []record.Section{
		{Title: "Modalità di rendicontazione", Body: strings.Repeat("Le spese finanziate vanno rendicontate. ", 5)},
		{Title: "Colophon", Body: "corto"},
	}

	r := NewRendererAt(fixedClock)
	got := r.Render(unified)

	assert.Contains(t, got, "## Allegati")
	assert.NotContains(t, got, "Voce singola")
	assert.Contains(t, got, "## Modalità di rendicontazione")
	assert.NotContains(t, got, "Colophon")
}

// End-to-end over merge and render: one web record and one PDF record
// produce a single documentation section listing web items before PDF ones.
func TestRenderEndToEnd(t *testing.T) {
	web := []record.SourceRecord{{
		Title: "Bando Ricerca",
		Snippets: []record.TermSnippets{
			{Term: "Documentazione", Snippets: []string{"Visura camerale", "Bilanci ultimi 3 anni"}},
		},
	}}
	pdf := []record.SourceRecord{{
		Source:  "https://example.it/moduli.pdf",
		Context: "Modulistica",
		Snippets: []record.TermSnippets{
			{Term: "Allegati", Snippets: []string{"Modulo A1"}},
		},
	}}

	unified := merge.Merge(web, pdf)
	got := NewRendererAt(fixedClock).Render(unified)

	assert.Contains(t, got, "# Bando Ricerca")
	docIdx := strings.Index(got, "## Documentazione Richiesta")
	require.GreaterOrEqual(t, docIdx, 0)

	visura := strings.Index(got, "- Visura camerale")
	bilanci := strings.Index(got, "- Bilanci ultimi 3 anni")
	modulo := strings.Index(got, "- Modulo A1")
	require.True(t, visura > docIdx && bilanci > visura && modulo > bilanci)
}
