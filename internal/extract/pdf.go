package extract

import (
	"regexp"
	"strings"

	"github.com/openbandi/grantdocs/internal/record"
	"github.com/openbandi/grantdocs/internal/textutil"
	"github.com/openbandi/grantdocs/internal/vocab"
)

const (
	pdfSnippetWindow = 150
	pdfExcerptLength = 5000
)

var (
	pdfHeadingRe = regexp.MustCompile(`^([A-Z][A-Za-z0-9 \-,]+)[.:]?$`)
	bulletLineRe = regexp.MustCompile(`^\s*[•\-*]\s+(.+)$`)
	numberLineRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	columnGapRe  = regexp.MustCompile(`\s{2,}`)
)

// PDFExtractor builds source records from the flat text of a document.
// Source URL, filename and the priority flag are attached by the caller.
type PDFExtractor struct {
	patterns []termPattern
}

func NewPDFExtractor(v *vocab.Vocabulary) *PDFExtractor {
	return &PDFExtractor{patterns: compileTermPatterns(v.SearchTerms, pdfSnippetWindow)}
}

// Extract processes document text with the context string of the link that
// led to it. Empty text yields an empty record.
func (e *PDFExtractor) Extract(text, context string) record.SourceRecord {
	var rec record.SourceRecord
	if strings.TrimSpace(text) == "" {
		return rec
	}
	rec.Context = context

	cleaned := textutil.Clean(text)
	if runes := []rune(cleaned); len(runes) > pdfExcerptLength {
		cleaned = string(runes[:pdfExcerptLength])
	}
	rec.MainContent = cleaned

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	e.sections(lines, &rec)
	e.listRuns(lines, bulletLineRe, &rec)
	e.listRuns(lines, numberLineRe, &rec)
	e.tableRows(lines, &rec)
	collectSnippets(&rec, text, e.patterns)

	return rec
}

// sections treats a capitalized standalone line as a heading and the line
// after it as the section body. Later headings overwrite earlier ones that
// share a title.
func (e *PDFExtractor) sections(lines []string, rec *record.SourceRecord) {
	for i, line := range lines {
		m := pdfHeadingRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		title := strings.TrimSpace(m[1])
		if len(title) < 3 || len(title) > 100 {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		if body := textutil.Clean(lines[i+1]); body != "" {
			rec.SetSection(title, body)
		}
	}
}

// listRuns collects every run of two or more consecutive lines matching the
// marker pattern as one list.
func (e *PDFExtractor) listRuns(lines []string, marker *regexp.Regexp, rec *record.SourceRecord) {
	var run []string
	flush := func() {
		if len(run) >= 2 {
			rec.PDFLists = append(rec.PDFLists, run)
		}
		run = nil
	}
	for _, line := range lines {
		m := marker.FindStringSubmatch(line)
		if m == nil {
			flush()
			continue
		}
		if item := textutil.Clean(m[1]); item != "" {
			run = append(run, item)
		}
	}
	flush()
}

// tableRows detects column-aligned lines. Three or more candidates across
// the document form a single positional table.
func (e *PDFExtractor) tableRows(lines []string, rec *record.SourceRecord) {
	var rows []record.TableRow
	for i, line := range lines {
		if i == 0 || i == len(lines)-1 {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if nonSpaceCount(trimmed) <= 10 || !columnGapRe.MatchString(trimmed) {
			continue
		}
		rows = append(rows, record.TableRow{Cells: columnGapRe.Split(trimmed, -1)})
	}
	if len(rows) >= 3 {
		rec.Tables = append(rec.Tables, record.Table{Title: "Tabella 1", Rows: rows})
	}
}

func nonSpaceCount(s string) int {
	count := 0
	for _, r := range s {
		if r != ' ' && r != '\t' {
			count++
		}
	}
	return count
}
