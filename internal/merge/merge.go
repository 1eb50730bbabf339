// Package merge folds per-source records into one unified grant view:
// web sources first, then documents, with deduplicated categorized items.
package merge

import (
	"github.com/openbandi/grantdocs/internal/categorize"
	"github.com/openbandi/grantdocs/internal/record"
)

// DefaultPDFListTitle names document lists whose link carried no context.
const DefaultPDFListTitle = "Informazioni dal PDF"

const shortContextLimit = 100

// Merge combines any number of web and PDF records into a unified record.
// Both inputs empty yield an empty record. Web records are folded before
// PDF records, and within each group input order is preserved.
func Merge(webRecords, pdfRecords []record.SourceRecord) *record.UnifiedRecord {
	unified := record.NewUnifiedRecord()
	if len(webRecords) == 0 && len(pdfRecords) == 0 {
		return unified
	}

	// Working map of section-like keyed content; later sources overwrite
	// earlier ones on title collision. Drained through the categorizer at
	// the end so categorized items keep their fold position.
	var working []record.Section
	setWorking := func(title, body string) {
		for i := range working {
			if working[i].Title == title {
				working[i].Body = body
				return
			}
		}
		working = append(working, record.Section{Title: title, Body: body})
	}

	for _, web := range webRecords {
		if web.Title != "" && len(web.Title) > len(unified.Title) {
			unified.Title = web.Title
		}
		if len(web.MainContent) > len(unified.Overview) {
			unified.Overview = web.MainContent
		}
		for _, s := range web.Sections {
			setWorking(s.Title, s.Body)
		}
		for _, l := range web.Lists {
			unionList(unified, l.Title, l.Items)
		}
		for _, bucket := range web.Snippets {
			if category, ok := categorize.Categorize(bucket.Term, bucket.Snippets); ok {
				unified.Items[category] = append(unified.Items[category], bucket.Snippets...)
			}
		}
	}

	for _, pdf := range pdfRecords {
		if pdf.Source != "" {
			unified.PDFSources = append(unified.PDFSources, record.PDFSource{
				URL:      pdf.Source,
				Filename: pdf.Filename,
				Context:  pdf.Context,
			})
		}
		for _, s := range pdf.Sections {
			setWorking(s.Title, s.Body)
		}
		for _, items := range pdf.PDFLists {
			title := DefaultPDFListTitle
			if pdf.Context != "" {
				title = pdf.Context
			}
			unionList(unified, title, items)
		}
		for _, bucket := range pdf.Snippets {
			if !categorize.IsInterestingKey(bucket.Term) {
				continue
			}
			if category, ok := categorize.Categorize(bucket.Term, bucket.Snippets); ok {
				unified.Items[category] = append(unified.Items[category], bucket.Snippets...)
			}
		}
	}

	// No web title: fall back to the first document whose link context is
	// short enough to read as a name.
	if unified.Title == "" {
		for _, pdf := range pdfRecords {
			if pdf.Context != "" && len(pdf.Context) < shortContextLimit {
				unified.Title = pdf.Context
				break
			}
		}
	}

	for _, s := range working {
		if category, ok := categorize.Categorize(s.Title, []string{s.Body}); ok {
			unified.Items[category] = append(unified.Items[category], s.Body)
		} else {
			unified.Sections = append(unified.Sections, s)
		}
	}

	for _, category := range record.Categories {
		unified.Items[category] = dedupe(unified.Items[category])
	}

	return unified
}

// unionList merges items into the titled unified list, keeping first-seen
// order and dropping duplicates.
func unionList(unified *record.UnifiedRecord, title string, items []string) {
	for i := range unified.Lists {
		if unified.Lists[i].Title != title {
			continue
		}
		seen := make(map[string]struct{}, len(unified.Lists[i].Items))
		for _, existing := range unified.Lists[i].Items {
			seen[existing] = struct{}{}
		}
		for _, item := range items {
			if _, ok := seen[item]; ok {
				continue
			}
			unified.Lists[i].Items = append(unified.Lists[i].Items, item)
			seen[item] = struct{}{}
		}
		return
	}
	unified.Lists = append(unified.Lists, record.ItemList{Title: title, Items: append([]string(nil), items...)})
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
