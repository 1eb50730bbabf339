// Package record defines the structured results of source extraction and the
// unified per-grant view they merge into. Records are built incrementally by
// their producers and treated as immutable once handed downstream.
package record

// Category is one of the fixed semantic buckets grant information is filed
// under. The set is closed; no category is invented at runtime.
type Category string

const (
	CategoryDocumentation Category = "documentation"
	CategoryRequirements  Category = "requirements"
	CategoryDeadlines     Category = "deadlines"
	CategoryEligibility   Category = "eligibility"
	CategoryFunding       Category = "funding"
)

// Categories lists the buckets in their canonical order.
var Categories = []Category{
	CategoryDocumentation,
	CategoryRequirements,
	CategoryDeadlines,
	CategoryEligibility,
	CategoryFunding,
}

// Section is one titled block of body text.
type Section struct {
	Title string
	Body  string
}

// ItemList is one titled, ordered list of items.
type ItemList struct {
	Title string
	Items []string
}

// TableRow is either keyed by column header or positional. Header/cell-count
// mismatch is an expected case, so both shapes are first-class.
type TableRow struct {
	Keyed map[string]string
	Cells []string
}

// IsKeyed reports whether the row carries header-keyed cells.
func (r TableRow) IsKeyed() bool {
	return r.Keyed != nil
}

// Table is one titled set of rows.
type Table struct {
	Title string
	Rows  []TableRow
}

// TermSnippets holds the deduplicated context snippets matched for one
// capitalized search term, in match order.
type TermSnippets struct {
	Term     string
	Snippets []string
}

// Attachment is a document link detected on a web page, with the human
// context derived from the surrounding markup.
type Attachment struct {
	URL      string
	Context  string
	Text     string
	Priority bool
}

// PDFSource describes one document that contributed to a unified record.
type PDFSource struct {
	URL      string
	Filename string
	Context  string
}

// SourceRecord is the extraction result for one web page or one document.
// All collections preserve insertion order; titled collections overwrite on
// title collision (last write wins) and snippet buckets are set-like.
type SourceRecord struct {
	Title       string
	MainContent string
	Sections    []Section
	Lists       []ItemList
	// PDFLists holds untitled list runs found in document text; the merger
	// assigns them a title.
	PDFLists [][]string
	Tables   []Table
	Snippets []TermSnippets

	// Origin metadata.
	Source   string
	Filename string
	Context  string
	Priority bool
}

// IsEmpty reports whether extraction produced nothing usable.
func (r *SourceRecord) IsEmpty() bool {
	return r.Title == "" && r.MainContent == "" &&
		len(r.Sections) == 0 && len(r.Lists) == 0 && len(r.PDFLists) == 0 &&
		len(r.Tables) == 0 && len(r.Snippets) == 0
}

// SetSection stores body under title, replacing any earlier body with the
// same title while keeping its position.
func (r *SourceRecord) SetSection(title, body string) {
	for i := range r.Sections {
		if r.Sections[i].Title == title {
			r.Sections[i].Body = body
			return
		}
	}
	r.Sections = append(r.Sections, Section{Title: title, Body: body})
}

// AddList appends a titled list. Lists with a title already present replace
// the earlier one in place.
func (r *SourceRecord) AddList(title string, items []string) {
	for i := range r.Lists {
		if r.Lists[i].Title == title {
			r.Lists[i].Items = items
			return
		}
	}
	r.Lists = append(r.Lists, ItemList{Title: title, Items: items})
}

// AddSnippet records one matched snippet for term, skipping duplicates
// within the term's bucket.
func (r *SourceRecord) AddSnippet(term, snippet string) {
	for i := range r.Snippets {
		if r.Snippets[i].Term != term {
			continue
		}
		for _, existing := range r.Snippets[i].Snippets {
			if existing == snippet {
				return
			}
		}
		r.Snippets[i].Snippets = append(r.Snippets[i].Snippets, snippet)
		return
	}
	r.Snippets = append(r.Snippets, TermSnippets{Term: term, Snippets: []string{snippet}})
}

// ApproxSize estimates how much text the record carries. The pipeline uses
// it to decide whether more documents are worth fetching.
func (r *SourceRecord) ApproxSize() int {
	size := len(r.MainContent)
	for _, s := range r.Sections {
		size += len(s.Body)
	}
	for _, l := range r.Lists {
		for _, item := range l.Items {
			size += len(item)
		}
	}
	for _, items := range r.PDFLists {
		for _, item := range items {
			size += len(item)
		}
	}
	for _, b := range r.Snippets {
		for _, s := range b.Snippets {
			size += len(s)
		}
	}
	return size
}

// UnifiedRecord is the merged view of a grant across all of its sources.
type UnifiedRecord struct {
	Title    string
	Overview string
	// Sections holds leftover uncategorized blocks, in drain order.
	Sections []Section
	// Lists holds the unioned titled lists, in first-seen title order.
	Lists []ItemList
	// Items holds the per-category sequences; every string is unique within
	// its sequence and keeps its first-occurrence position.
	Items      map[Category][]string
	PDFSources []PDFSource
}

// NewUnifiedRecord returns an empty merge target.
func NewUnifiedRecord() *UnifiedRecord {
	return &UnifiedRecord{Items: make(map[Category][]string)}
}

// IsEmpty reports whether the merge produced nothing to render.
func (u *UnifiedRecord) IsEmpty() bool {
	if u == nil {
		return true
	}
	if u.Title != "" || u.Overview != "" {
		return false
	}
	if len(u.Sections) > 0 || len(u.Lists) > 0 || len(u.PDFSources) > 0 {
		return false
	}
	for _, items := range u.Items {
		if len(items) > 0 {
			return false
		}
	}
	return true
}
