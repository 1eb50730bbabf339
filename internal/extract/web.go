// Package extract turns raw page and document text into structured source
// records. Extraction is best-effort: malformed or empty input yields an
// empty record, never an error.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/openbandi/grantdocs/internal/record"
	"github.com/openbandi/grantdocs/internal/textutil"
	"github.com/openbandi/grantdocs/internal/urlutil"
	"github.com/openbandi/grantdocs/internal/vocab"
)

const webSnippetWindow = 200

var contentClassHints = []string{"content", "main", "body", "article"}

var headingRanks = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// WebExtractor builds source records from grant announcement pages.
type WebExtractor struct {
	vocab    *vocab.Vocabulary
	patterns []termPattern
}

func NewWebExtractor(v *vocab.Vocabulary) *WebExtractor {
	return &WebExtractor{
		vocab:    v,
		patterns: compileTermPatterns(v.SearchTerms, webSnippetWindow),
	}
}

// Extract parses an HTML page and returns its structured record together
// with the attachment links found on it, in document order.
func (e *WebExtractor) Extract(r io.Reader, contentType, pageURL string) (record.SourceRecord, []record.Attachment) {
	var rec record.SourceRecord
	rec.Source = pageURL

	doc, err := parseHTML(r, contentType)
	if err != nil {
		return rec, nil
	}
	doc.Find("script,noscript,style").Remove()

	base, _ := url.Parse(pageURL)

	rec.Title = textutil.NormalizeWhitespace(doc.Find("title").First().Text())
	rec.MainContent = e.mainContent(doc)
	e.sections(doc, &rec)
	collectSnippets(&rec, rec.MainContent, e.patterns)
	e.lists(doc, &rec)
	e.tables(doc, &rec)

	return rec, e.attachments(doc, base)
}

func parseHTML(r io.Reader, contentType string) (*goquery.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	data := buf.Bytes()

	enc, _, _ := charset.DetermineEncoding(data, contentType)
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, err
		}
		decoded = data
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(decoded))
}

// mainContent prefers the longest text under a container whose class hints
// at page content; without one it concatenates the page's text elements.
func (e *WebExtractor) mainContent(doc *goquery.Document) string {
	var longest string
	doc.Find("main,article,div,section").Each(func(_ int, s *goquery.Selection) {
		class := strings.ToLower(s.AttrOr("class", ""))
		if class == "" {
			return
		}
		hinted := false
		for _, hint := range contentClassHints {
			if strings.Contains(class, hint) {
				hinted = true
				break
			}
		}
		if !hinted {
			return
		}
		if text := textutil.Clean(s.Text()); len(text) > len(longest) {
			longest = text
		}
	})
	if longest != "" {
		return longest
	}

	var b strings.Builder
	doc.Find("p,li,td,h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		if text := textutil.Clean(s.Text()); text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	})
	return strings.TrimSpace(b.String())
}

// sections harvests the blocks under headings that mention one of the
// configured section terms, accumulating sibling text up to the next
// heading of equal or higher rank.
func (e *WebExtractor) sections(doc *goquery.Document, rec *record.SourceRecord) {
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		headingText := strings.ToLower(s.Text())
		matched := false
		for _, term := range e.vocab.ImportantSections {
			if strings.Contains(headingText, term) {
				matched = true
				break
			}
		}
		if !matched || len(s.Nodes) == 0 {
			return
		}

		title := textutil.NormalizeWhitespace(s.Text())
		rank := headingRanks[goquery.NodeName(s)]

		var b strings.Builder
		for n := s.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
			if r, ok := nodeHeadingRank(n); ok && r <= rank {
				break
			}
			if text := textutil.Clean(nodeText(n)); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}

		body := strings.TrimSpace(b.String())
		if title != "" && body != "" {
			rec.SetSection(title, body)
		}
	})
}

func (e *WebExtractor) lists(doc *goquery.Document, rec *record.SourceRecord) {
	doc.Find("ul,ol").Each(func(_ int, s *goquery.Selection) {
		title := e.listTitle(s)
		if title == "" {
			return
		}
		var items []string
		s.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := textutil.Clean(li.Text()); text != "" {
				items = append(items, text)
			}
		})
		if len(items) > 0 {
			rec.AddList(title, items)
		}
	})
}

// listTitle uses the nearest preceding heading, or a short preceding
// paragraph when no heading exists. Untitled lists are skipped.
func (e *WebExtractor) listTitle(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	if h := prevMatching(s.Nodes[0], isHeading); h != nil {
		return textutil.NormalizeWhitespace(nodeText(h))
	}
	if p := prevMatching(s.Nodes[0], func(n *html.Node) bool { return n.Data == "p" }); p != nil {
		if text := nodeText(p); len(text) < 150 {
			return textutil.NormalizeWhitespace(text)
		}
	}
	return ""
}

func (e *WebExtractor) tables(doc *goquery.Document, rec *record.SourceRecord) {
	doc.Find("table").Each(func(idx int, s *goquery.Selection) {
		title := fmt.Sprintf("Tabella %d", idx+1)
		if caption := s.Find("caption").First(); caption.Length() > 0 {
			title = textutil.NormalizeWhitespace(caption.Text())
		} else if len(s.Nodes) > 0 {
			if h := prevMatching(s.Nodes[0], isHeading); h != nil {
				title = textutil.NormalizeWhitespace(nodeText(h))
			}
		}

		var headers []string
		if headerRow := s.Find("thead tr").First(); headerRow.Length() > 0 {
			headers = cellTexts(headerRow)
		}
		if len(headers) == 0 {
			headers = cellTexts(s.Find("tr").First())
		}

		var rows []record.TableRow
		s.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
			if len(headers) > 0 && rowIdx == 0 {
				return
			}
			cells := cellTexts(tr)
			empty := true
			for _, c := range cells {
				if c != "" {
					empty = false
					break
				}
			}
			if len(cells) == 0 || empty {
				return
			}
			if len(headers) > 0 && len(cells) == len(headers) {
				keyed := make(map[string]string, len(cells))
				for i, h := range headers {
					keyed[h] = cells[i]
				}
				rows = append(rows, record.TableRow{Keyed: keyed})
			} else {
				rows = append(rows, record.TableRow{Cells: cells})
			}
		})

		if len(rows) > 0 {
			rec.Tables = append(rec.Tables, record.Table{Title: title, Rows: rows})
		}
	})
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, textutil.Clean(cell.Text()))
	})
	return cells
}

// attachments returns the document links on the page in document order.
// Duplicates by URL may recur; the orchestrator dedupes what it fetches.
func (e *WebExtractor) attachments(doc *goquery.Document, base *url.URL) []record.Attachment {
	var out []record.Attachment
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		text := textutil.NormalizeWhitespace(s.Text())

		candidate := e.vocab.IsAttachmentHref(href)
		if !candidate && text != "" {
			candidate = e.vocab.AttachmentTextPattern.MatchString(text)
		}
		if !candidate {
			return
		}

		abs, _, err := urlutil.Normalize(base, href)
		if err != nil {
			return
		}

		context := e.attachmentContext(s, href, text)
		out = append(out, record.Attachment{
			URL:      abs,
			Context:  context,
			Text:     text,
			Priority: e.vocab.IsPriority(href, context),
		})
	})
	return out
}

// attachmentContext derives a human label for a link: a preceding heading
// or label, then the enclosing container's text when reasonably short,
// then the link's own text, then the bare filename.
func (e *WebExtractor) attachmentContext(s *goquery.Selection, href, text string) string {
	var context string
	if len(s.Nodes) > 0 {
		if h := prevMatching(s.Nodes[0], isLabelling); h != nil {
			context = strings.TrimSpace(nodeText(h)) + " - "
		}
	}

	parent := s.Parent()
	switch goquery.NodeName(parent) {
	case "li", "td", "div", "p":
		parentText := strings.TrimSpace(parent.Text())
		if len(parentText) > 10 && len(parentText) < 200 {
			context += parentText
		}
	}

	if context == "" {
		context = text
	}
	if context == "" {
		context = urlutil.FileName(href)
	}
	return textutil.NormalizeWhitespace(context)
}

// nodeText concatenates all text beneath a node.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func nodeHeadingRank(n *html.Node) (int, bool) {
	if n.Type != html.ElementNode {
		return 0, false
	}
	rank, ok := headingRanks[n.Data]
	return rank, ok
}

func isHeading(n *html.Node) bool {
	_, ok := headingRanks[n.Data]
	return ok
}

func isLabelling(n *html.Node) bool {
	return isHeading(n) || n.Data == "label" || n.Data == "strong"
}

// prevMatching walks backwards in document order from n and returns the
// first element the predicate accepts.
func prevMatching(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := prevNode(n); cur != nil; cur = prevNode(cur) {
		if cur.Type == html.ElementNode && match(cur) {
			return cur
		}
	}
	return nil
}

// prevNode yields the node immediately before n in document order: the
// deepest last descendant of the previous sibling, else the parent.
func prevNode(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		cur := n.PrevSibling
		for cur.LastChild != nil {
			cur = cur.LastChild
		}
		return cur
	}
	return n.Parent
}
