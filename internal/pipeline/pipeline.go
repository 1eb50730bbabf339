// Package pipeline orchestrates one crawl per grant: fetch the grant
// pages, download the interesting attachments, merge everything and
// persist the rendered summary.
package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openbandi/grantdocs/internal/extract"
	"github.com/openbandi/grantdocs/internal/merge"
	"github.com/openbandi/grantdocs/internal/observability"
	"github.com/openbandi/grantdocs/internal/record"
	"github.com/openbandi/grantdocs/internal/store"
	"github.com/openbandi/grantdocs/internal/summary"
	"github.com/openbandi/grantdocs/internal/urlutil"
	"github.com/openbandi/grantdocs/internal/vocab"
)

const (
	// minPDFContent is the combined extracted-text size below which the
	// priority attachments alone are considered insufficient.
	minPDFContent = 5000

	maxPDFsPrimary          = 5
	maxPriorityPDFsPerPage  = 3
	maxSecondaryPDFsPerPage = 3
)

// PageFetcher downloads a grant page.
type PageFetcher interface {
	FetchHTML(ctx context.Context, rawURL string) ([]byte, string, error)
}

// FileFetcher downloads an attachment.
type FileFetcher interface {
	FetchPDF(ctx context.Context, rawURL string) ([]byte, error)
}

// PDFConverter turns a downloaded attachment into plain text.
type PDFConverter func(data []byte) (string, error)

// DocumentationStore persists the rendered summary.
type DocumentationStore interface {
	UpdateDocumentation(ctx context.Context, id, documentation string) error
}

type Pipeline struct {
	pages    PageFetcher
	files    FileFetcher
	convert  PDFConverter
	web      *extract.WebExtractor
	pdf      *extract.PDFExtractor
	renderer *summary.Renderer
}

func New(pages PageFetcher, files FileFetcher, convert PDFConverter) *Pipeline {
	v := vocab.Default()
	return &Pipeline{
		pages:    pages,
		files:    files,
		convert:  convert,
		web:      extract.NewWebExtractor(v),
		pdf:      extract.NewPDFExtractor(v),
		renderer: summary.NewRenderer(),
	}
}

// ProcessGrant crawls both grant links and returns the rendered summary.
// A grant with no reachable sources still yields a non-empty summary.
func (p *Pipeline) ProcessGrant(ctx context.Context, grant store.Grant) (string, error) {
	var webData, pdfData []record.SourceRecord

	primary := grant.LinkBando
	if urlutil.IsValid(primary) {
		attachments := p.processPage(ctx, primary, &webData)

		for _, att := range attachments {
			if !att.Priority {
				continue
			}
			p.processAttachment(ctx, att, &pdfData)
		}
		if p.needMorePDFs(pdfData) {
			for _, att := range attachments {
				if att.Priority {
					continue
				}
				p.processAttachment(ctx, att, &pdfData)
				if len(pdfData) >= maxPDFsPrimary {
					break
				}
			}
		}
	}

	secondary := grant.LinkSitoBando
	if urlutil.IsValid(secondary) && secondary != primary {
		attachments := p.processPage(ctx, secondary, &webData)

		priorityProcessed := 0
		for _, att := range attachments {
			if !att.Priority {
				continue
			}
			if p.processAttachment(ctx, att, &pdfData) {
				priorityProcessed++
				if priorityProcessed >= maxPriorityPDFsPerPage {
					break
				}
			}
		}
		if p.needMorePDFs(pdfData) {
			processed := 0
			for _, att := range attachments {
				if att.Priority {
					continue
				}
				if p.processAttachment(ctx, att, &pdfData) {
					processed++
					if processed >= maxSecondaryPDFsPerPage {
						break
					}
				}
			}
		}
	}

	unified := merge.Merge(webData, pdfData)
	observability.IncGrantsProcessed()
	slog.Info("grant processed",
		"grant_id", grant.ID,
		"web_sources", len(webData),
		"pdf_sources", len(pdfData))

	return p.renderer.Render(unified), ctx.Err()
}

// processPage fetches one grant page, collects its record if non-empty,
// and returns the attachments found on it.
func (p *Pipeline) processPage(ctx context.Context, pageURL string, webData *[]record.SourceRecord) []record.Attachment {
	start := time.Now()
	body, contentType, err := p.pages.FetchHTML(ctx, pageURL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "pipeline")
		slog.Warn("page fetch failed", "url", pageURL, "error", err)
		return nil
	}
	observability.IncPagesFetched()
	observability.ObserveFetchDuration(time.Since(start).Seconds())

	rec, attachments := p.web.Extract(bytes.NewReader(body), contentType, pageURL)
	if !rec.IsEmpty() {
		*webData = append(*webData, rec)
	}
	return attachments
}

// processAttachment downloads and extracts one PDF. Failures are logged
// and counted but never abort the grant.
func (p *Pipeline) processAttachment(ctx context.Context, att record.Attachment, pdfData *[]record.SourceRecord) bool {
	if ctx.Err() != nil {
		return false
	}

	data, err := p.files.FetchPDF(ctx, att.URL)
	if err != nil {
		observability.IncError(observability.ClassifyFetchError(err), "pipeline")
		slog.Warn("pdf fetch failed", "url", att.URL, "error", err)
		return false
	}
	observability.IncPDFsDownloaded()

	text, err := p.convert(data)
	if err != nil {
		observability.IncError(observability.ErrorPDF, "pipeline")
		slog.Warn("pdf conversion failed", "url", att.URL, "error", err)
		return false
	}

	rec := p.pdf.Extract(text, att.Context)
	if rec.IsEmpty() {
		return false
	}
	rec.Source = att.URL
	rec.Filename = urlutil.SanitizeFilename(urlutil.FileName(att.URL))
	*pdfData = append(*pdfData, rec)
	return true
}

func (p *Pipeline) needMorePDFs(pdfData []record.SourceRecord) bool {
	if len(pdfData) == 0 {
		return true
	}
	total := 0
	for i := range pdfData {
		total += pdfData[i].ApproxSize()
	}
	return total < minPDFContent
}

// Result reports the outcome of a batch run.
type Result struct {
	Processed int
	Updated   int
	Failed    int
}

// Run processes a batch of grants on a bounded worker pool and stores
// each summary as it completes.
func (p *Pipeline) Run(ctx context.Context, grants []store.Grant, db DocumentationStore, maxWorkers int) Result {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	jobs := make(chan store.Grant)
	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)

	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for grant := range jobs {
				mu.Lock()
				res.Processed++
				mu.Unlock()

				doc, err := p.ProcessGrant(ctx, grant)
				if err != nil {
					observability.IncError(observability.ClassifyProcessError(err), "pipeline")
					slog.Error("grant processing failed", "grant_id", grant.ID, "error", err)
					mu.Lock()
					res.Failed++
					mu.Unlock()
					continue
				}
				if err := db.UpdateDocumentation(ctx, grant.ID, doc); err != nil {
					observability.IncError(observability.ErrorStore, "pipeline")
					slog.Error("grant update failed", "grant_id", grant.ID, "error", err)
					mu.Lock()
					res.Failed++
					mu.Unlock()
					continue
				}
				observability.IncGrantsUpdated()
				mu.Lock()
				res.Updated++
				mu.Unlock()
			}
		}()
	}

	for _, grant := range grants {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return res
		case jobs <- grant:
		}
	}
	close(jobs)
	wg.Wait()
	return res
}
