package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbandi/grantdocs/internal/store"
	"github.com/openbandi/grantdocs/internal/summary"
)

const grantPage = `<html><head><title>Bando Ricerca e Sviluppo</title></head><body>
<main class="content">
<p>Il bando finanzia progetti di ricerca industriale. La documentazione
richiesta comprende la visura camerale e i bilanci degli ultimi esercizi.</p>
</main>
<ul>
<li><a href="/docs/bando.pdf">Bando integrale</a></li>
<li><a href="/docs/nota.pdf">Nota informativa</a></li>
</ul>
</body></html>`

const smallPDFText = `Documentazione richiesta
• Visura camerale aggiornata
• Bilanci degli ultimi due esercizi
• Modulo di domanda firmato digitalmente`

type fakePages struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched []string
}

func (f *fakePages) FetchHTML(_ context.Context, rawURL string) ([]byte, string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, rawURL)
	f.mu.Unlock()
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return []byte(body), "text/html; charset=utf-8", nil
}

func (f *fakePages) count(rawURL string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.fetched {
		if u == rawURL {
			n++
		}
	}
	return n
}

type fakeFiles struct {
	mu      sync.Mutex
	files   map[string]string
	fetched []string
}

func (f *fakeFiles) FetchPDF(_ context.Context, rawURL string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, rawURL)
	f.mu.Unlock()
	text, ok := f.files[rawURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(text), nil
}

func (f *fakeFiles) has(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.fetched {
		if u == rawURL {
			return true
		}
	}
	return false
}

func passthroughConverter(data []byte) (string, error) {
	return string(data), nil
}

type fakeStore struct {
	mu   sync.Mutex
	docs map[string]string
}

func (f *fakeStore) UpdateDocumentation(_ context.Context, id, doc string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = map[string]string{}
	}
	f.docs[id] = doc
	return nil
}

func newTestPipeline(pages *fakePages, files *fakeFiles) *Pipeline {
	return New(pages, files, passthroughConverter)
}

func TestProcessGrant(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://example.it/bando": grantPage,
	}}
	files := &fakeFiles{files: map[string]string{
		"https://example.it/docs/bando.pdf": smallPDFText,
		"https://example.it/docs/nota.pdf":  smallPDFText,
	}}
	p := newTestPipeline(pages, files)

	doc, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:        "g1",
		LinkBando: "https://example.it/bando",
	})
	require.NoError(t, err)

	assert.Contains(t, doc, "# Bando Ricerca e Sviluppo")
	assert.Contains(t, doc, "Fonti PDF")
	assert.Contains(t, doc, "bando.pdf")

	// The priority attachment alone is below the content threshold, so
	// the non-priority one is downloaded as well.
	assert.True(t, files.has("https://example.it/docs/bando.pdf"))
	assert.True(t, files.has("https://example.it/docs/nota.pdf"))
}

func TestProcessGrantSanitizesFilenames(t *testing.T) {
	page := `<html><head><title>Bando Ricerca e Sviluppo</title></head><body>
<main class="content">
<p>La documentazione richiesta comprende la visura camerale.</p>
</main>
<ul><li><a href="/docs/bando 2025.pdf">Bando integrale</a></li></ul>
</body></html>`
	pages := &fakePages{pages: map[string]string{
		"https://example.it/bando": page,
	}}
	files := &fakeFiles{files: map[string]string{
		"https://example.it/docs/bando%202025.pdf": smallPDFText,
	}}
	p := newTestPipeline(pages, files)

	doc, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:        "g1",
		LinkBando: "https://example.it/bando",
	})
	require.NoError(t, err)
	require.True(t, files.has("https://example.it/docs/bando%202025.pdf"))

	assert.Contains(t, doc, "bando_2025.pdf")
	assert.NotContains(t, doc, "bando 2025.pdf")
}

func TestProcessGrantSkipsNonPriorityWhenEnoughContent(t *testing.T) {
	bigText := strings.Repeat("La documentazione del bando comprende la visura camerale e i bilanci aziendali degli ultimi esercizi chiusi. ", 80)
	pages := &fakePages{pages: map[string]string{
		"https://example.it/bando": grantPage,
	}}
	files := &fakeFiles{files: map[string]string{
		"https://example.it/docs/bando.pdf": bigText,
		"https://example.it/docs/nota.pdf":  smallPDFText,
	}}
	p := newTestPipeline(pages, files)

	_, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:        "g1",
		LinkBando: "https://example.it/bando",
	})
	require.NoError(t, err)

	assert.True(t, files.has("https://example.it/docs/bando.pdf"))
	assert.False(t, files.has("https://example.it/docs/nota.pdf"))
}

func TestProcessGrantSecondarySameAsPrimary(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://example.it/bando": grantPage,
	}}
	files := &fakeFiles{files: map[string]string{}}
	p := newTestPipeline(pages, files)

	_, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:            "g1",
		LinkBando:     "https://example.it/bando",
		LinkSitoBando: "https://example.it/bando",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pages.count("https://example.it/bando"))
}

func TestProcessGrantInvalidLinks(t *testing.T) {
	pages := &fakePages{pages: map[string]string{}}
	files := &fakeFiles{files: map[string]string{}}
	p := newTestPipeline(pages, files)

	doc, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:        "g1",
		LinkBando: "not a url",
	})
	require.NoError(t, err)
	assert.Equal(t, summary.EmptySummary, doc)
	assert.Empty(t, pages.fetched)
}

func TestProcessGrantFetchFailure(t *testing.T) {
	pages := &fakePages{pages: map[string]string{}}
	files := &fakeFiles{files: map[string]string{}}
	p := newTestPipeline(pages, files)

	doc, err := p.ProcessGrant(context.Background(), store.Grant{
		ID:        "g1",
		LinkBando: "https://example.it/missing",
	})
	require.NoError(t, err)
	assert.Equal(t, summary.EmptySummary, doc)
}

func TestRun(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://example.it/a": grantPage,
		"https://example.it/b": grantPage,
		"https://example.it/c": grantPage,
	}}
	files := &fakeFiles{files: map[string]string{}}
	p := newTestPipeline(pages, files)
	db := &fakeStore{}

	grants := []store.Grant{
		{ID: "a", LinkBando: "https://example.it/a"},
		{ID: "b", LinkBando: "https://example.it/b"},
		{ID: "c", LinkBando: "https://example.it/c"},
	}

	res := p.Run(context.Background(), grants, db, 2)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 3, res.Updated)
	assert.Equal(t, 0, res.Failed)

	require.Len(t, db.docs, 3)
	for id, doc := range db.docs {
		assert.NotEmpty(t, doc, "grant %s", id)
	}
}
