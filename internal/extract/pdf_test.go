package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbandi/grantdocs/internal/vocab"
)

const samplePDFText = `BANDO PER LA RICERCA

Oggetto e finalita
Il presente bando sostiene progetti innovativi delle PMI.

Documentazione richiesta:
Alla domanda devono essere allegati i documenti indicati.

• Visura camerale aggiornata
• Bilanci degli ultimi esercizi
• Relazione tecnica del progetto

1. Compilare il modulo di domanda
2. Firmare digitalmente la domanda

Misura   Contributo    Percentuale
Linea A   100.000 euro   50 per cento
Linea B   200.000 euro   40 per cento
Linea C   300.000 euro   30 per cento

La scadenza per la presentazione è fissata al 30 giugno 2025.
`

func TestPDFExtract(t *testing.T) {
	e := NewPDFExtractor(vocab.Default())
	rec := e.Extract(samplePDFText, "Bando integrale")

	t.Run("context and excerpt", func(t *testing.T) {
		assert.Equal(t, "Bando integrale", rec.Context)
		assert.Contains(t, rec.MainContent, "sostiene progetti innovativi")
	})

	t.Run("heading sections", func(t *testing.T) {
		sections := make(map[string]string)
		for _, s := range rec.Sections {
			sections[s.Title] = s.Body
		}
		assert.Equal(t, "Il presente bando sostiene progetti innovativi delle PMI.", sections["Oggetto e finalita"])
		assert.Equal(t, "Alla domanda devono essere allegati i documenti indicati.", sections["Documentazione richiesta"])
	})

	t.Run("list runs", func(t *testing.T) {
		require.Len(t, rec.PDFLists, 2)
		assert.Equal(t, []string{
			"Visura camerale aggiornata",
			"Bilanci degli ultimi esercizi",
			"Relazione tecnica del progetto",
		}, rec.PDFLists[0])
		assert.Equal(t, []string{
			"Compilare il modulo di domanda",
			"Firmare digitalmente la domanda",
		}, rec.PDFLists[1])
	})

	t.Run("column aligned table", func(t *testing.T) {
		require.Len(t, rec.Tables, 1)
		rows := rec.Tables[0].Rows
		require.Len(t, rows, 4)
		assert.Equal(t, []string{"Misura", "Contributo", "Percentuale"}, rows[0].Cells)
		assert.Equal(t, []string{"Linea A", "100.000 euro", "50 per cento"}, rows[1].Cells)
		assert.False(t, rows[0].IsKeyed())
	})

	t.Run("term snippets", func(t *testing.T) {
		terms := make(map[string]bool)
		for _, b := range rec.Snippets {
			terms[b.Term] = len(b.Snippets) > 0
		}
		assert.True(t, terms["Scadenza"])
		assert.True(t, terms["Domanda"])
		assert.True(t, terms["Visura"])
	})
}

func TestPDFExtractEmpty(t *testing.T) {
	e := NewPDFExtractor(vocab.Default())

	rec := e.Extract("", "Allegato")
	assert.True(t, rec.IsEmpty())

	rec = e.Extract("   \n  ", "Allegato")
	assert.True(t, rec.IsEmpty())
}
