package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"tabs and newlines", "una\t domanda\n\n di  contributo", "una domanda di contributo"},
		{"leading and trailing", "  bando  ", "bando"},
		{"already normal", "bando aperto", "bando aperto"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeWhitespace(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "  ")
			assert.Equal(t, strings.TrimSpace(got), got)
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"typographic quotes", "“bando” ‘aperto’", `"bando" 'aperto'`},
		{"dashes and nbsp", "2024–2026 misura", "2024-2026 misura"},
		{"double bullets", "• - scadenza 30 giugno", "scadenza 30 giugno"},
		{"sentence spacing", "domanda.Entro il termine", "domanda. Entro il termine"},
		{"excess punctuation", "requisiti obbligatori!!", "requisiti obbligatori!"},
		{"italian elision", "l impresa presenta l istanza", "l'impresa presenta l'istanza"},
		{"space before punctuation", "spese ammissibili : tutte", "spese ammissibili: tutte"},
		{"spaced punctuation run", "a . .", "a."},
		{"spaced mixed run", "fine . !", "fine!"},
		{"spaced comma semicolon", "testo , ;", "testo;"},
		{"leading numbering", "1. Presentazione della domanda", "Presentazione della domanda"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"• - 1. Contributo a fondo perduto  per  l impresa!!",
		"Scadenza.Entro il 30/06/2025 ,  ore 12:00",
		"“Modulistica” allegata — vedi sito",
		"2. 3. elenco documenti",
		"a . .",
		"fine . !",
		"testo , ;",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean not idempotent for %q", in)
	}
}

func TestTruncate(t *testing.T) {
	t.Run("under limit unchanged", func(t *testing.T) {
		assert.Equal(t, "breve testo", Truncate("breve testo", 100))
	})

	t.Run("cuts at last period", func(t *testing.T) {
		text := "Prima frase. Seconda frase molto lunga che supera il limite imposto."
		got := Truncate(text, 30)
		assert.Equal(t, "Prima frase.", got)
		assert.True(t, strings.HasSuffix(got, "."))
	})

	t.Run("no period adds ellipsis", func(t *testing.T) {
		text := "testo senza punteggiatura che continua oltre il limite"
		got := Truncate(text, 20)
		assert.Equal(t, "testo senza punteggi...", got)
		assert.LessOrEqual(t, len([]rune(got)), 23)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", Truncate("", 10))
	})
}
