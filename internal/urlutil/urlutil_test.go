package urlutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("https://www.regione.example.it/bandi/123"))
	assert.True(t, IsValid("http://example.com"))
	assert.False(t, IsValid("not a url"))
	assert.False(t, IsValid("ftp://example.com/file.pdf"))
	assert.False(t, IsValid("/relative/path"))
	assert.False(t, IsValid(""))
}

func TestNormalize(t *testing.T) {
	base, err := url.Parse("https://example.it/bandi/2025/")
	require.NoError(t, err)

	abs, host, err := Normalize(base, "allegati/modulo.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://example.it/bandi/2025/allegati/modulo.pdf", abs)
	assert.Equal(t, "example.it", host)

	abs, _, err = Normalize(base, "https://altro.it/doc.pdf#sezione")
	require.NoError(t, err)
	assert.Equal(t, "https://altro.it/doc.pdf", abs)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "bando.pdf", FileName("https://example.it/docs/bando.pdf?v=2"))
	assert.Equal(t, "modulo_A1.pdf", FileName("/allegati/modulo_A1.pdf"))
	assert.Equal(t, "", FileName("https://example.it/"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Bando_2025.pdf", SanitizeFilename("Bando 2025.pdf"))
	assert.Equal(t, "allegato(1).pdf", SanitizeFilename("allegato(1).pdf"))
	assert.Equal(t, "modulo.pdf", SanitizeFilename("modùlo.pdf"))
	assert.Equal(t, "unnamed_file", SanitizeFilename("///"))
}
