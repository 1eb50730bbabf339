// Package pdftext turns downloaded PDF attachments into plain text.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract returns the text of a PDF, one line per visual row, pages
// separated by a blank line. Pages that cannot be decoded (scanned
// images, broken encodings) are skipped rather than failing the whole
// document.
func Extract(data []byte) (text string, err error) {
	// The parser panics on some malformed files produced by regional
	// portals; treat those as extraction errors.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			trimmed := strings.TrimSpace(line.String())
			if trimmed == "" {
				continue
			}
			sb.WriteString(trimmed)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	return strings.TrimSpace(sb.String()), nil
}
