package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// ErrUnsupportedExport is returned for export kinds other than txt and pdf.
var ErrUnsupportedExport = errors.New("unsupported export type")

// Document is a rendered export ready to be served as a download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders text as a plain-text file or an A4 PDF with one
// multi-cell per line. An empty kind means txt.
func Export(text, kind string) (*Document, error) {
	switch strings.ToLower(kind) {
	case "", "txt":
		return &Document{
			Filename:    "ocr_result.txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(text),
		}, nil
	case "pdf":
		body, err := renderPDF(text)
		if err != nil {
			return nil, err
		}
		return &Document{
			Filename:    "ocr_result.pdf",
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, kind)
	}
}

func renderPDF(text string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	// Core fonts only cover cp1252; other runes are replaced.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(text, "\n") {
		pdf.MultiCell(0, 10, tr(strings.TrimRight(line, "\r")), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
