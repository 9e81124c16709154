package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// minCharsPerPage is the average text-layer density below which a PDF is
// treated as a scan.
const minCharsPerPage = 50

// extractPDF pulls the text layer out of a PDF.
func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	pages := reader.NumPage()

	var text string
	if plain, err := reader.GetPlainText(); err == nil {
		if out, err := io.ReadAll(plain); err == nil {
			text = string(out)
		}
	}

	if isScanned(text, pages) {
		return "", fmt.Errorf("%w: %d chars over %d pages", ErrScannedPDF, len(text), pages)
	}

	return text, nil
}

// isScanned reports whether the extracted text layer is too sparse to be a
// born-digital document.
func isScanned(text string, pages int) bool {
	if pages <= 0 {
		return len(text) == 0
	}
	return len(text)/pages < minCharsPerPage
}
