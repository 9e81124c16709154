package extract

import (
	"bytes"
	"strings"
)

// utf8BOM is stripped from the front of plain text files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractText handles plain text and markdown files.
func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := string(data)
	// Normalize Windows line endings
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text, nil
}
