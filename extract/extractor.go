// Copyright 2025 SentinelAI Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package extract converts uploaded document bytes into plain text.
// Supported formats: PDF, DOCX (and legacy .doc saved as DOCX), plain
// text and markdown. Extraction is keyed by file extension.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// extractorFunc converts raw file bytes to plain text.
type extractorFunc func(data []byte) (string, error)

var extractors = map[string]extractorFunc{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".doc":  extractDOCX,
	".txt":  extractText,
	".md":   extractText,
}

// SupportedTypes returns the file extensions extraction understands.
func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".doc", ".txt", ".md"}
}

// IsSupported reports whether the given extension has an extractor.
func IsSupported(fileType string) bool {
	_, ok := extractors[strings.ToLower(fileType)]
	return ok
}

// FileType derives the lowercased extension from a filename. A bare-dot
// name like ".txt" is its own extension, which filepath.Ext already
// handles.
func FileType(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Extract converts document bytes into plain text based on file type.
// Returns ErrUnsupportedType for unknown extensions and ErrEmptyDocument
// when the file parses but yields no text.
func Extract(data []byte, fileType string) (string, error) {
	fn, ok := extractors[strings.ToLower(fileType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}

	text, err := fn(data)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
