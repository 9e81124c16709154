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


package extract

import "errors"

var (
	// ErrUnsupportedType indicates a file type with no registered extractor.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrUnreadable indicates the file could not be parsed at all.
	ErrUnreadable = errors.New("file could not be parsed")

	// ErrEmptyDocument indicates extraction yielded no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrScannedPDF indicates a PDF whose pages carry almost no text layer,
	// typically a scan. Such files need OCR, which is not available here.
	ErrScannedPDF = errors.New("pdf appears to be scanned")
)
