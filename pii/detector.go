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


// Package pii detects and masks personally identifiable information in
// text using regex patterns tuned for German-format personal data.
// Masking replaces each detected span with a type token such as [EMAIL],
// so downstream embedding and storage never see the raw values.
package pii

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Match represents a detected PII span.
type Match struct {
	Type   Type
	Value  string
	Start  int
	End    int
	Masked string
}

// Result holds the outcome of PII detection on one text.
type Result struct {
	OriginalText string
	MaskedText   string
	Detected     bool
	Matches      []Match
}

// Summary returns a human-readable count of detected PII per type,
// e.g. "2x email, 1x iban".
func (r *Result) Summary() string {
	if len(r.Matches) == 0 {
		return "No PII detected"
	}

	counts := make(map[Type]int)
	var order []Type
	for _, m := range r.Matches {
		if counts[m.Type] == 0 {
			order = append(order, m.Type)
		}
		counts[m.Type]++
	}

	parts := make([]string, 0, len(order))
	for _, typ := range order {
		parts = append(parts, fmt.Sprintf("%dx %s", counts[typ], typ))
	}
	return strings.Join(parts, ", ")
}

// Stats aggregates detection results across many texts.
type Stats struct {
	TotalMatches     int
	TextsWithPII     int
	TypeDistribution map[Type]int
}

// Detector finds and masks PII spans in text.
// A disabled detector passes text through unchanged.
type Detector struct {
	enabled bool
	logger  *slog.Logger
}

// NewDetector creates a detector. Pass enabled=false to turn masking off
// globally, e.g. for test corpora that contain no real personal data.
func NewDetector(enabled bool) *Detector {
	return &Detector{
		enabled: enabled,
		logger:  slog.Default().With("component", "pii-detector"),
	}
}

// Detect finds PII in text and returns the masked form.
func (d *Detector) Detect(text string) *Result {
	if !d.enabled {
		return &Result{
			OriginalText: text,
			MaskedText:   text,
			Detected:     false,
		}
	}

	var matches []Match
	for _, p := range patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			matches = append(matches, Match{
				Type:   p.typ,
				Value:  text[loc[0]:loc[1]],
				Start:  loc[0],
				End:    loc[1],
				Masked: p.masked,
			})
		}
	}

	masked := d.mask(text, matches)

	if len(matches) > 0 {
		d.logger.Debug("masked PII", "matches", len(matches))
	}

	return &Result{
		OriginalText: text,
		MaskedText:   masked,
		Detected:     len(matches) > 0,
		Matches:      matches,
	}
}

// DetectAll runs detection over multiple text chunks.
func (d *Detector) DetectAll(texts []string) []*Result {
	results := make([]*Result, len(texts))
	for i, text := range texts {
		results[i] = d.Detect(text)
	}
	return results
}

// Aggregate computes statistics over a set of detection results.
func (d *Detector) Aggregate(results []*Result) Stats {
	stats := Stats{TypeDistribution: make(map[Type]int)}
	for _, r := range results {
		if r.Detected {
			stats.TextsWithPII++
		}
		for _, m := range r.Matches {
			stats.TotalMatches++
			stats.TypeDistribution[m.Type]++
		}
	}
	return stats
}

// mask replaces matched spans with their tokens. Different patterns
// regularly claim overlapping digit runs (a credit card number inside an
// IBAN, a postal code inside a phone number), so spans are first selected
// preferring the earliest, longest match, then replaced from the end of
// the text so earlier indices stay valid.
func (d *Detector) mask(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}

	sorted := slices.Clone(matches)
	slices.SortFunc(sorted, func(a, b Match) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return b.End - a.End
	})

	var selected []Match
	lastEnd := -1
	for _, m := range sorted {
		if m.Start < lastEnd {
			continue
		}
		selected = append(selected, m)
		lastEnd = m.End
	}

	masked := text
	for i := len(selected) - 1; i >= 0; i-- {
		m := selected[i]
		masked = masked[:m.Start] + m.Masked + masked[m.End:]
	}

	return masked
}
