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

package search

import (
	"context"
	"strings"
)

// Similarity bands for retrieval quality reporting.
const (
	highQualityThreshold   float32 = 0.7
	mediumQualityThreshold float32 = 0.4
)

// QualityReport summarizes how well the stored corpus answers a query.
type QualityReport struct {
	Query         string  `json:"query"`
	ResultCount   int     `json:"result_count"`
	AvgScore      float32 `json:"avg_score"`
	MaxScore      float32 `json:"max_score"`
	MinScore      float32 `json:"min_score"`
	WeightedScore float32 `json:"weighted_score"`
	HighQuality   int     `json:"high_quality"`
	MediumQuality int     `json:"medium_quality"`
	LowQuality    int     `json:"low_quality"`
	Assessment    string  `json:"assessment"`
}

// Quality runs a retrieval probe for the query and reports raw similarity
// metrics, without the verbatim boost applied to normal search results.
// The weighted score discounts each result by its rank, so a corpus whose
// best hits sit at the top scores higher than one with the same scores
// scattered.
func (s *Searcher) Quality(ctx context.Context, query string, limit int) (*QualityReport, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	// No similarity floor: low scores are exactly what this reports on
	matches, err := s.chunks.FindSimilar(ctx, embedding, -1, limit)
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		Query:       query,
		ResultCount: len(matches),
		Assessment:  "no_results",
	}
	if len(matches) == 0 {
		return report, nil
	}

	var sum, weightedSum, weightTotal float32
	report.MinScore = matches[0].Score
	for i, match := range matches {
		score := match.Score
		sum += score

		weight := 1 / float32(i+1)
		weightedSum += score * weight
		weightTotal += weight

		if score > report.MaxScore {
			report.MaxScore = score
		}
		if score < report.MinScore {
			report.MinScore = score
		}

		switch {
		case score >= highQualityThreshold:
			report.HighQuality++
		case score >= mediumQualityThreshold:
			report.MediumQuality++
		default:
			report.LowQuality++
		}
	}

	report.AvgScore = sum / float32(len(matches))
	report.WeightedScore = weightedSum / weightTotal

	switch {
	case report.MaxScore >= highQualityThreshold:
		report.Assessment = "high"
	case report.MaxScore >= mediumQualityThreshold:
		report.Assessment = "medium"
	default:
		report.Assessment = "low"
	}

	return report, nil
}
