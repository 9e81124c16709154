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

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sentinelai/sentinel/core"
)

type analyzeTextRequest struct {
	Text   string `json:"text" binding:"required"`
	UserId string `json:"user_id"`
}

// handleAnalyzeText runs keyword, topic and summary analysis over ad-hoc
// text. The text is PII-masked before it reaches the model.
func (s *Server) handleAnalyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	detection := s.detector.Detect(req.Text)

	result, err := s.analyzer.AnalyzeText(c.Request.Context(), detection.MaskedText)
	if err != nil {
		s.replyError(c, err)
		return
	}

	userId := req.UserId
	if userId == "" {
		userId = requesterId(c)
	}
	s.auditAnalysis(c.Request.Context(), userId, core.ActionTextAnalysis,
		fmt.Sprintf("%d chars analyzed, pii: %s", len(req.Text), detection.Summary()))

	c.JSON(http.StatusOK, gin.H{
		"analysis":    result,
		"pii_summary": detection.Summary(),
	})
}

// handleAnalyzeDocument analyzes a stored document and persists the
// summary and keywords on its record.
func (s *Server) handleAnalyzeDocument(c *gin.Context) {
	id := c.Param("id")

	result, err := s.analyzer.AnalyzeDocument(c.Request.Context(), id)
	if err != nil {
		s.replyError(c, err)
		return
	}

	s.auditAnalysis(c.Request.Context(), requesterId(c), core.ActionDocumentAnalysis, id)

	c.JSON(http.StatusOK, gin.H{
		"document_id": id,
		"analysis":    result,
	})
}

func (s *Server) handleSimilarDocuments(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	matches, err := s.searcher.SimilarDocuments(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.replyError(c, err)
		return
	}

	type similarResponse struct {
		Document documentResponse `json:"document"`
		Score    float32          `json:"score"`
	}
	responses := make([]similarResponse, len(matches))
	for i, match := range matches {
		responses[i] = similarResponse{
			Document: toDocumentResponse(match.Document),
			Score:    match.Score,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"similar": responses,
		"count":   len(responses),
	})
}

// handleSearchQuality reports raw retrieval similarity metrics for a query.
func (s *Server) handleSearchQuality(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	report, err := s.searcher.Quality(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// queryLimit parses the optional "limit" query parameter. On invalid
// input it writes the error response and returns false.
func queryLimit(c *gin.Context) (int, bool) {
	v := c.Query("limit")
	if v == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}

func (s *Server) auditAnalysis(ctx context.Context, userId, action, details string) {
	if userId == "" {
		userId = core.SystemUser
	}

	_, err := s.system.AuditRepository().AppendEntries(ctx, &core.AuditEntry{
		UserId:  userId,
		Action:  action,
		Details: details,
	})
	if err != nil {
		s.logger.Error("error recording analysis", "action", action, "err", err)
	}
}
