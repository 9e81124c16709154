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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/rag"
)

// anonymousUser is recorded for chat requests without a user identity.
const anonymousUser = "anonymous"

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	UserId  string `json:"user_id"`
}

func (r *chatRequest) userId(c *gin.Context) string {
	if r.UserId != "" {
		return r.UserId
	}
	if id := requesterId(c); id != "" {
		return id
	}
	return anonymousUser
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	response, err := s.responder.Respond(c.Request.Context(), req.Message)
	if err != nil {
		s.replyError(c, err)
		return
	}

	s.auditChat(c.Request.Context(), req.userId(c), req.Message, response)

	c.JSON(http.StatusOK, response)
}

// handleChatStream answers over SSE: one "chunk" event per token batch,
// then a final "done" event carrying the sources and retrieval metadata.
func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	response, err := s.responder.RespondStream(c.Request.Context(), req.Message, func(chunk string) error {
		return writeSSE(c, "chunk", gin.H{"chunk": chunk})
	})
	if err != nil {
		// Headers are already out; report the failure in-band
		writeSSE(c, "error", gin.H{"error": err.Error()})
		return
	}

	writeSSE(c, "done", gin.H{
		"sources":       response.Sources,
		"model":         response.Model,
		"rag_used":      response.RAGUsed,
		"context_count": response.ContextCount,
	})

	s.auditChat(c.Request.Context(), req.userId(c), req.Message, response)
}

// writeSSE writes one server-sent event and flushes it to the client.
func writeSSE(c *gin.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

// auditChat records a chat query. The question goes through the PII
// detector first so personal data never lands in the trail verbatim.
func (s *Server) auditChat(ctx context.Context, userId, message string, response *rag.Response) {
	masked := s.detector.Detect(message).MaskedText

	_, err := s.system.AuditRepository().AppendEntries(ctx, &core.AuditEntry{
		UserId:  userId,
		Action:  core.ActionChatQuery,
		Details: masked,
		Metadata: map[string]string{
			"rag_used": fmt.Sprintf("%t", response.RAGUsed),
			"sources":  fmt.Sprintf("%d", len(response.Sources)),
		},
	})
	if err != nil {
		s.logger.Error("error recording chat query", "err", err)
	}
}
