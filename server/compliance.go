package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/storage"
)

// auditEntryResponse is the wire form of an audit trail record.
type auditEntryResponse struct {
	Id        core.ID           `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	UserId    string            `json:"user_id"`
	Action    string            `json:"action"`
	Details   string            `json:"details"`
	IPAddress string            `json:"ip_address,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func toAuditEntryResponses(entries []*core.AuditEntry) []auditEntryResponse {
	responses := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = auditEntryResponse{
			Id:        e.Id,
			Timestamp: e.Timestamp,
			UserId:    e.UserId,
			Action:    e.Action,
			Details:   e.Details,
			IPAddress: e.IPAddress,
			Metadata:  e.Metadata,
		}
	}
	return responses
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.compliance.CollectStats(c.Request.Context())
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleAuditTrail returns filtered audit entries. The access itself is
// recorded in the trail, attributed to the X-User-Id header.
func (s *Server) handleAuditTrail(c *gin.Context) {
	filter := storage.AuditFilter{
		UserId: c.Query("user_id"),
		Action: c.Query("action"),
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "offset must be a non-negative integer"})
			return
		}
		filter.Offset = offset
	}

	if v := c.Query("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "since must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = since
	}

	entries, err := s.compliance.AuditTrail(c.Request.Context(), filter, requesterId(c))
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": toAuditEntryResponses(entries),
		"count":   len(entries),
	})
}

func (s *Server) handleExportUserData(c *gin.Context) {
	data, err := s.compliance.ExportUserData(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.replyError(c, err)
		return
	}

	docs := make([]documentResponse, len(data.Documents))
	for i, doc := range data.Documents {
		docs[i] = toDocumentResponse(doc)
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       data.UserId,
		"documents":     docs,
		"audit_entries": toAuditEntryResponses(data.AuditEntries),
	})
}

func (s *Server) handleEraseUserData(c *gin.Context) {
	report, err := s.compliance.EraseUserData(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
