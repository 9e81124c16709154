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
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinelai/sentinel/core"
	"github.com/sentinelai/sentinel/extract"
)

// documentResponse is the wire form of a document record.
type documentResponse struct {
	Id          string    `json:"id"`
	Filename    string    `json:"filename"`
	FileType    string    `json:"file_type"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
	SizeBytes   int64     `json:"size_bytes"`
	CharCount   int       `json:"char_count"`
	ChunkCount  int       `json:"chunk_count"`
	PIIDetected bool      `json:"pii_detected"`
	PIISummary  string    `json:"pii_summary"`
	Summary     string    `json:"summary,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	UserId      string    `json:"user_id"`
}

func toDocumentResponse(doc *core.Document) documentResponse {
	return documentResponse{
		Id:          doc.Id,
		Filename:    doc.Filename,
		FileType:    doc.FileType,
		Status:      doc.Status.String(),
		UploadedAt:  doc.UploadedAt,
		SizeBytes:   doc.SizeBytes,
		CharCount:   doc.CharCount,
		ChunkCount:  doc.ChunkCount,
		PIIDetected: doc.PIIDetected,
		PIISummary:  doc.PIISummary,
		Summary:     doc.Summary,
		Keywords:    doc.Keywords,
		UserId:      doc.UserId,
	}
}

// handleUpload ingests a multipart file upload. The file type is checked
// before the body is read so oversized unsupported files are rejected
// cheaply.
func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "multipart field 'file' is required"})
		return
	}

	fileType := extract.FileType(header.Filename)
	if !extract.IsSupported(fileType) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":   "unsupported_type",
			"message": fmt.Sprintf("file type %q is not supported, expected one of %v", fileType, extract.SupportedTypes()),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		s.replyError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.replyError(c, err)
		return
	}

	userId := c.PostForm("user_id")
	if userId == "" {
		userId = requesterId(c)
	}

	doc, err := s.pipeline.Ingest(c.Request.Context(), header.Filename, data, userId)
	if err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDocumentResponse(doc))
}

func (s *Server) handleListDocuments(c *gin.Context) {
	docs, err := s.system.DocumentRepository().ListDocuments(c.Request.Context())
	if err != nil {
		s.replyError(c, err)
		return
	}

	responses := make([]documentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = toDocumentResponse(doc)
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": responses,
		"count":     len(responses),
	})
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	id := c.Param("id")

	if err := s.pipeline.Remove(c.Request.Context(), id, requesterId(c)); err != nil {
		s.replyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
