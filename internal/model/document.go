// Package model defines the data shapes shared across the application.
package model

import (
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// DocumentType is the resolved format of an uploaded document.
type DocumentType string

const (
	TypePDF  DocumentType = "pdf"
	TypeDOCX DocumentType = "docx"
	TypeTXT  DocumentType = "txt"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeTXT  = "text/plain"
)

// ParseDocumentType resolves a document type from its MIME type. When the
// MIME type is missing or generic the filename extension decides.
// ok is false for unsupported types.
func ParseDocumentType(mimeType, filename string) (DocumentType, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	switch mediaType {
	case MimePDF:
		return TypePDF, true
	case MimeDOCX:
		return TypeDOCX, true
	case MimeTXT:
		return TypeTXT, true
	case "", "application/octet-stream":
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".pdf":
			return TypePDF, true
		case ".docx":
			return TypeDOCX, true
		case ".txt":
			return TypeTXT, true
		}
	}
	return "", false
}

// DocumentMetadata describes an ingested document. It is carried into every
// chunk record so results can be attributed to their source file.
type DocumentMetadata struct {
	Filename   string       `json:"filename"`
	Type       DocumentType `json:"type"`
	Size       int64        `json:"size"`
	UploadedAt time.Time    `json:"uploadedAt"`
}

// RecordMetadata returns the per-chunk projection of the document metadata.
func (m DocumentMetadata) RecordMetadata() RecordMetadata {
	return RecordMetadata{Filename: m.Filename, Type: m.Type, UploadedAt: m.UploadedAt}
}

// RecordMetadata is stored with every indexed chunk.
// UploadedAt is encoded as an RFC 3339 (ISO-8601) string.
type RecordMetadata struct {
	Filename   string       `json:"filename"`
	Type       DocumentType `json:"type"`
	UploadedAt time.Time    `json:"uploadedAt"`
}

// IndexedRecord is one embedded chunk owned by the vector index.
type IndexedRecord struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Embedding []float64      `json:"embedding"`
	Metadata  RecordMetadata `json:"metadata"`
}

// SearchResult is a scored projection of an IndexedRecord.
type SearchResult struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Metadata   RecordMetadata `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// RAGResponse is the payload returned for a query.
type RAGResponse struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
	Query   string         `json:"query"`
}
