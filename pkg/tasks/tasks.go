// Package tasks defines the messages sent through the ingestion queue.
package tasks

import "time"

// IngestTask asks a consumer to ingest already extracted document text.
type IngestTask struct {
	UploadID   uint      `json:"upload_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	ObjectName string    `json:"object_name,omitempty"`
	Content    string    `json:"content"`
}
