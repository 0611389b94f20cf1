// Package service holds the application logic behind the HTTP handlers.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"docqa-go/internal/model"
	"docqa-go/internal/rag"
	"docqa-go/internal/repository"
	"docqa-go/pkg/log"
	"docqa-go/pkg/storage"
	"docqa-go/pkg/tasks"
)

// Extractor turns a pdf or docx file into plain text.
type Extractor interface {
	ExtractText(ctx context.Context, r io.Reader, fileName string) (string, error)
}

// Archiver keeps the raw bytes of uploads.
type Archiver interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// TaskProducer enqueues ingestion tasks.
type TaskProducer interface {
	Produce(ctx context.Context, task tasks.IngestTask) error
}

// UploadInput is one uploaded file.
type UploadInput struct {
	Filename string
	MIMEType string
	Data     []byte
}

// UploadResult describes what happened to an upload.
type UploadResult struct {
	Filename      string             `json:"filename"`
	Type          model.DocumentType `json:"type"`
	Size          int64              `json:"size"`
	ChunkCount    int                `json:"chunkCount"`
	DocumentCount int                `json:"documentCount"`
	Queued        bool               `json:"queued"`
}

// UploadDTO is an audit row plus an optional download link.
type UploadDTO struct {
	model.FileUpload
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// DocumentService manages the document lifecycle: upload, listing and clearing.
type DocumentService interface {
	Upload(ctx context.Context, in UploadInput) (*UploadResult, error)
	ListUploads(ctx context.Context, limit int) ([]UploadDTO, error)
	Clear(ctx context.Context)
}

// DocumentServiceOptions carries the optional collaborators. Nil fields
// disable the corresponding feature.
type DocumentServiceOptions struct {
	Extractor Extractor
	Archive   Archiver
	Producer  TaskProducer
	Async     bool
}

type documentService struct {
	engine     *rag.Engine
	uploadRepo repository.UploadRepository
	opts       DocumentServiceOptions
	now        func() time.Time
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(engine *rag.Engine, uploadRepo repository.UploadRepository, opts DocumentServiceOptions) DocumentService {
	if uploadRepo == nil {
		uploadRepo = repository.NopUploadRepository{}
	}
	return &documentService{engine: engine, uploadRepo: uploadRepo, opts: opts, now: time.Now}
}

// Upload resolves the file type, extracts the text and ingests it, either
// inline or through the queue when async ingestion is enabled.
func (s *documentService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	docType, ok := model.ParseDocumentType(in.MIMEType, in.Filename)
	if !ok {
		return nil, &rag.ValidationError{Field: "file", Reason: "unsupported file type (pdf, docx and txt only)"}
	}

	content, err := s.extract(ctx, docType, in)
	if err != nil {
		return nil, err
	}

	meta := model.DocumentMetadata{
		Filename:   in.Filename,
		Type:       docType,
		Size:       int64(len(in.Data)),
		UploadedAt: s.now(),
	}
	log.Infof("[DocumentService] received %s (%s, %d bytes)", meta.Filename, meta.Type, meta.Size)

	objectName := s.archive(ctx, meta, in)

	record := &model.FileUpload{
		FileName:   meta.Filename,
		FileType:   string(meta.Type),
		TotalSize:  meta.Size,
		Status:     model.UploadStatusQueued,
		ObjectName: objectName,
		UploadedAt: meta.UploadedAt,
	}
	if err := s.uploadRepo.Create(record); err != nil {
		log.Errorf("[DocumentService] recording upload %s: %v", meta.Filename, err)
	}

	result := &UploadResult{Filename: meta.Filename, Type: meta.Type, Size: meta.Size}

	if s.opts.Async && s.opts.Producer != nil {
		task := tasks.IngestTask{
			UploadID:   record.ID,
			FileName:   meta.Filename,
			FileType:   string(meta.Type),
			Size:       meta.Size,
			UploadedAt: meta.UploadedAt,
			ObjectName: objectName,
			Content:    content,
		}
		if err := s.opts.Producer.Produce(ctx, task); err != nil {
			s.updateStatus(record.ID, model.UploadStatusFailed, 0)
			return nil, fmt.Errorf("enqueue ingest task: %w", err)
		}
		result.Queued = true
		result.DocumentCount = s.engine.DocumentCount()
		return result, nil
	}

	stored, err := s.engine.Ingest(ctx, content, meta)
	if err != nil {
		s.updateStatus(record.ID, model.UploadStatusFailed, stored)
		return nil, err
	}
	s.updateStatus(record.ID, model.UploadStatusIndexed, stored)

	result.ChunkCount = stored
	result.DocumentCount = s.engine.DocumentCount()
	return result, nil
}

func (s *documentService) extract(ctx context.Context, docType model.DocumentType, in UploadInput) (string, error) {
	if docType == model.TypeTXT {
		return strings.ToValidUTF8(string(in.Data), "\uFFFD"), nil
	}
	if s.opts.Extractor == nil {
		return "", fmt.Errorf("extract %s: %w", in.Filename, ErrExtractorUnavailable)
	}
	text, err := s.opts.Extractor.ExtractText(ctx, bytes.NewReader(in.Data), in.Filename)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", in.Filename, err)
	}
	return text, nil
}

// archive stores the raw file and returns its object name, or "" when
// archiving is disabled or failed.
func (s *documentService) archive(ctx context.Context, meta model.DocumentMetadata, in UploadInput) string {
	if s.opts.Archive == nil {
		return ""
	}
	objectName := storage.ObjectName(meta.Filename, meta.UploadedAt)
	contentType := in.MIMEType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.opts.Archive.Put(ctx, objectName, bytes.NewReader(in.Data), meta.Size, contentType); err != nil {
		log.Warnf("[DocumentService] archiving %s failed, continuing without it: %v", meta.Filename, err)
		return ""
	}
	return objectName
}

func (s *documentService) updateStatus(id uint, status, chunks int) {
	if id == 0 {
		return
	}
	if err := s.uploadRepo.UpdateStatus(id, status, chunks); err != nil {
		log.Errorf("[DocumentService] updating upload %d: %v", id, err)
	}
}

// ListUploads returns recent uploads with presigned links when the archive is enabled.
func (s *documentService) ListUploads(ctx context.Context, limit int) ([]UploadDTO, error) {
	uploads, err := s.uploadRepo.List(limit)
	if err != nil {
		return nil, err
	}
	out := make([]UploadDTO, 0, len(uploads))
	for _, u := range uploads {
		dto := UploadDTO{FileUpload: u}
		if s.opts.Archive != nil && u.ObjectName != "" {
			if url, err := s.opts.Archive.PresignedURL(ctx, u.ObjectName, time.Hour); err == nil {
				dto.DownloadURL = url
			}
		}
		out = append(out, dto)
	}
	return out, nil
}

// Clear empties the index. Upload rows and archived files are kept.
func (s *documentService) Clear(ctx context.Context) {
	s.engine.Clear(ctx)
}
