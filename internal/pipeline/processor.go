// Package pipeline splits document text into segments and processes queued
// ingestion tasks.
package pipeline

import (
	"context"
	"fmt"

	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/pkg/log"
	"docqa-go/pkg/tasks"
)

// Ingester stores a document's text in the index.
type Ingester interface {
	Ingest(ctx context.Context, content string, meta model.DocumentMetadata) (int, error)
}

// Processor consumes ingestion tasks from the queue.
type Processor struct {
	ingester   Ingester
	uploadRepo repository.UploadRepository
}

// NewProcessor creates a Processor.
func NewProcessor(ingester Ingester, uploadRepo repository.UploadRepository) *Processor {
	return &Processor{ingester: ingester, uploadRepo: uploadRepo}
}

// Process ingests the task content and records the outcome on the upload row.
func (p *Processor) Process(ctx context.Context, task tasks.IngestTask) error {
	log.Infof("[Processor] ingesting %s (upload %d, %d bytes)", task.FileName, task.UploadID, task.Size)

	meta := model.DocumentMetadata{
		Filename:   task.FileName,
		Type:       model.DocumentType(task.FileType),
		Size:       task.Size,
		UploadedAt: task.UploadedAt,
	}
	stored, err := p.ingester.Ingest(ctx, task.Content, meta)

	status := model.UploadStatusIndexed
	if err != nil {
		status = model.UploadStatusFailed
	}
	if task.UploadID != 0 {
		if uerr := p.uploadRepo.UpdateStatus(task.UploadID, status, stored); uerr != nil {
			log.Errorf("[Processor] updating upload %d: %v", task.UploadID, uerr)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest %s: %w", task.FileName, err)
	}

	log.Infof("[Processor] %s ingested, %d chunks", task.FileName, stored)
	return nil
}
