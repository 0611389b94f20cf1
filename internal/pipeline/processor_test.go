package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"docqa-go/internal/model"
	"docqa-go/pkg/tasks"
)

type stubIngester struct {
	meta    model.DocumentMetadata
	content string
	stored  int
	err     error
}

func (s *stubIngester) Ingest(_ context.Context, content string, meta model.DocumentMetadata) (int, error) {
	s.content, s.meta = content, meta
	return s.stored, s.err
}

type statusUpdate struct {
	id, status, chunks int
}

type stubUploads struct {
	updates []statusUpdate
}

func (s *stubUploads) Create(*model.FileUpload) error { return nil }

func (s *stubUploads) UpdateStatus(id uint, status int, chunkCount int) error {
	s.updates = append(s.updates, statusUpdate{int(id), status, chunkCount})
	return nil
}

func (s *stubUploads) List(int) ([]model.FileUpload, error) { return nil, nil }

func TestProcessorProcess(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	task := tasks.IngestTask{UploadID: 3, FileName: "a.txt", FileType: "txt", Size: 5, UploadedAt: at, Content: "hello"}

	ing := &stubIngester{stored: 2}
	uploads := &stubUploads{}
	if err := NewProcessor(ing, uploads).Process(context.Background(), task); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if ing.content != "hello" || ing.meta.Filename != "a.txt" || ing.meta.Type != model.TypeTXT || !ing.meta.UploadedAt.Equal(at) {
		t.Errorf("ingester got %q %+v", ing.content, ing.meta)
	}
	want := statusUpdate{3, model.UploadStatusIndexed, 2}
	if len(uploads.updates) != 1 || uploads.updates[0] != want {
		t.Errorf("status updates = %+v", uploads.updates)
	}
}

func TestProcessorRecordsFailure(t *testing.T) {
	ing := &stubIngester{stored: 1, err: errors.New("embedder down")}
	uploads := &stubUploads{}
	task := tasks.IngestTask{UploadID: 4, FileName: "b.txt", FileType: "txt", Content: "x\n\ny"}

	if err := NewProcessor(ing, uploads).Process(context.Background(), task); err == nil {
		t.Fatal("expected an error")
	}
	want := statusUpdate{4, model.UploadStatusFailed, 1}
	if len(uploads.updates) != 1 || uploads.updates[0] != want {
		t.Errorf("status updates = %+v", uploads.updates)
	}
}

func TestProcessorWithoutUploadRow(t *testing.T) {
	uploads := &stubUploads{}
	task := tasks.IngestTask{FileName: "c.txt", FileType: "txt", Content: "z"}
	if err := NewProcessor(&stubIngester{}, uploads).Process(context.Background(), task); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(uploads.updates) != 0 {
		t.Errorf("unexpected status updates %+v", uploads.updates)
	}
}
