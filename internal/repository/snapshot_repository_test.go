package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"docqa-go/internal/model"
)

func TestBoltSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	store, err := NewBoltSnapshotStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load empty store: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected an empty non-nil list, got %v", empty)
	}

	uploaded := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	records := []model.IndexedRecord{
		{
			ID:        "a.txt_1709285400000_abc",
			Content:   "Paris is the capital of France.",
			Embedding: []float64{0.25, -0.5, 0.125},
			Metadata:  model.RecordMetadata{Filename: "a.txt", Type: model.TypeTXT, UploadedAt: uploaded},
		},
		{
			ID:        "a.txt_1709285400000_def",
			Content:   "Berlin is the capital of Germany.",
			Embedding: []float64{0, 1, 0},
			Metadata:  model.RecordMetadata{Filename: "a.txt", Type: model.TypeTXT, UploadedAt: uploaded},
		},
	}
	if err := store.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBoltSnapshotStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(got))
	}
	for i := range records {
		want := records[i]
		if got[i].ID != want.ID || got[i].Content != want.Content {
			t.Errorf("record %d = %+v", i, got[i])
		}
		if !got[i].Metadata.UploadedAt.Equal(want.Metadata.UploadedAt) {
			t.Errorf("record %d uploadedAt = %v", i, got[i].Metadata.UploadedAt)
		}
		for j := range want.Embedding {
			if got[i].Embedding[j] != want.Embedding[j] {
				t.Errorf("record %d embedding[%d] = %v", i, j, got[i].Embedding[j])
			}
		}
	}

	if err := reopened.Save(ctx, nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if got, _ := reopened.Load(ctx); len(got) != 0 {
		t.Errorf("expected an empty snapshot after saving nil, got %d records", len(got))
	}
}

func TestSnapshotEncoding(t *testing.T) {
	uploaded := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	data, err := encodeSnapshot([]model.IndexedRecord{{
		ID:        "x",
		Embedding: []float64{1, 2},
		Metadata:  model.RecordMetadata{Filename: "x.txt", Type: model.TypeTXT, UploadedAt: uploaded},
	}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `[{"id":"x","content":"","embedding":[1,2],"metadata":{"filename":"x.txt","type":"txt","uploadedAt":"2024-03-01T09:30:00Z"}}]`
	if string(data) != want {
		t.Errorf("encoded snapshot = %s", data)
	}
	if _, err := decodeSnapshot([]byte("not json")); err == nil {
		t.Error("expected a decode error")
	}
}
