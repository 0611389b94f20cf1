package service

import (
	"context"
	"sync"

	"docqa-go/internal/model"
	"docqa-go/internal/repository"
	"docqa-go/pkg/log"
)

// SnapshotService mirrors the index into a SnapshotStore.
type SnapshotService struct {
	store  repository.SnapshotStore
	source func() []model.IndexedRecord
	mu     sync.Mutex
}

// NewSnapshotService creates a SnapshotService that saves whatever source returns.
func NewSnapshotService(store repository.SnapshotStore, source func() []model.IndexedRecord) *SnapshotService {
	return &SnapshotService{store: store, source: source}
}

// Persist saves the current records. Saves are serialized so the last one
// always reflects the latest index state. Failures are logged.
func (s *SnapshotService) Persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.source()
	if err := s.store.Save(ctx, records); err != nil {
		log.Errorf("[Snapshot] saving %d records: %v", len(records), err)
		return
	}
	log.Debugf("[Snapshot] saved %d records", len(records))
}

// Restore loads the stored records into restore, typically Engine.Restore.
func (s *SnapshotService) Restore(ctx context.Context, restore func([]model.IndexedRecord) error) (int, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	if err := restore(records); err != nil {
		return 0, err
	}
	log.Infof("[Snapshot] restored %d records", len(records))
	return len(records), nil
}
