// Package repository persists uploads and index snapshots.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.etcd.io/bbolt"

	"docqa-go/internal/model"
)

// SnapshotStore saves and loads the full list of index records. A store with
// nothing saved loads an empty list.
type SnapshotStore interface {
	Save(ctx context.Context, records []model.IndexedRecord) error
	Load(ctx context.Context) ([]model.IndexedRecord, error)
}

// RedisSnapshotStore keeps the snapshot as one JSON value under a key.
type RedisSnapshotStore struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotStore creates a RedisSnapshotStore.
func NewRedisSnapshotStore(client *redis.Client, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, records []model.IndexedRecord) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context) ([]model.IndexedRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.IndexedRecord{}, nil
		}
		return nil, err
	}
	return decodeSnapshot(data)
}

var (
	bucketSnapshot = []byte("snapshot")
	keyRecords     = []byte("records")
)

// BoltSnapshotStore keeps the snapshot in a local bbolt file.
type BoltSnapshotStore struct {
	db *bbolt.DB
}

// NewBoltSnapshotStore opens (or creates) the bbolt file at path.
func NewBoltSnapshotStore(path string) (*BoltSnapshotStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshot)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltSnapshotStore{db: db}, nil
}

func (s *BoltSnapshotStore) Save(_ context.Context, records []model.IndexedRecord) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshot).Put(keyRecords, data)
	})
}

func (s *BoltSnapshotStore) Load(_ context.Context) ([]model.IndexedRecord, error) {
	var records []model.IndexedRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSnapshot).Get(keyRecords)
		if data == nil {
			records = []model.IndexedRecord{}
			return nil
		}
		var err error
		records, err = decodeSnapshot(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close releases the bbolt file lock.
func (s *BoltSnapshotStore) Close() error {
	return s.db.Close()
}

func encodeSnapshot(records []model.IndexedRecord) ([]byte, error) {
	if records == nil {
		records = []model.IndexedRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) ([]model.IndexedRecord, error) {
	var records []model.IndexedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if records == nil {
		records = []model.IndexedRecord{}
	}
	return records, nil
}
