// Package vectorindex is an in-memory store of embedded chunks searched by
// linear-scan cosine similarity.
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docqa-go/internal/model"
)

// DefaultTopK is used when Search is called with a non-positive topK.
const DefaultTopK = 5

// ErrDimensionMismatch is returned by Add for an empty vector or one whose
// length differs from the index dimension.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Index holds records in insertion order. It is safe for concurrent use.
type Index struct {
	mu        sync.RWMutex
	dimension int
	records   []model.IndexedRecord
	now       func() time.Time
}

// New creates an empty index for vectors of the given dimension. A dimension
// of 0 adopts the length of the first vector added.
func New(dimension int) *Index {
	return &Index{dimension: dimension, now: time.Now}
}

// Dimension returns the vector length accepted by Add, or 0 if not yet fixed.
func (idx *Index) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimension
}

// Add appends a record with a fresh ID. Identical content is stored again.
func (idx *Index) Add(content string, embedding []float64, meta model.RecordMetadata) (model.IndexedRecord, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(embedding) == 0 || (idx.dimension != 0 && len(embedding) != idx.dimension) {
		return model.IndexedRecord{}, fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(embedding), idx.dimension)
	}
	if idx.dimension == 0 {
		idx.dimension = len(embedding)
	}

	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	rec := model.IndexedRecord{
		ID:        idx.newID(meta.Filename),
		Content:   content,
		Embedding: vec,
		Metadata:  meta,
	}
	idx.records = append(idx.records, rec)
	return rec, nil
}

// newID builds <filename>_<unix millis>_<suffix>.
func (idx *Index) newID(filename string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", filename, idx.now().UnixMilli(), suffix)
}

// Search returns up to topK records ordered by descending cosine similarity
// to query. Ties keep insertion order.
func (idx *Index) Search(query []float64, topK int) []model.SearchResult {
	if topK <= 0 {
		topK = DefaultTopK
	}

	idx.mu.RLock()
	results := make([]model.SearchResult, 0, len(idx.records))
	for _, rec := range idx.records {
		results = append(results, model.SearchResult{
			ID:         rec.ID,
			Content:    rec.Content,
			Metadata:   rec.Metadata,
			Similarity: CosineSimilarity(query, rec.Embedding),
		})
	}
	idx.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Clear removes every record. The dimension stays fixed.
func (idx *Index) Clear() {
	idx.mu.Lock()
	idx.records = nil
	idx.mu.Unlock()
}

// Count returns the number of stored records.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// DocumentCount returns the number of distinct uploads, keyed by filename and upload time.
func (idx *Index) DocumentCount() int {
	type docKey struct {
		filename   string
		uploadedAt int64
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	seen := make(map[docKey]struct{})
	for _, rec := range idx.records {
		seen[docKey{rec.Metadata.Filename, rec.Metadata.UploadedAt.UnixNano()}] = struct{}{}
	}
	return len(seen)
}

// Records returns a copy of all records in insertion order.
func (idx *Index) Records() []model.IndexedRecord {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]model.IndexedRecord, len(idx.records))
	copy(out, idx.records)
	return out
}

// Restore replaces the index contents with records. Every record must match
// the index dimension; on error the index is left unchanged.
func (idx *Index) Restore(records []model.IndexedRecord) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	dim := idx.dimension
	for i, rec := range records {
		if dim == 0 {
			dim = len(rec.Embedding)
		}
		if len(rec.Embedding) == 0 || len(rec.Embedding) != dim {
			return fmt.Errorf("%w: record %d (%s) has %d values, index has %d",
				ErrDimensionMismatch, i, rec.ID, len(rec.Embedding), dim)
		}
	}
	idx.dimension = dim
	idx.records = append([]model.IndexedRecord(nil), records...)
	return nil
}
