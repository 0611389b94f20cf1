// Package rag ties segmentation, embedding and the vector index together
// into document ingestion and query answering.
package rag

import (
	"context"
	"strings"

	"docqa-go/internal/config"
	"docqa-go/internal/model"
	"docqa-go/internal/pipeline"
	"docqa-go/internal/vectorindex"
	"docqa-go/pkg/embedding"
	"docqa-go/pkg/log"
)

// Engine is the retrieval pipeline. Its methods are safe for concurrent use;
// a single Ingest is not atomic across chunks.
type Engine struct {
	embedder  embedding.Embedder
	index     *vectorindex.Index
	composer  Composer
	segmenter pipeline.Segmenter
	topK      int
	noResult  string
	onChange  func(ctx context.Context)
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK sets how many results a query retrieves before filtering.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithNoResultAnswer replaces the answer given when nothing relevant is found.
func WithNoResultAnswer(text string) Option {
	return func(e *Engine) {
		if text != "" {
			e.noResult = text
		}
	}
}

// WithOnChange registers fn to run after the index is modified.
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// NewEngine creates an Engine. A nil composer or segmenter selects the
// default rules and paragraph segmentation.
func NewEngine(embedder embedding.Embedder, index *vectorindex.Index, composer Composer, segmenter pipeline.Segmenter, opts ...Option) *Engine {
	if composer == nil {
		composer = NewRuleComposer(config.AnswerConfig{})
	}
	if segmenter == nil {
		segmenter = pipeline.ParagraphSegmenter
	}
	e := &Engine{
		embedder:  embedder,
		index:     index,
		composer:  composer,
		segmenter: segmenter,
		topK:      vectorindex.DefaultTopK,
		noResult:  NoRelevantDocumentsAnswer,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ingest segments content and stores one record per segment. It returns the
// number of chunks stored. On failure the remaining segments are skipped and
// an *IngestionError reports how many were stored.
func (e *Engine) Ingest(ctx context.Context, content string, meta model.DocumentMetadata) (int, error) {
	segments, err := e.segmenter(content)
	if err != nil {
		return 0, &IngestionError{Filename: meta.Filename, Err: err}
	}
	if len(segments) == 0 {
		log.Infof("[RAGEngine] document %s has no content, nothing stored", meta.Filename)
		return 0, nil
	}

	recordMeta := meta.RecordMetadata()
	stored := 0
	defer func() {
		if stored > 0 {
			e.changed(ctx)
		}
	}()

	for _, seg := range segments {
		vec, err := e.embedder.Embed(ctx, seg)
		if err != nil {
			return stored, &IngestionError{Filename: meta.Filename, Stored: stored, Err: err}
		}
		if _, err := e.index.Add(seg, vec, recordMeta); err != nil {
			return stored, &IngestionError{Filename: meta.Filename, Stored: stored, Err: err}
		}
		stored++
	}

	log.Infow("[RAGEngine] document ingested", "filename", meta.Filename, "chunks", stored)
	return stored, nil
}

// Answer retrieves the chunks most similar to query and composes a reply.
// Only results with positive similarity are used as sources.
func (e *Engine) Answer(ctx context.Context, query string) (*model.RAGResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var sources []model.SearchResult
	for _, r := range e.index.Search(vec, e.topK) {
		if r.Similarity > 0 {
			sources = append(sources, r)
		}
	}
	if len(sources) == 0 {
		return &model.RAGResponse{
			Answer:  e.noResult,
			Sources: []model.SearchResult{},
			Query:   query,
		}, nil
	}

	return &model.RAGResponse{
		Answer:  e.composer.Compose(query, sources),
		Sources: sources,
		Query:   query,
	}, nil
}

// Clear empties the index.
func (e *Engine) Clear(ctx context.Context) {
	e.index.Clear()
	log.Info("[RAGEngine] index cleared")
	e.changed(ctx)
}

// ChunkCount returns the number of stored chunks.
func (e *Engine) ChunkCount() int { return e.index.Count() }

// DocumentCount returns the number of distinct ingested documents.
func (e *Engine) DocumentCount() int { return e.index.DocumentCount() }

// Records returns a copy of the stored records.
func (e *Engine) Records() []model.IndexedRecord { return e.index.Records() }

// Restore replaces the index contents, typically from a snapshot at startup.
// The change hook is not called.
func (e *Engine) Restore(records []model.IndexedRecord) error {
	return e.index.Restore(records)
}

// changed runs the change hook detached from ctx's cancellation, so a caller
// that goes away after the index changed does not abort the hook.
func (e *Engine) changed(ctx context.Context) {
	if e.onChange != nil {
		e.onChange(context.WithoutCancel(ctx))
	}
}
