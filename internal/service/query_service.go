package service

import (
	"context"
	"fmt"
	"time"

	"docqa-go/internal/model"
	"docqa-go/internal/rag"
	"docqa-go/pkg/embedding"
)

// EmbedderInfo exposes the embedding model state.
type EmbedderInfo interface {
	ModelName() string
	State() embedding.State
}

// EmbedderStatus is the embedder part of Status.
type EmbedderStatus struct {
	Model string `json:"model"`
	State string `json:"state"`
}

// Status is the payload of the status endpoint.
type Status struct {
	Status        string         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	DocumentCount int            `json:"documentCount"`
	ChunkCount    int            `json:"chunkCount"`
	Embedder      EmbedderStatus `json:"embedder"`
	Message       string         `json:"message"`
}

// QueryService answers questions and reports index state.
type QueryService interface {
	Answer(ctx context.Context, query string) (*model.RAGResponse, error)
	Status() Status
}

type queryService struct {
	engine   *rag.Engine
	embedder EmbedderInfo
}

// NewQueryService creates a QueryService. embedder may be nil.
func NewQueryService(engine *rag.Engine, embedder EmbedderInfo) QueryService {
	return &queryService{engine: engine, embedder: embedder}
}

func (s *queryService) Answer(ctx context.Context, query string) (*model.RAGResponse, error) {
	return s.engine.Answer(ctx, query)
}

func (s *queryService) Status() Status {
	docs := s.engine.DocumentCount()
	st := Status{
		Status:        "ok",
		Timestamp:     time.Now().UTC(),
		DocumentCount: docs,
		ChunkCount:    s.engine.ChunkCount(),
		Message:       "업로드된 문서가 없습니다.",
	}
	if docs > 0 {
		st.Message = fmt.Sprintf("%d개의 문서가 업로드되어 있습니다.", docs)
	}
	if s.embedder != nil {
		st.Embedder = EmbedderStatus{Model: s.embedder.ModelName(), State: s.embedder.State().String()}
	}
	return st
}
