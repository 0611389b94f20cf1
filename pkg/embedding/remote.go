package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docqa-go/internal/config"
	"docqa-go/pkg/log"
)

// loadCheckText is embedded once on Load to verify the endpoint and its dimension.
const loadCheckText = "ping"

// RemoteModel calls an OpenAI-compatible /embeddings endpoint, for example a
// text-embeddings-inference server hosting all-MiniLM-L6-v2. The server is
// expected to mean-pool; vectors are L2-normalized here.
type RemoteModel struct {
	cfg    config.EmbeddingConfig
	client *http.Client
}

// NewRemoteModel creates a RemoteModel from the embedding config.
func NewRemoteModel(cfg config.EmbeddingConfig) *RemoteModel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteModel{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Name returns the configured model name.
func (m *RemoteModel) Name() string { return m.cfg.Model }

// Load checks that the endpoint answers with Dimension-length vectors.
func (m *RemoteModel) Load(ctx context.Context) error {
	if m.cfg.BaseURL == "" {
		return fmt.Errorf("embedding base_url is not configured")
	}
	_, err := m.Embed(ctx, loadCheckText)
	return err
}

// Embed returns the normalized embedding of text.
func (m *RemoteModel) Embed(ctx context.Context, text string) ([]float64, error) {
	log.Debugf("[EmbeddingClient] calling embedding API, model: %s, input_len: %d", m.cfg.Model, len(text))
	reqBody := embeddingRequest{
		Model:      m.cfg.Model,
		Input:      []string{text},
		Dimensions: m.cfg.Dimensions,
	}
	if m.cfg.Dimensions != 0 && m.cfg.Dimensions != Dimension {
		return nil, fmt.Errorf("%w: configured %d, need %d", ErrDimensionMismatch, m.cfg.Dimensions, Dimension)
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/embeddings", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call embedding api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding api returned non-200 status: %s", resp.Status)
	}

	var embeddingResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(embeddingResp.Data) == 0 || len(embeddingResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("received empty embedding from api")
	}

	vec := embeddingResp.Data[0].Embedding
	if len(vec) != Dimension {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrDimensionMismatch, len(vec), Dimension)
	}
	return normalize(vec), nil
}
