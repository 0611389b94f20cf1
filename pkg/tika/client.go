// Package tika extracts plain text from office and PDF files through an
// Apache Tika server.
package tika

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"docqa-go/internal/config"
)

// ErrExtractorUnavailable is returned when no Tika server is configured.
var ErrExtractorUnavailable = errors.New("text extraction for this file type is not available")

// Client talks to a Tika server.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a Client. An empty server URL yields a client whose
// ExtractText always fails with ErrExtractorUnavailable.
func NewClient(cfg config.TikaConfig) *Client {
	return &Client{
		serverURL:  cfg.ServerURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Available reports whether a server is configured.
func (c *Client) Available() bool { return c.serverURL != "" }

// ExtractText sends the file to Tika and returns its plain text. The content
// type is inferred from the file extension.
func (c *Client) ExtractText(ctx context.Context, r io.Reader, fileName string) (string, error) {
	if !c.Available() {
		return "", ErrExtractorUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.serverURL+"/tika", r)
	if err != nil {
		return "", fmt.Errorf("create tika request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", detectMimeType(fileName))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call tika: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read tika response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tika returned [%d]: %s", resp.StatusCode, string(body))
	}
	return string(body), nil
}

func detectMimeType(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		return "application/octet-stream"
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}
