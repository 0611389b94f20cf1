package tika

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa-go/internal/config"
)

func TestExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tika" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if r.Header.Get("Accept") != "text/plain" {
			http.Error(w, "wrong accept header", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write([]byte("extracted: " + string(body)))
	}))
	defer srv.Close()

	c := NewClient(config.TikaConfig{ServerURL: srv.URL})
	text, err := c.ExtractText(context.Background(), strings.NewReader("raw"), "report.pdf")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if text != "extracted: raw" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "parse failure", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(config.TikaConfig{ServerURL: srv.URL})
	_, err := c.ExtractText(context.Background(), strings.NewReader("raw"), "report.docx")
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Fatalf("expected a 422 error, got %v", err)
	}
}

func TestExtractTextUnavailable(t *testing.T) {
	c := NewClient(config.TikaConfig{})
	if c.Available() {
		t.Fatal("client without a server url reports available")
	}
	if _, err := c.ExtractText(context.Background(), strings.NewReader("raw"), "a.pdf"); !errors.Is(err, ErrExtractorUnavailable) {
		t.Fatalf("expected ErrExtractorUnavailable, got %v", err)
	}
}

func TestDetectMimeType(t *testing.T) {
	if got := detectMimeType("a.pdf"); got != "application/pdf" {
		t.Errorf("pdf mime = %q", got)
	}
	if got := detectMimeType("noext"); got != "application/octet-stream" {
		t.Errorf("no extension mime = %q", got)
	}
}
