// Package handler contains the HTTP handlers.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/rag"
	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

// statusFor maps an application error to an HTTP status code.
func statusFor(err error) int {
	var vErr *rag.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrExtractorUnavailable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with the mapped status and a JSON error body.
func writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %v", op, err)
	}
	body := gin.H{"error": err.Error()}
	var ingErr *rag.IngestionError
	if errors.As(err, &ingErr) {
		body["storedChunks"] = ingErr.Stored
	}
	c.JSON(status, body)
}
