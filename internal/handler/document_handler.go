package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/service"
	"docqa-go/pkg/log"
)

// DocumentHandler serves the document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
	maxUploadSize   int64
}

// NewDocumentHandler creates a DocumentHandler. maxUploadSize <= 0 disables the limit.
func NewDocumentHandler(documentService service.DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, maxUploadSize: maxUploadSize}
}

// Upload accepts a multipart "file" field and ingests it.
func (h *DocumentHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a file is required"})
		return
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload size limit"})
		return
	}

	f, err := header.Open()
	if err != nil {
		writeError(c, "Upload: open form file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, "Upload: read form file", err)
		return
	}

	res, err := h.documentService.Upload(c.Request.Context(), service.UploadInput{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		writeError(c, "Upload", err)
		return
	}

	message := "document uploaded and indexed"
	if res.Queued {
		message = "document uploaded and queued for indexing"
	}
	log.Infof("Upload: %s, %d chunks", res.Filename, res.ChunkCount)
	c.JSON(http.StatusOK, gin.H{
		"message":       message,
		"filename":      res.Filename,
		"type":          res.Type,
		"size":          res.Size,
		"chunkCount":    res.ChunkCount,
		"documentCount": res.DocumentCount,
		"queued":        res.Queued,
	})
}

// ListUploads returns the upload audit log.
func (h *DocumentHandler) ListUploads(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}
	uploads, err := h.documentService.ListUploads(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "ListUploads", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": uploads})
}

// Clear removes every document from the index.
func (h *DocumentHandler) Clear(c *gin.Context) {
	h.documentService.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "all documents cleared"})
}
