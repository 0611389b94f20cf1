package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/service"
)

// QueryHandler serves questions and status.
type QueryHandler struct {
	queryService service.QueryService
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(queryService service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

type queryRequest struct {
	Query string `json:"query"`
}

// Query answers {"query": "..."}.
func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	resp, err := h.queryService.Answer(c.Request.Context(), req.Query)
	if err != nil {
		writeError(c, "Query", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Status reports index and embedder state.
func (h *QueryHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.queryService.Status())
}
