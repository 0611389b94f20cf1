package handler

import (
	"github.com/gin-gonic/gin"

	"docqa-go/internal/middleware"
	"docqa-go/pkg/token"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Document *DocumentHandler
	Query    *QueryHandler
	Auth     *AuthHandler
	Chat     *ChatHandler
}

// NewRouter registers the /api/v1 routes.
func NewRouter(h Handlers, jwtManager *token.JWTManager) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/auth/token", h.Auth.IssueToken)

		documents := apiV1.Group("/documents")
		{
			documents.POST("/upload", h.Document.Upload)
			documents.GET("/uploads", h.Document.ListUploads)
			documents.DELETE("", middleware.AdminAuthMiddleware(jwtManager), h.Document.Clear)
		}

		apiV1.POST("/query", h.Query.Query)
		apiV1.GET("/status", h.Query.Status)
		apiV1.GET("/chat", h.Chat.Handle)
	}
	return r
}
