package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"docqa-go/pkg/log"
	"docqa-go/pkg/token"
)

// AuthHandler issues admin tokens.
type AuthHandler struct {
	passwordHash []byte
	jwtManager   *token.JWTManager
}

// NewAuthHandler creates an AuthHandler. An empty hash or an unsigned
// jwtManager disables login.
func NewAuthHandler(adminPasswordHash string, jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{passwordHash: []byte(adminPasswordHash), jwtManager: jwtManager}
}

type tokenRequest struct {
	Password string `json:"password" binding:"required"`
}

// IssueToken exchanges the admin password for a token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	if len(h.passwordHash) == 0 || !h.jwtManager.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login is not configured"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		log.Warnf("IssueToken: rejected admin login from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	tok, err := h.jwtManager.GenerateToken("admin", token.RoleAdmin)
	if err != nil {
		writeError(c, "IssueToken", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}
