// Package token issues and verifies the admin JSON Web Tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the service issues.
const RoleAdmin = "ADMIN"

// ErrNoSecret is returned by a JWTManager built without a signing secret.
var ErrNoSecret = errors.New("jwt secret is not configured")

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secretKey []byte
	tokenDur  time.Duration
}

// CustomClaims are the claims carried by every token.
type CustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a JWTManager whose tokens expire after expireHours.
// With an empty secret the manager neither issues nor accepts tokens.
func NewJWTManager(secret string, expireHours int) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secret),
		tokenDur:  time.Hour * time.Duration(expireHours),
	}
}

// Enabled reports whether a signing secret is configured.
func (m *JWTManager) Enabled() bool {
	return len(m.secretKey) > 0
}

// GenerateToken returns a signed token for subject with the given role.
func (m *JWTManager) GenerateToken(subject, role string) (string, error) {
	if !m.Enabled() {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := CustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// VerifyToken parses tokenString and returns its claims if it is valid.
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	if !m.Enabled() {
		return nil, ErrNoSecret
	}
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
