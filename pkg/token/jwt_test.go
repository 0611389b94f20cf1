package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	tok, err := m.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := m.VerifyToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "admin" || claims.Role != RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	other := NewJWTManager("other-secret", 1)
	foreign, _ := other.GenerateToken("admin", RoleAdmin)
	expired, _ := NewJWTManager("test-secret", -1).GenerateToken("admin", RoleAdmin)

	for name, tok := range map[string]string{
		"wrong secret": foreign,
		"expired":      expired,
		"garbage":      "not.a.token",
	} {
		if _, err := m.VerifyToken(tok); err == nil {
			t.Errorf("%s: expected verification to fail", name)
		}
	}
}

func TestEmptySecretRejectsTokens(t *testing.T) {
	m := NewJWTManager("", 12)
	if m.Enabled() {
		t.Fatal("manager without a secret reports enabled")
	}
	if _, err := m.GenerateToken("admin", RoleAdmin); !errors.Is(err, ErrNoSecret) {
		t.Errorf("generate: expected ErrNoSecret, got %v", err)
	}

	claims := CustomClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(""))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyToken(forged); !errors.Is(err, ErrNoSecret) {
		t.Errorf("verify: expected ErrNoSecret, got %v", err)
	}
}
