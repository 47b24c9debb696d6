package middleware

import (
	"testing"
	"time"

	"wayfare/globals"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestValidateJWTRoundTrip(t *testing.T) {
	signed := signToken(t, &Claims{
		Username: "mina",
		UserID:   "u123",
		Role:     []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateJWT("Bearer " + signed)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if claims.UserID != "u123" || claims.Username != "mina" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateJWTRejects(t *testing.T) {
	for _, tok := range []string{"", "Bearer ", "Bearer not-a-jwt"} {
		if _, err := ValidateJWT(tok); err == nil {
			t.Errorf("expected error for %q", tok)
		}
	}
}

func TestValidateJWTExpired(t *testing.T) {
	signed := signToken(t, &Claims{
		UserID: "u123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	if _, err := ValidateJWT("Bearer " + signed); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateRawToken(t *testing.T) {
	signed := signToken(t, &Claims{
		UserID: "u456",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateRawToken(signed)
	if err != nil {
		t.Fatalf("ValidateRawToken: %v", err)
	}
	if claims.UserID != "u456" {
		t.Errorf("unexpected user id %q", claims.UserID)
	}

	if _, err := ValidateRawToken(""); err == nil {
		t.Error("expected error for empty token")
	}
}
