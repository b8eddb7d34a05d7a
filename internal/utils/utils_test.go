package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestHashAndVerifyPassword(t *testing.T) {
	// Minimum bcrypt cost keeps the test fast.
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("expected matching password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestNewAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "MEMBER", 15)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("expected issued token to parse, got %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["sub"].(float64) != 42 {
		t.Errorf("sub claim = %v, want 42", claims["sub"])
	}
	if claims["role"] != "MEMBER" {
		t.Errorf("role claim = %v, want MEMBER", claims["role"])
	}
	if until := time.Until(at.Exp); until < 14*time.Minute || until > 15*time.Minute {
		t.Errorf("expiry %s not ~15m out", until)
	}
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right", 1, "MEMBER", 5)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	if err == nil && tok.Valid {
		t.Fatal("token must not validate under a different secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if len(rt.Raw) != 96 { // 48 random bytes hex encoded
		t.Errorf("raw length = %d, want 96", len(rt.Raw))
	}
	if until := time.Until(rt.Exp); until < 6*24*time.Hour || until > 7*24*time.Hour {
		t.Errorf("expiry %s not ~7d out", until)
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if rt.Raw == other.Raw {
		t.Fatal("two refresh tokens must not collide")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("token-a")
	h2 := HashRefreshRaw("token-a")
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if len(h1) != 64 { // sha256 hex
		t.Errorf("hash length = %d, want 64", len(h1))
	}
	if HashRefreshRaw("token-b") == h1 {
		t.Fatal("different tokens must hash differently")
	}
}
