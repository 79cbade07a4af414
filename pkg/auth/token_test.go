package auth_test

import (
	"testing"

	"github.com/mestawet/gebeya/pkg/auth"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

func TestTokenSaveLoadClear(t *testing.T) {
	s := kvstore.NewMemory()

	if got := auth.LoadToken(s); got != "" {
		t.Fatalf("expected no token, got %q", got)
	}

	if err := auth.SaveToken(s, "abc123"); err != nil {
		t.Fatal(err)
	}
	if got := auth.LoadToken(s); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}

	auth.ClearToken(s)
	if got := auth.LoadToken(s); got != "" {
		t.Errorf("expected cleared token, got %q", got)
	}
}

func TestLoadTokenLegacyKeyFallback(t *testing.T) {
	s := kvstore.NewMemory()
	_ = s.Put(auth.LegacyTokenKey, []byte("old-session"))

	if got := auth.LoadToken(s); got != "old-session" {
		t.Errorf("expected legacy token, got %q", got)
	}
}

func TestGeneratePeekValidate(t *testing.T) {
	tok, err := auth.GenerateToken(42, "vendor")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := auth.Peek(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Role != "vendor" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if auth.Expired(tok) {
		t.Error("fresh token reported expired")
	}

	if _, err := auth.ValidateToken(tok); err != nil {
		t.Errorf("expected valid token, got %v", err)
	}
	if _, err := auth.ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for garbage token")
	}
}

func TestExpiredOnGarbage(t *testing.T) {
	if !auth.Expired("garbage") {
		t.Error("malformed token should count as expired")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !auth.CheckPassword(hash, "s3cret") {
		t.Error("expected password to match")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("expected mismatch to fail")
	}
}
