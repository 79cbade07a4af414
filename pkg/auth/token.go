// Package auth handles bearer tokens on the client side: persisting the
// token issued at login, inspecting its claims without verification (the
// backend is the verifier), and — for the bundled mock backend — issuing
// and checking credentials.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mestawet/gebeya/config"
	"github.com/mestawet/gebeya/pkg/kvstore"
)

// TokenKey is the primary local-storage key for the bearer token.
// LegacyTokenKey is read as a fallback for sessions written by older
// storefront builds.
const (
	TokenKey       = "token"
	LegacyTokenKey = "auth_token"
)

// Claims holds the typed JWT payload.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func secret() []byte {
	return []byte(config.JWTSecret())
}

// ─── Client-side token handling ───────────────────────────────────────────────

// SaveToken persists the bearer token under TokenKey.
func SaveToken(s kvstore.Store, token string) error {
	return s.Put(TokenKey, []byte(token))
}

// LoadToken returns the stored bearer token, checking the legacy key as a
// fallback. Empty string means no token.
func LoadToken(s kvstore.Store) string {
	if v, ok, _ := s.Get(TokenKey); ok && len(v) > 0 {
		return string(v)
	}
	if v, ok, _ := s.Get(LegacyTokenKey); ok && len(v) > 0 {
		return string(v)
	}
	return ""
}

// ClearToken removes both token keys.
func ClearToken(s kvstore.Store) {
	_ = s.Delete(TokenKey)
	_ = s.Delete(LegacyTokenKey)
}

// Peek decodes the claims of a token WITHOUT verifying its signature.
// The client uses this for display decisions (who am I, has the session
// expired); the backend remains the authority.
func Peek(token string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Expired reports whether the token's exp claim is in the past.
// Malformed tokens count as expired.
func Expired(token string) bool {
	claims, err := Peek(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}

// ─── Issuing side (mock backend) ──────────────────────────────────────────────

// GenerateToken creates a signed JWT for the given user.
func GenerateToken(userID int64, role string) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// ValidateToken parses and validates a JWT string.
func ValidateToken(t string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(t, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Join(jwt.ErrTokenInvalidClaims)
	}

	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
