package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

const testKeyID = "test-key-mq"

const testIssuer = "https://api.munquest.test"

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}
	data, _ := json.Marshal(jwks)
	return data
}

// signToken подписывает токен с заданным сроком действия.
func signToken(t *testing.T, key *rsa.PrivateKey, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iss": testIssuer,
		"exp": jwt.NewNumericDate(exp),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	s, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTokenReader_Verified(t *testing.T) {
	key := generateTestKey(t)
	kf, err := keyfunc.NewJWKSetJSON(buildJWKSetJSON(&key.PublicKey, testKeyID))
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	tr := NewTokenReaderWithKeyfunc(kf, testIssuer, testLogger())
	ctx := context.Background()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := tr.Read(ctx, signToken(t, key, "42", exp))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if claims.Subject != "42" {
		t.Errorf("Subject = %q, want 42", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}

	if _, err := tr.Read(ctx, signToken(t, key, "42", time.Now().Add(-time.Hour))); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("истёкший токен: %v, ожидается ErrTokenExpired", err)
	}

	other := generateTestKey(t)
	if _, err := tr.Read(ctx, signToken(t, other, "42", exp)); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("чужая подпись: %v, ожидается ErrTokenInvalid", err)
	}
}

func TestTokenReader_Unverified(t *testing.T) {
	key := generateTestKey(t)
	tr := NewTokenReaderWithKeyfunc(nil, "", testLogger())
	ctx := context.Background()

	if tr.Verifies() {
		t.Error("Verifies() = true без JWKS")
	}

	claims, err := tr.Read(ctx, signToken(t, key, "7", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if claims.Subject != "7" {
		t.Errorf("Subject = %q, want 7", claims.Subject)
	}

	if _, err := tr.Read(ctx, signToken(t, key, "7", time.Now().Add(-time.Hour))); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("истёкший токен: %v, ожидается ErrTokenExpired", err)
	}
	if _, err := tr.Read(ctx, "opaque-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("не JWT: %v, ожидается ErrTokenInvalid", err)
	}
}

func TestNewTokenReader_WithoutJWKS(t *testing.T) {
	tr, err := NewTokenReader("", "", nil, testLogger())
	if err != nil {
		t.Fatalf("NewTokenReader: %v", err)
	}
	if tr.Verifies() {
		t.Error("Verifies() = true без JWKS URL")
	}
}
