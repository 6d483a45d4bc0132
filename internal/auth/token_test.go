package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/krsx/book-api/internal/auth"
	"github.com/krsx/book-api/internal/shared"
	_ "github.com/krsx/book-api/testing"
)

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(auth.CodecConfig{
		Secret:     "test-secret",
		Algorithm:  "HS256",
		AccessTTL:  time.Hour,
		RefreshTTL: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func testSubject() auth.SubjectClaims {
	return auth.SubjectClaims{
		Email:   "reader@example.com",
		UserUID: "3f6f4ac2-9c3f-4f51-8e52-6a7d5f1c0a11",
		Role:    "user",
	}
}

func TestIssueAccessToken(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.IssueToken(testSubject(), auth.AccessToken)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := codec.DecodeToken(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Kind() != auth.AccessToken {
		t.Fatalf("expected access kind, got %s", claims.Kind())
	}
	if claims.User.Email != "reader@example.com" {
		t.Fatalf("unexpected email %q", claims.User.Email)
	}
	if claims.User.Role != "user" {
		t.Fatalf("expected role on access token, got %q", claims.User.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti on the token")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Fatal("expected a future expiry")
	}
}

func TestRefreshTokenDropsRole(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.IssueToken(testSubject(), auth.RefreshToken)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := codec.DecodeToken(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Kind() != auth.RefreshToken {
		t.Fatalf("expected refresh kind, got %s", claims.Kind())
	}
	if claims.User.Role != "" {
		t.Fatalf("refresh token must not carry a role, got %q", claims.User.Role)
	}
	if claims.User.UserUID == "" {
		t.Fatal("refresh token must keep the user uid")
	}
}

func TestIssueTokenUniqueJTI(t *testing.T) {
	codec := newCodec(t)

	first, err := codec.IssueToken(testSubject(), auth.AccessToken)
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := codec.IssueToken(testSubject(), auth.AccessToken)
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	a, _ := codec.DecodeToken(first)
	b, _ := codec.DecodeToken(second)
	if a == nil || b == nil {
		t.Fatal("decode failed")
	}
	if a.ID == b.ID {
		t.Fatalf("two issued tokens share jti %q", a.ID)
	}
}

func TestDecodeTokenRejectsTampering(t *testing.T) {
	codec := newCodec(t)

	raw, err := codec.IssueToken(testSubject(), auth.AccessToken)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	tampered := raw[:len(raw)-2] + "xx"
	if _, err := codec.DecodeToken(tampered); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeTokenRejectsForeignSecret(t *testing.T) {
	codec := newCodec(t)
	other, err := auth.NewTokenCodec(auth.CodecConfig{Secret: "other-secret", Algorithm: "HS256"})
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	raw, err := other.IssueToken(testSubject(), auth.AccessToken)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := codec.DecodeToken(raw); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeTokenRejectsExpired(t *testing.T) {
	codec := newCodec(t)

	// Sign an already-expired payload with the codec's algorithm and secret.
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired-jti",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		User: testSubject(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.DecodeToken(raw); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeTokenRejectsMissingRegisteredClaims(t *testing.T) {
	codec := newCodec(t)

	// No jti and no expiry.
	claims := auth.Claims{User: testSubject()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.DecodeToken(raw); !errors.Is(err, shared.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenCodecRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  auth.CodecConfig
	}{
		{"empty secret", auth.CodecConfig{Algorithm: "HS256"}},
		{"unknown algorithm", auth.CodecConfig{Secret: "s", Algorithm: "HS999"}},
		{"asymmetric algorithm", auth.CodecConfig{Secret: "s", Algorithm: "RS256"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.NewTokenCodec(tc.cfg); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}
