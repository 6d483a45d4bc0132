package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/krsx/book-api/internal/shared"
)

// TokenKind distinguishes the two bearer token variants.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

// SubjectClaims identifies the token holder. Refresh tokens carry a reduced
// set (no role).
type SubjectClaims struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role,omitempty"`
}

// Claims is the signed payload of an access or refresh token. The jti lives
// in RegisteredClaims.ID and is the handle the blocklist tracks.
type Claims struct {
	jwt.RegisteredClaims
	User    SubjectClaims `json:"user"`
	Refresh bool          `json:"refresh"`
}

// Kind reports which variant the claims belong to.
func (c *Claims) Kind() TokenKind {
	if c.Refresh {
		return RefreshToken
	}
	return AccessToken
}

// CodecConfig is the immutable configuration of a TokenCodec, built once at
// startup and passed in explicitly.
type CodecConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenCodec issues and verifies signed bearer tokens.
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec validates the configuration and builds a codec.
func NewTokenCodec(cfg CodecConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: token codec requires a signing secret")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("auth: unknown signing algorithm %q", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("auth: signing algorithm %q is not symmetric", cfg.Algorithm)
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 48 * time.Hour
	}
	return &TokenCodec{
		secret:     []byte(cfg.Secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// TTL returns the configured lifetime for the given kind.
func (c *TokenCodec) TTL(kind TokenKind) time.Duration {
	if kind == RefreshToken {
		return c.refreshTTL
	}
	return c.accessTTL
}

// IssueToken builds a signed token with a fresh jti, expiry now+TTL and the
// kind flag. Refresh tokens drop the role claim.
func (c *TokenCodec) IssueToken(user SubjectClaims, kind TokenKind) (string, error) {
	now := time.Now()
	if kind == RefreshToken {
		user.Role = ""
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL(kind))),
		},
		User:    user,
		Refresh: kind == RefreshToken,
	}
	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// DecodeToken verifies signature and expiry. Every failure, cryptographic or
// structural, is normalized to ErrInvalidToken so decode internals never
// leak past this boundary.
func (c *TokenCodec) DecodeToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}
