package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/krsx/book-api/internal/shared"
)

// actionTokenSalt separates the action-token signing domain from the bearer
// token domain. A password-reset link can never verify as an API credential
// because the two domains derive distinct keys from the shared secret.
const actionTokenSalt = "email-confirmation"

type actionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ActionCodec issues the single-purpose signed tokens embedded in email
// verification and password-reset links. Validity is time-boxed at decode
// time against the issuance timestamp; no expiry is embedded in the payload.
type ActionCodec struct {
	key    []byte
	method jwt.SigningMethod
	maxAge time.Duration
}

// NewActionCodec derives the signing key from the shared secret and salt.
func NewActionCodec(secret string, maxAge time.Duration) (*ActionCodec, error) {
	if secret == "" {
		return nil, errors.New("auth: action codec requires a signing secret")
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(actionTokenSalt))
	return &ActionCodec{
		key:    mac.Sum(nil),
		method: jwt.SigningMethodHS256,
		maxAge: maxAge,
	}, nil
}

// IssueActionToken signs a payload carrying the email and the issuance
// timestamp.
func (c *ActionCodec) IssueActionToken(email string) (string, error) {
	claims := actionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Email: email,
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign action token: %w", err)
	}
	return signed, nil
}

// DecodeActionToken verifies the signature and enforces the max age. All
// failures normalize to ErrInvalidToken.
func (c *ActionCodec) DecodeActionToken(raw string) (string, error) {
	claims := &actionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.key, nil
	})
	if err != nil || !token.Valid {
		return "", shared.ErrInvalidToken
	}
	if claims.Email == "" || claims.IssuedAt == nil {
		return "", shared.ErrInvalidToken
	}
	if time.Since(claims.IssuedAt.Time) > c.maxAge {
		return "", shared.ErrInvalidToken
	}
	return claims.Email, nil
}
