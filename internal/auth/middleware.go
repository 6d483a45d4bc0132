package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/krsx/book-api/internal/platform/httpx"
	"github.com/krsx/book-api/internal/shared"
)

// Middleware wires the per-request access control gate. A request moves
// through extraction, decoding, kind verification and the revocation check
// before its claims reach the handler; any step can terminate it with a
// fixed rejection.
type Middleware struct {
	Codec     *TokenCodec
	Blocklist *Blocklist
	Repo      Repository
	Logger    *slog.Logger
}

// RequireToken enforces that the request carries a valid bearer token of the
// expected kind and that its jti has not been revoked.
func (m Middleware) RequireToken(kind TokenKind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.RespondError(w, shared.ErrMissingAuthHeader)
				return
			}
			raw, ok := bearerToken(header)
			if !ok {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}

			claims, err := m.Codec.DecodeToken(raw)
			if err != nil {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}

			if claims.Kind() != kind {
				if kind == AccessToken {
					httpx.RespondError(w, shared.ErrAccessTokenRequired)
				} else {
					httpx.RespondError(w, shared.ErrRefreshTokenRequired)
				}
				return
			}

			revoked, err := m.Blocklist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				// Registry unavailability fails closed: the request is
				// rejected rather than letting a possibly-revoked token pass.
				if m.Logger != nil {
					m.Logger.Error("blocklist lookup failed", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if revoked {
				// Revoked tokens are indistinguishable from invalid ones.
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRoles loads the user behind the access-token claims and enforces
// the verification flag and the route's allowed role set. It must run after
// RequireToken(AccessToken).
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}
			user, err := m.Repo.FindByEmail(r.Context(), claims.User.Email)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			if !user.IsVerified {
				httpx.RespondError(w, shared.ErrAccountNotVerified)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				httpx.RespondError(w, shared.ErrInsufficientPermission)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
