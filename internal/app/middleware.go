package app

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/krsx/book-api/internal/observability"
	"github.com/krsx/book-api/internal/platform/httpx"
	"github.com/krsx/book-api/internal/shared"
)

// publicPathPatterns is the fixed allow-list of paths reachable without any
// Authorization header. Everything else is classified protected and must at
// least present a bearer credential; per-route middleware then runs the full
// token checks.
var publicPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^/api/v\d+/auth/signup/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/login/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/status/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/refresh_token/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/send_email/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/password_reset/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/verify_email/[^/]+/?$`),
	regexp.MustCompile(`^/api/v\d+/auth/password_reset_confirm/[^/]+/?$`),
	regexp.MustCompile(`^/healthz$`),
	regexp.MustCompile(`^/metrics$`),
}

func isPublicPath(path string) bool {
	for _, pattern := range publicPathPatterns {
		if pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// AuthGuard rejects protected paths lacking an Authorization header before
// any routing happens. Token decoding and revocation checks run later in the
// per-route auth middleware.
func AuthGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") == "" {
			httpx.RespondError(w, shared.ErrMissingAuthHeader)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
}

// MiddlewareStack installs the application middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
		AuthGuard,
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, func(next http.Handler) http.Handler {
			return cfg.Metrics.Middleware(next)
		})
	}
	return middlewares
}
