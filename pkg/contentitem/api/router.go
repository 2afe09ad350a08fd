package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/tendant/chi-demo/app"
	demomw "github.com/tendant/chi-demo/middleware"
)

// RouterConfig selects the optional parts of the HTTP surface.
type RouterConfig struct {
	// APIKeySHA256 enables API key auth on /content-items when set
	APIKeySHA256 string
	// JWTSecret enables HS256 bearer token auth on /content-items when set
	JWTSecret string
	// Metrics, when set, records requests and serves /metrics
	Metrics *Metrics
	Logger  *slog.Logger
}

// NewRouter builds the server router: health, metrics, and the content item
// API behind the configured auth.
func NewRouter(h *Handler, cfg RouterConfig) (*chi.Mux, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var apiKeyMiddleware func(http.Handler) http.Handler
	if cfg.APIKeySHA256 != "" {
		mw, err := demomw.ApiKeyMiddleware(demomw.ApiKeyConfig{
			APIKeys: map[string]string{
				"key1": cfg.APIKeySHA256,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize API key middleware: %w", err)
		}
		apiKeyMiddleware = mw
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(RecoveryMiddleware(logger))

	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	r.Group(func(r chi.Router) {
		if apiKeyMiddleware != nil {
			r.Use(apiKeyMiddleware)
		}
		if cfg.JWTSecret != "" {
			tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)
		}
		r.Mount("/content-items", h.Routes())
	})

	return r, nil
}
