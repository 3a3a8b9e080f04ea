package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/lexidrill/lexidrill/internal/parser"
)

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	AllowedOrigins    []string
	RequestsPerMinute int
}

// NewRouter wires the middleware chain and every route of h.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(h.Logger))
	r.Use(RecoverMiddleware(h.Logger))
	r.Use(CorsMiddleware(cfg.AllowedOrigins))
	if cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
	}
	// Room for the multipart envelope around the largest accepted document.
	r.Use(RequestSizeLimitMiddleware(parser.MaxFileSize + 1<<20))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r)
	})

	return r
}
