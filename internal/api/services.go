package api

import (
	"github.com/listenupapp/guestbook/internal/metrics"
	"github.com/listenupapp/guestbook/internal/ratelimit"
	"github.com/listenupapp/guestbook/internal/render"
	"github.com/listenupapp/guestbook/internal/service"
)

// Services groups the dependencies of the HTTP server.
type Services struct {
	Guestbook *service.GuestbookService
	Search    *service.SearchService // nil when search is disabled
	Renderer  *render.Renderer
	Metrics   *metrics.Metrics // nil when metrics are disabled
}

// Options holds transport-level settings.
type Options struct {
	// AllowedOrigins enables CORS for these origins. Empty disables CORS.
	AllowedOrigins []string
	// PostLimiter rate limits form posts per client IP. Nil disables limiting.
	PostLimiter *ratelimit.KeyedRateLimiter
	// Version is reported in the OpenAPI document.
	Version string
}
