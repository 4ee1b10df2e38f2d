package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/guestbook/internal/config"
	"github.com/listenupapp/guestbook/internal/logger"
	"github.com/listenupapp/guestbook/internal/metrics"
	"github.com/listenupapp/guestbook/internal/ratelimit"
	"github.com/listenupapp/guestbook/internal/render"
	"github.com/listenupapp/guestbook/internal/service"
)

// ProvideMetrics provides the Prometheus collectors, or nil when metrics are
// disabled. A nil *metrics.Metrics is safe to use.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Metrics.Enabled {
		return nil, nil
	}
	return metrics.New(), nil
}

// ProvideGuestbookService provides the guestbook service.
func ProvideGuestbookService(i do.Injector) (*service.GuestbookService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	opts := []service.Option{service.WithMetrics(m)}
	if searchService != nil {
		opts = append(opts, service.WithSearchIndexer(searchService))
	}

	return service.NewGuestbookService(storeOf(i), log.Logger, opts...), nil
}

// RendererHandle wraps the page renderer with shutdown capability.
type RendererHandle struct {
	*render.Renderer
}

// Shutdown implements do.Shutdownable.
func (h *RendererHandle) Shutdown() error {
	return h.Close()
}

// ProvideRenderer provides the HTML page renderer.
func ProvideRenderer(i do.Injector) (*RendererHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	renderer, err := render.New(render.Options{
		Dir:    cfg.Templates.Dir,
		Reload: cfg.Templates.Reload,
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Templates.Dir == "" {
		log.Info("Using embedded templates")
	} else {
		log.Info("Templates loaded", "dir", cfg.Templates.Dir, "reload", cfg.Templates.Reload)
	}

	return &RendererHandle{Renderer: renderer}, nil
}

// PostLimiterHandle wraps the form post rate limiter. Limiter is nil when
// rate limiting is disabled.
type PostLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *PostLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvidePostLimiter provides the per-IP rate limiter for form posts.
func ProvidePostLimiter(i do.Injector) (*PostLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimit.Enabled() {
		return &PostLimiterHandle{}, nil
	}

	log.Info("Form post rate limit enabled",
		"rate", cfg.RateLimit.Rate,
		"burst", cfg.RateLimit.Burst,
	)
	return &PostLimiterHandle{Limiter: ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Burst)}, nil
}
