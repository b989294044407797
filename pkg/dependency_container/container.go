package dependency_container

import (
	"context"
	"fmt"

	appAnalysis "github.com/betterhyq/LexPlain/pkg/app/analysis"
	appRateLimit "github.com/betterhyq/LexPlain/pkg/app/ratelimit"
	appStats "github.com/betterhyq/LexPlain/pkg/app/stats"
	"github.com/betterhyq/LexPlain/pkg/config"
	domainRateLimit "github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	domainStats "github.com/betterhyq/LexPlain/pkg/domain/stats"
	handlers "github.com/betterhyq/LexPlain/pkg/handlers/http"
	"github.com/betterhyq/LexPlain/pkg/infra/breaker"
	"github.com/betterhyq/LexPlain/pkg/infra/cache"
	providersFactory "github.com/betterhyq/LexPlain/pkg/infra/providers/factory"
	"github.com/betterhyq/LexPlain/pkg/infra/repository"
	"github.com/betterhyq/LexPlain/pkg/middleware"
	"github.com/betterhyq/LexPlain/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type Container struct {
	// Cache is nil when the memory store driver is selected.
	Cache               cache.Client
	MemoryStore         *repository.MemoryRepository
	RateLimitStore      domainRateLimit.Store
	StatsStore          domainStats.Store
	ProviderLocator     providersFactory.ProviderLocator
	Limiter             appRateLimit.Limiter
	Counters            appStats.Counters
	Analyzer            appAnalysis.Analyzer
	MiddlewareTransport middleware.Transport
	HandlerTransport    handlers.HandlerTransport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewContainer(di ContainerDI) (*Container, error) {
	if di.Cfg == nil || di.Logger == nil {
		return nil, fmt.Errorf("dependency container: config and logger are required")
	}
	cfg := di.Cfg
	c := &Container{}

	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		di.Logger.Warn("using in-memory counter store; limits and stats are per instance and lost on restart")
		c.MemoryStore = repository.NewMemoryRepository(nil)
		c.RateLimitStore = c.MemoryStore
		c.StatsStore = c.MemoryStore
	case config.StoreDriverRedis:
		c.Cache = cache.NewClient(cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			TLS:         cfg.Redis.TLS,
			DialTimeout: cfg.Redis.DialTimeout,
			OpTimeout:   cfg.Redis.OpTimeout,
		}, di.Logger)
		c.RateLimitStore = repository.NewRateLimitRepository(c.Cache.RedisClient())
		c.StatsStore = repository.NewStatsRepository(c.Cache.RedisClient())
	default:
		return nil, fmt.Errorf("dependency container: unknown store driver %q", cfg.Store.Driver)
	}

	breakerSettings := breaker.Settings{
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		MaxFailures: cfg.Breaker.MaxFailures,
	}

	var storeBreaker breaker.Breaker
	if cfg.Breaker.Enabled {
		s := breakerSettings
		s.Name = "counter-store"
		storeBreaker = breaker.New(s, di.Logger)
	}

	providerSettings := breakerSettings
	providerSettings.Name = "provider"
	c.ProviderLocator = providersFactory.NewProviderLocator(di.Logger, providerSettings)

	c.Limiter = appRateLimit.NewLimiter(di.Logger, c.RateLimitStore, appRateLimit.Options{
		Limit:   cfg.RateLimit.Limit,
		Window:  cfg.RateLimit.Window,
		Timeout: cfg.Redis.OpTimeout,
		Breaker: storeBreaker,
	})
	c.Counters = appStats.NewCounters(di.Logger, c.StatsStore, cfg.Redis.OpTimeout)
	c.Analyzer = appAnalysis.NewAnalyzer(di.Logger, c.ProviderLocator, appAnalysis.Options{
		Provider:         cfg.Provider.Name,
		APIKey:           cfg.Provider.APIKey,
		BaseURL:          cfg.Provider.BaseURL,
		Model:            cfg.Provider.Model,
		MaxInputChars:    cfg.Provider.MaxInputChars,
		AnalyzeMaxTokens: cfg.Provider.AnalyzeMaxTokens,
		AskMaxTokens:     cfg.Provider.AskMaxTokens,
		Temperature:      cfg.Provider.Temperature,
		Timeout:          cfg.Provider.Timeout,
	})
	if cfg.Provider.APIKey == "" {
		di.Logger.Warn("provider api key is not set; /api/analyze and /api/ask will answer 503")
	}

	c.MiddlewareTransport = middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		CORSMiddleware:         middleware.NewCORSMiddleware(cfg.Server.CORSOrigins),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(di.Logger),
		RateLimitMiddleware:    middleware.NewRateLimitMiddleware(di.Logger, c.Limiter),
	}

	c.HandlerTransport = handlers.HandlerTransport{
		AnalyzeHandler:    handlers.NewAnalyzeHandler(di.Logger, c.Analyzer, c.Counters),
		AskHandler:        handlers.NewAskHandler(di.Logger, c.Analyzer),
		RateHandler:       handlers.NewRateHandler(di.Logger, c.Counters),
		StatsHandler:      handlers.NewStatsHandler(di.Logger, c.Counters),
		HealthHandler:     handlers.NewHealthHandler(di.Logger),
		GetVersionHandler: handlers.NewGetVersionHandler(di.Logger),
	}

	return c, nil
}

// Routers returns the routers served by the API server.
func (c *Container) Routers() []router.ServerRouter {
	return []router.ServerRouter{
		router.NewAPIRouter(c.MiddlewareTransport, c.HandlerTransport),
	}
}

// Start launches background work tied to ctx.
func (c *Container) Start(ctx context.Context, cfg *config.Config) {
	if c.MemoryStore != nil {
		c.MemoryStore.StartJanitor(ctx, cfg.Store.JanitorInterval)
	}
}

func (c *Container) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
