package router

import (
	handlers "github.com/betterhyq/LexPlain/pkg/handlers/http"
	"github.com/betterhyq/LexPlain/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath  = "/health"
	PingPath    = "/__/ping"
	AnalyzePath = "/api/analyze"
	AskPath     = "/api/ask"
	RatePath    = "/api/rate"
	StatsPath   = "/api/stats"
	VersionPath = "/api/v1/version"
)

type apiRouter struct {
	middlewareTransport middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewAPIRouter(
	middlewareTransport middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	for _, handler := range []handlers.Handler{
		h.AnalyzeHandler, h.AskHandler, h.RateHandler,
		h.StatsHandler, h.HealthHandler, h.GetVersionHandler,
	} {
		if handler == nil {
			return ErrMissingHandler
		}
	}

	mw := r.middlewareTransport
	for _, m := range []middleware.Middleware{
		mw.PanicRecoverMiddleware,
		mw.RequestIDMiddleware,
		mw.CORSMiddleware,
		mw.MetricsMiddleware,
	} {
		if m != nil {
			router.Use(m.Middleware())
		}
	}

	router.Get(HealthPath, h.HealthHandler.Handle)
	router.Get(PingPath, h.HealthHandler.Handle)
	router.Get(VersionPath, h.GetVersionHandler.Handle)

	// Only the routes that reach the model provider spend quota.
	limited := func(handler fiber.Handler) []fiber.Handler {
		if mw.RateLimitMiddleware == nil {
			return []fiber.Handler{handler}
		}
		return []fiber.Handler{mw.RateLimitMiddleware.Middleware(), handler}
	}
	router.Post(AnalyzePath, limited(h.AnalyzeHandler.Handle)...)
	router.Post(AskPath, limited(h.AskHandler.Handle)...)

	router.Post(RatePath, h.RateHandler.Handle)
	router.Get(StatsPath, h.StatsHandler.Handle)
	return nil
}
