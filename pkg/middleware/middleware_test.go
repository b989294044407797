package middleware_test

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/betterhyq/LexPlain/pkg/app/ratelimit/mocks"
	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	"github.com/betterhyq/LexPlain/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func okHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func TestRateLimitMiddleware_Allowed(t *testing.T) {
	limiter := new(mocks.Limiter)
	limiter.On("CheckAndConsume", mock.Anything, "203.0.113.7").
		Return(ratelimit.Decision{Allowed: true, Current: 3, Limit: 20})

	app := fiber.New()
	app.Post("/api/analyze", middleware.NewRateLimitMiddleware(testLogger(), limiter).Middleware(), okHandler)

	req := httptest.NewRequest(fiber.MethodPost, "/api/analyze", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "20", resp.Header.Get(common.RateLimitLimitHeader))
	assert.Equal(t, "17", resp.Header.Get(common.RateLimitRemainingHeader))
	assert.Empty(t, resp.Header.Get(common.RetryAfterHeader))
	limiter.AssertExpectations(t)
}

func TestRateLimitMiddleware_Denied(t *testing.T) {
	limiter := new(mocks.Limiter)
	limiter.On("CheckAndConsume", mock.Anything, "unknown").
		Return(ratelimit.Decision{Allowed: false, Current: 21, Limit: 20, RetryAfter: 1234})

	called := false
	app := fiber.New()
	app.Post("/api/analyze", middleware.NewRateLimitMiddleware(testLogger(), limiter).Middleware(), func(c *fiber.Ctx) error {
		called = true
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/analyze", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1234", resp.Header.Get(common.RetryAfterHeader))
	assert.Equal(t, "0", resp.Header.Get(common.RateLimitRemainingHeader))
	assert.False(t, called)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body["error"])
	assert.EqualValues(t, 1234, body["retry_after"])
}

func TestRateLimitMiddleware_FailOpenPassesThrough(t *testing.T) {
	limiter := new(mocks.Limiter)
	limiter.On("CheckAndConsume", mock.Anything, "198.51.100.1").
		Return(ratelimit.Decision{Allowed: true, Current: 0, Limit: 20})

	app := fiber.New()
	app.Post("/api/ask", middleware.NewRateLimitMiddleware(testLogger(), limiter).Middleware(), okHandler)

	req := httptest.NewRequest(fiber.MethodPost, "/api/ask", nil)
	req.Header.Set("X-Real-IP", "198.51.100.1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "20", resp.Header.Get(common.RateLimitRemainingHeader))
}

func TestPanicRecoverMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(testLogger()).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("kaboom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRequestIDMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewRequestIDMiddleware().Middleware())
	app.Get("/", func(c *fiber.Ctx) error {
		id, _ := c.Locals(common.RequestIDKey).(string) //nolint:errcheck
		return c.SendString(id)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(common.RequestIDHeader)
	_, err = uuid.Parse(generated)
	assert.NoError(t, err)

	existing := uuid.NewString()
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(common.RequestIDHeader, existing)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, existing, resp.Header.Get(common.RequestIDHeader))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(common.RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(common.RequestIDHeader))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewCORSMiddleware([]string{"https://lexplain.app"}).Middleware())
	app.Post("/api/rate", okHandler)

	req := httptest.NewRequest(fiber.MethodOptions, "/api/rate", nil)
	req.Header.Set("Origin", "https://lexplain.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://lexplain.app", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestCORSMiddleware_UnknownOrigin(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewCORSMiddleware([]string{"https://lexplain.app"}).Middleware())
	app.Post("/api/rate", okHandler)

	req := httptest.NewRequest(fiber.MethodPost, "/api/rate", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewMetricsMiddleware(testLogger()).Middleware())
	app.Get("/health", func(c *fiber.Ctx) error {
		_, ok := c.Locals(common.LatencyContextKey).(interface{ IsZero() bool })
		assert.True(t, ok)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMetricsMiddleware_AccessLogMatchesEachRequest(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	app := fiber.New()
	app.Use(middleware.NewRequestIDMiddleware().Middleware())
	app.Use(middleware.NewMetricsMiddleware(logger).Middleware())
	app.Get("/docs/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	const requests = 25
	want := make(map[string]string, requests)
	for i := 0; i < requests; i++ {
		id := uuid.NewString()
		path := fmt.Sprintf("/docs/%d", i)
		want[id] = path

		req := httptest.NewRequest(fiber.MethodGet, path, nil)
		req.Header.Set(common.RequestIDHeader, id)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		req.Header.Set(fiber.HeaderUserAgent, "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	require.Eventually(t, func() bool {
		return len(hook.AllEntries()) == requests
	}, 2*time.Second, 10*time.Millisecond)

	seen := make(map[string]bool, requests)
	for _, entry := range hook.AllEntries() {
		id, _ := entry.Data["request_id"].(string) //nolint:errcheck
		path, _ := entry.Data["path"].(string)     //nolint:errcheck
		require.Contains(t, want, id)
		assert.Equal(t, want[id], path)
		assert.Equal(t, "203.0.113."+path[len("/docs/"):], entry.Data["client_ip"])
		assert.Equal(t, "Computer", entry.Data["device"])
		seen[id] = true
	}
	assert.Len(t, seen, requests)
}
