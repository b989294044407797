package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	analysismocks "github.com/betterhyq/LexPlain/pkg/app/analysis/mocks"
	appRateLimit "github.com/betterhyq/LexPlain/pkg/app/ratelimit"
	appStats "github.com/betterhyq/LexPlain/pkg/app/stats"
	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/betterhyq/LexPlain/pkg/domain/analysis"
	handlers "github.com/betterhyq/LexPlain/pkg/handlers/http"
	"github.com/betterhyq/LexPlain/pkg/infra/repository"
	"github.com/betterhyq/LexPlain/pkg/middleware"
	"github.com/betterhyq/LexPlain/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const documentText = "The employee agrees not to compete with the employer for two years."

type testApp struct {
	app      *fiber.App
	analyzer *analysismocks.Analyzer
}

func newTestApp(t *testing.T, limit int64) *testApp {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := repository.NewMemoryRepository(nil)
	limiter := appRateLimit.NewLimiter(logger, store, appRateLimit.Options{
		Limit:  limit,
		Window: time.Hour,
	})
	counters := appStats.NewCounters(logger, store, 0)
	analyzer := new(analysismocks.Analyzer)

	mw := middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		CORSMiddleware:         middleware.NewCORSMiddleware([]string{"*"}),
		RateLimitMiddleware:    middleware.NewRateLimitMiddleware(logger, limiter),
	}
	ht := handlers.HandlerTransport{
		AnalyzeHandler:    handlers.NewAnalyzeHandler(logger, analyzer, counters),
		AskHandler:        handlers.NewAskHandler(logger, analyzer),
		RateHandler:       handlers.NewRateHandler(logger, counters),
		StatsHandler:      handlers.NewStatsHandler(logger, counters),
		HealthHandler:     handlers.NewHealthHandler(logger),
		GetVersionHandler: handlers.NewGetVersionHandler(logger),
	}

	app := fiber.New()
	require.NoError(t, router.NewAPIRouter(mw, ht).BuildRoutes(app))
	return &testApp{app: app, analyzer: analyzer}
}

func (a *testApp) do(t *testing.T, method, path, body, ip string) (*httptestResponse, error) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	out := &httptestResponse{Status: resp.StatusCode, Header: resp.Header.Get}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out.Body); err != nil {
			return nil, fmt.Errorf("decode %q: %w", raw, err)
		}
	}
	return out, nil
}

type httptestResponse struct {
	Status int
	Header func(string) string
	Body   map[string]interface{}
}

func TestAPIRouter_AnalyzeIsRateLimited(t *testing.T) {
	ta := newTestApp(t, 3)
	ta.analyzer.On("Analyze", mock.Anything, documentText, mock.Anything).
		Return(&analysis.Result{Title: "NDA", RiskScore: analysis.RiskHigh}, nil)

	body := fmt.Sprintf(`{"text":%q}`, documentText)
	for i := 0; i < 3; i++ {
		resp, err := ta.do(t, fiber.MethodPost, router.AnalyzePath, body, "203.0.113.7")
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.Status, "request %d", i+1)
		assert.Equal(t, "3", resp.Header(common.RateLimitLimitHeader))
		assert.Equal(t, fmt.Sprint(2-i), resp.Header(common.RateLimitRemainingHeader))
	}

	resp, err := ta.do(t, fiber.MethodPost, router.AnalyzePath, body, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.Status)
	assert.Equal(t, common.RateLimitedCode, resp.Body["error"])
	assert.NotEmpty(t, resp.Header(common.RetryAfterHeader))
	assert.Positive(t, resp.Body["retry_after"])
	ta.analyzer.AssertNumberOfCalls(t, "Analyze", 3)

	// Another caller still has its own quota.
	resp, err = ta.do(t, fiber.MethodPost, router.AnalyzePath, body, "198.51.100.1")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.Status)

	stats, err := ta.do(t, fiber.MethodGet, router.StatsPath, "", "")
	require.NoError(t, err)
	assert.Equal(t, float64(4), stats.Body["totalAnalyses"])
}

func TestAPIRouter_AskSharesQuotaWithAnalyze(t *testing.T) {
	ta := newTestApp(t, 1)
	ta.analyzer.On("Ask", mock.Anything, mock.Anything).Return("Yes.", nil)

	body := `{"question":"Is this binding?","summary":"An NDA."}`
	resp, err := ta.do(t, fiber.MethodPost, router.AskPath, body, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "Yes.", resp.Body["answer"])

	resp, err = ta.do(t, fiber.MethodPost, router.AnalyzePath, `{"text":"x"}`, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.Status)
}

func TestAPIRouter_RateAndStatsAreNotLimited(t *testing.T) {
	ta := newTestApp(t, 1)

	for _, score := range []string{"5", `"5"`, "5", "2"} {
		resp, err := ta.do(t, fiber.MethodPost, router.RatePath, `{"score":`+score+`}`, "203.0.113.1")
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.Status)
	}

	resp, err := ta.do(t, fiber.MethodPost, router.RatePath, `{"score":0}`, "203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)

	resp, err = ta.do(t, fiber.MethodGet, router.StatsPath, "", "203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, float64(0), resp.Body["totalAnalyses"])
	assert.Equal(t, float64(4), resp.Body["totalRatings"])
	assert.Equal(t, 4.3, resp.Body["averageRating"])
	assert.Equal(t, float64(3), resp.Body["positiveCount"])
}

func TestAPIRouter_SystemRoutes(t *testing.T) {
	ta := newTestApp(t, 1)

	for _, path := range []string{router.HealthPath, router.PingPath, router.VersionPath} {
		resp, err := ta.do(t, fiber.MethodGet, path, "", "")
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.Status, path)
		assert.NotEmpty(t, resp.Header(common.RequestIDHeader), path)
	}
}

func TestAPIRouter_MissingHandler(t *testing.T) {
	err := router.NewAPIRouter(middleware.Transport{}, handlers.HandlerTransport{}).BuildRoutes(fiber.New())
	assert.ErrorIs(t, err, router.ErrMissingHandler)
}
