package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	analysismocks "github.com/betterhyq/LexPlain/pkg/app/analysis/mocks"
	statsmocks "github.com/betterhyq/LexPlain/pkg/app/stats/mocks"
	"github.com/betterhyq/LexPlain/pkg/domain"
	"github.com/betterhyq/LexPlain/pkg/domain/analysis"
	"github.com/betterhyq/LexPlain/pkg/domain/stats"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const contractText = "The tenant shall pay rent monthly and may not sublet the premises."

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	}
	return resp.StatusCode, out
}

func TestAnalyzeHandler_Success(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)
	counters := new(statsmocks.Counters)
	result := &analysis.Result{
		Title:     "Lease",
		RiskScore: analysis.RiskMedium,
		Summary:   "A standard lease.",
		Actions:   []string{"Check the deposit clause"},
		Clauses:   []analysis.Clause{{Title: "Rent", Summary: "Monthly", Risk: analysis.RiskLow, Detail: "Due on the 1st"}},
	}
	analyzer.On("Analyze", mock.Anything, contractText, "zh-CN").Return(result, nil).Once()
	counters.On("RecordAnalysis", mock.Anything).Return().Once()

	app := fiber.New()
	app.Post("/api/analyze", NewAnalyzeHandler(newTestLogger(), analyzer, counters).Handle)

	body := fmt.Sprintf(`{"text":%q,"locale":"zh-CN"}`, contractText)
	status, out := doJSON(t, app, fiber.MethodPost, "/api/analyze", body, nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Lease", out["title"])
	assert.Equal(t, "medium", out["riskScore"])
	analyzer.AssertExpectations(t)
	counters.AssertExpectations(t)
}

func TestAnalyzeHandler_LocaleFromAcceptLanguage(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)
	counters := new(statsmocks.Counters)
	analyzer.On("Analyze", mock.Anything, contractText, "zh-CN").Return(&analysis.Result{}, nil).Once()
	counters.On("RecordAnalysis", mock.Anything).Return().Once()

	app := fiber.New()
	app.Post("/api/analyze", NewAnalyzeHandler(newTestLogger(), analyzer, counters).Handle)

	body := fmt.Sprintf(`{"text":%q}`, contractText)
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/analyze", body, map[string]string{
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	})

	assert.Equal(t, fiber.StatusOK, status)
	analyzer.AssertExpectations(t)
}

func TestAnalyzeHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "too short", err: domain.ErrTextTooShort, wantStatus: fiber.StatusBadRequest},
		{name: "not configured", err: domain.ErrProviderNotConfigured, wantStatus: fiber.StatusServiceUnavailable},
		{name: "provider failure", err: fmt.Errorf("%w: boom", domain.ErrProviderFailure), wantStatus: fiber.StatusBadGateway},
		{name: "empty response", err: domain.ErrEmptyModelResponse, wantStatus: fiber.StatusBadGateway},
		{name: "invalid output", err: domain.NewInvalidOutputError("missing summary"), wantStatus: fiber.StatusBadGateway},
		{name: "unexpected", err: errors.New("surprise"), wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := new(analysismocks.Analyzer)
			counters := new(statsmocks.Counters)
			analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			app := fiber.New()
			app.Post("/api/analyze", NewAnalyzeHandler(newTestLogger(), analyzer, counters).Handle)

			status, out := doJSON(t, app, fiber.MethodPost, "/api/analyze", `{"text":"anything"}`, nil)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, out["error"])
			counters.AssertNotCalled(t, "RecordAnalysis", mock.Anything)
		})
	}
}

func TestAnalyzeHandler_MalformedBody(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)
	counters := new(statsmocks.Counters)

	app := fiber.New()
	app.Post("/api/analyze", NewAnalyzeHandler(newTestLogger(), analyzer, counters).Handle)

	status, out := doJSON(t, app, fiber.MethodPost, "/api/analyze", `{"text":`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body.", out["error"])
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
}

func TestAskHandler(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)
	analyzer.On("Ask", mock.Anything, mock.MatchedBy(func(q analysis.Question) bool {
		return q.Question == "Can I sublet?" && q.Summary == "A lease." && len(q.Clauses) == 1
	})).Return("No, clause 4 forbids it.", nil).Once()

	app := fiber.New()
	app.Post("/api/ask", NewAskHandler(newTestLogger(), analyzer).Handle)

	body := `{"question":"Can I sublet?","summary":"A lease.","clauses":[{"title":"Sublet","summary":"Forbidden"}]}`
	status, out := doJSON(t, app, fiber.MethodPost, "/api/ask", body, nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "No, clause 4 forbids it.", out["answer"])
	analyzer.AssertExpectations(t)
}

func TestAskHandler_MalformedBody(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)

	app := fiber.New()
	app.Post("/api/ask", NewAskHandler(newTestLogger(), analyzer).Handle)

	status, out := doJSON(t, app, fiber.MethodPost, "/api/ask", `{"question":`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body.", out["error"])
	analyzer.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestAskHandler_MissingQuestion(t *testing.T) {
	analyzer := new(analysismocks.Analyzer)

	app := fiber.New()
	app.Post("/api/ask", NewAskHandler(newTestLogger(), analyzer).Handle)

	status, out := doJSON(t, app, fiber.MethodPost, "/api/ask", `{"summary":"A lease."}`, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Missing question or document context.", out["error"])
	analyzer.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}

func TestRateHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		score      int
		recordErr  error
		wantStatus int
	}{
		{name: "number", body: `{"score":5}`, score: 5, wantStatus: fiber.StatusOK},
		{name: "numeric string", body: `{"score":"4"}`, score: 4, wantStatus: fiber.StatusOK},
		{name: "out of range", body: `{"score":9}`, score: 9, recordErr: domain.ErrInvalidScore, wantStatus: fiber.StatusBadRequest},
		{name: "not a number", body: `{"score":"great"}`, wantStatus: fiber.StatusBadRequest},
		{name: "fraction", body: `{"score":3.5}`, wantStatus: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counters := new(statsmocks.Counters)
			if tt.score != 0 {
				counters.On("RecordRating", mock.Anything, tt.score).Return(tt.recordErr).Once()
			}

			app := fiber.New()
			app.Post("/api/rate", NewRateHandler(newTestLogger(), counters).Handle)

			status, out := doJSON(t, app, fiber.MethodPost, "/api/rate", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == fiber.StatusOK {
				assert.Equal(t, true, out["ok"])
			} else {
				assert.Equal(t, "Score must be between 1 and 5", out["error"])
			}
			counters.AssertExpectations(t)
		})
	}
}

func TestStatsHandler(t *testing.T) {
	counters := new(statsmocks.Counters)
	counters.On("GetStats", mock.Anything).Return(stats.Stats{
		TotalAnalyses: 7,
		TotalRatings:  4,
		AverageRating: 4.3,
		PositiveCount: 3,
	}, nil).Once()

	app := fiber.New()
	app.Get("/api/stats", NewStatsHandler(newTestLogger(), counters).Handle)

	status, out := doJSON(t, app, fiber.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(7), out["totalAnalyses"])
	assert.Equal(t, float64(4), out["totalRatings"])
	assert.Equal(t, 4.3, out["averageRating"])
	assert.Equal(t, float64(3), out["positiveCount"])
}

func TestStatsHandler_StoreFailure(t *testing.T) {
	counters := new(statsmocks.Counters)
	counters.On("GetStats", mock.Anything).
		Return(stats.Stats{}, fmt.Errorf("%w: dial tcp: connection refused", domain.ErrStoreUnavailable)).Once()

	app := fiber.New()
	app.Get("/api/stats", NewStatsHandler(newTestLogger(), counters).Handle)

	status, out := doJSON(t, app, fiber.MethodGet, "/api/stats", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "Failed to load stats", out["error"])
	assert.NotContains(t, out, "totalAnalyses")
}

func TestHealthAndVersionHandlers(t *testing.T) {
	app := fiber.New()
	app.Get("/health", NewHealthHandler(newTestLogger()).Handle)
	app.Get("/api/v1/version", NewGetVersionHandler(newTestLogger()).Handle)

	status, out := doJSON(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", out["status"])

	status, out = doJSON(t, app, fiber.MethodGet, "/api/v1/version", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "LexPlain", out["app_name"])
}
