package http

import (
	"github.com/betterhyq/LexPlain/pkg/app/analysis"
	"github.com/betterhyq/LexPlain/pkg/app/stats"
	"github.com/betterhyq/LexPlain/pkg/handlers/http/request"
	"github.com/betterhyq/LexPlain/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type analyzeHandler struct {
	logger   *logrus.Logger
	analyzer analysis.Analyzer
	counters stats.Counters
}

func NewAnalyzeHandler(
	logger *logrus.Logger,
	analyzer analysis.Analyzer,
	counters stats.Counters,
) Handler {
	return &analyzeHandler{
		logger:   logger,
		analyzer: analyzer,
		counters: counters,
	}
}

// Handle explains a legal document in plain language.
// POST /api/analyze
func (h *analyzeHandler) Handle(c *fiber.Ctx) error {
	// A well-formed body with a missing or non-string text is reported as
	// too short by the analyzer.
	req, err := request.ParseAnalyzeRequest(c.Body())
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, invalidBodyMessage)
	}

	locale := req.Locale
	if locale == "" {
		locale = utils.PreferredLanguage(c.Get(fiber.HeaderAcceptLanguage))
	}

	result, err := h.analyzer.Analyze(c.UserContext(), req.Text, locale)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	h.counters.RecordAnalysis(c.UserContext())
	return c.Status(fiber.StatusOK).JSON(result)
}
