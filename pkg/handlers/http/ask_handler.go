package http

import (
	"github.com/betterhyq/LexPlain/pkg/app/analysis"
	"github.com/betterhyq/LexPlain/pkg/handlers/http/request"
	"github.com/betterhyq/LexPlain/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AskResponse struct {
	Answer string `json:"answer"`
}

type askHandler struct {
	logger   *logrus.Logger
	analyzer analysis.Analyzer
}

func NewAskHandler(logger *logrus.Logger, analyzer analysis.Analyzer) Handler {
	return &askHandler{
		logger:   logger,
		analyzer: analyzer,
	}
}

// Handle answers a follow-up question about a previously analysed document.
// POST /api/ask
func (h *askHandler) Handle(c *fiber.Ctx) error {
	var req request.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, invalidBodyMessage)
	}
	if err := req.Validate(); err != nil {
		return writeError(c, h.logger, err)
	}
	if req.Locale == "" {
		req.Locale = utils.PreferredLanguage(c.Get(fiber.HeaderAcceptLanguage))
	}

	answer, err := h.analyzer.Ask(c.UserContext(), req.ToQuestion())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(AskResponse{Answer: answer})
}
