package http

import (
	"github.com/betterhyq/LexPlain/pkg/app/stats"
	"github.com/betterhyq/LexPlain/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type rateHandler struct {
	logger   *logrus.Logger
	counters stats.Counters
}

func NewRateHandler(logger *logrus.Logger, counters stats.Counters) Handler {
	return &rateHandler{
		logger:   logger,
		counters: counters,
	}
}

// Handle records a 1 to 5 satisfaction score.
// POST /api/rate
func (h *rateHandler) Handle(c *fiber.Ctx) error {
	req, err := request.ParseRateRequest(c.Body())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if err := h.counters.RecordRating(c.UserContext(), req.Score); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
