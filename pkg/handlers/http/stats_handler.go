package http

import (
	"github.com/betterhyq/LexPlain/pkg/app/stats"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type statsHandler struct {
	logger   *logrus.Logger
	counters stats.Counters
}

func NewStatsHandler(logger *logrus.Logger, counters stats.Counters) Handler {
	return &statsHandler{
		logger:   logger,
		counters: counters,
	}
}

// Handle renders the aggregate usage counters. A store failure is a 500,
// never a page of zeros.
// GET /api/stats
func (h *statsHandler) Handle(c *fiber.Ctx) error {
	s, err := h.counters.GetStats(c.UserContext())
	if err != nil {
		h.logger.WithError(err).Error("failed to load stats")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to load stats")
	}
	return c.Status(fiber.StatusOK).JSON(s)
}
