package http

import (
	"errors"

	"github.com/betterhyq/LexPlain/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const invalidBodyMessage = "Invalid request body."

type ErrorResponse struct {
	Error string `json:"error"`
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}

// writeError maps domain failures onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500 without leaking details.
func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrTextTooShort):
		return errorJSON(c, fiber.StatusBadRequest, "Document text is too short.")
	case errors.Is(err, domain.ErrMissingQuestion):
		return errorJSON(c, fiber.StatusBadRequest, "Missing question or document context.")
	case errors.Is(err, domain.ErrInvalidScore):
		return errorJSON(c, fiber.StatusBadRequest, "Score must be between 1 and 5")
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "AI provider is not configured.")
	case errors.Is(err, domain.ErrProviderFailure),
		errors.Is(err, domain.ErrEmptyModelResponse),
		domain.IsInvalidOutput(err):
		return errorJSON(c, fiber.StatusBadGateway, "AI analysis failed. Please try again.")
	default:
		logger.WithError(err).Error("unhandled request error")
		return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
