package middleware

import (
	"strconv"

	appRateLimit "github.com/betterhyq/LexPlain/pkg/app/ratelimit"
	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/betterhyq/LexPlain/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type rateLimitMiddleware struct {
	logger  *logrus.Logger
	limiter appRateLimit.Limiter
}

// NewRateLimitMiddleware charges one unit of the caller's quota before the
// handler runs and rejects the request with 429 once the quota is spent.
func NewRateLimitMiddleware(logger *logrus.Logger, limiter appRateLimit.Limiter) Middleware {
	return &rateLimitMiddleware{
		logger:  logger,
		limiter: limiter,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := utils.ClientIP(func(key string) string { return c.Get(key) })
		c.Locals(common.ClientIPKey, identity)

		decision := m.limiter.CheckAndConsume(c.UserContext(), identity)
		c.Locals(common.RateLimitKey, decision)

		c.Set(common.RateLimitLimitHeader, strconv.FormatInt(decision.Limit, 10))
		c.Set(common.RateLimitRemainingHeader, strconv.FormatInt(decision.Remaining(), 10))

		if !decision.Allowed {
			c.Set(common.RetryAfterHeader, strconv.Itoa(decision.RetryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       common.RateLimitedCode,
				"retry_after": decision.RetryAfter,
			})
		}
		return c.Next()
	}
}
