package middleware

import (
	"strings"

	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/gofiber/fiber/v2"
)

var corsExposeHeaders = strings.Join([]string{
	common.RequestIDHeader,
	common.RateLimitLimitHeader,
	common.RateLimitRemainingHeader,
	common.RetryAfterHeader,
}, ", ")

type corsMiddleware struct {
	allowOrigins []string
	allowMethods string
	maxAge       string
}

func NewCORSMiddleware(allowOrigins []string) Middleware {
	return &corsMiddleware{
		allowOrigins: allowOrigins,
		allowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ", "),
		maxAge:       "600",
	}
}

func (m *corsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" || !m.allowed(origin) {
			return c.Next()
		}

		c.Set("Vary", "Origin")
		if hasStar(m.allowOrigins) {
			c.Set("Access-Control-Allow-Origin", "*")
		} else {
			c.Set("Access-Control-Allow-Origin", origin)
		}
		c.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Method() == fiber.MethodOptions && c.Get("Access-Control-Request-Method") != "" {
			c.Set("Access-Control-Allow-Methods", m.allowMethods)
			if reqHeaders := c.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				c.Set("Access-Control-Allow-Headers", reqHeaders)
			} else {
				c.Set("Access-Control-Allow-Headers", "Content-Type")
			}
			c.Set("Access-Control-Max-Age", m.maxAge)
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func (m *corsMiddleware) allowed(origin string) bool {
	for _, o := range m.allowOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func hasStar(arr []string) bool {
	for _, v := range arr {
		if v == "*" {
			return true
		}
	}
	return false
}
