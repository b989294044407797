package middleware

import (
	"github.com/betterhyq/LexPlain/pkg/common"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

type requestIDMiddleware struct{}

// NewRequestIDMiddleware keeps a caller supplied X-Request-ID or mints a new
// one, and echoes it on the response.
func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(common.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		} else {
			id = fiberUtils.CopyString(id)
		}
		c.Locals(common.RequestIDKey, id)
		c.Set(common.RequestIDHeader, id)
		return c.Next()
	}
}
