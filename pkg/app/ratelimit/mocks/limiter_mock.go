package mocks

import (
	"context"

	"github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	"github.com/stretchr/testify/mock"
)

type Limiter struct {
	mock.Mock
}

func (m *Limiter) CheckAndConsume(ctx context.Context, identity string) ratelimit.Decision {
	args := m.Called(ctx, identity)
	decision, _ := args.Get(0).(ratelimit.Decision) //nolint:errcheck
	return decision
}
