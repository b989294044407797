package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (m *Store) Consume(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	args := m.Called(ctx, key, ttl)
	count, ok := args.Get(0).(int64)
	if !ok && args.Get(0) != nil {
		return 0, 0, fmt.Errorf("expected int64, got %T", args.Get(0))
	}
	remaining, ok := args.Get(1).(time.Duration)
	if !ok && args.Get(1) != nil {
		return 0, 0, fmt.Errorf("expected time.Duration, got %T", args.Get(1))
	}
	return count, remaining, args.Error(2)
}
