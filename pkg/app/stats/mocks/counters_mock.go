package mocks

import (
	"context"
	"fmt"

	"github.com/betterhyq/LexPlain/pkg/domain/stats"
	"github.com/stretchr/testify/mock"
)

type Counters struct {
	mock.Mock
}

func (m *Counters) RecordAnalysis(ctx context.Context) {
	m.Called(ctx)
}

func (m *Counters) RecordRating(ctx context.Context, score int) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *Counters) GetStats(ctx context.Context) (stats.Stats, error) {
	args := m.Called(ctx)
	s, ok := args.Get(0).(stats.Stats)
	if !ok && args.Get(0) != nil {
		return stats.Stats{}, fmt.Errorf("expected stats.Stats, got %T", args.Get(0))
	}
	return s, args.Error(1)
}
