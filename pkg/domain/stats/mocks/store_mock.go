package mocks

import (
	"context"
	"fmt"

	"github.com/betterhyq/LexPlain/pkg/domain/stats"
	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (m *Store) IncrAnalyses(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) AddRating(ctx context.Context, score int) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *Store) Totals(ctx context.Context) (stats.Totals, error) {
	args := m.Called(ctx)
	totals, ok := args.Get(0).(stats.Totals)
	if !ok && args.Get(0) != nil {
		return stats.Totals{}, fmt.Errorf("expected stats.Totals, got %T", args.Get(0))
	}
	return totals, args.Error(1)
}
