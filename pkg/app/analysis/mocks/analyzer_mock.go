package mocks

import (
	"context"
	"fmt"

	"github.com/betterhyq/LexPlain/pkg/domain/analysis"
	"github.com/stretchr/testify/mock"
)

type Analyzer struct {
	mock.Mock
}

func (m *Analyzer) Analyze(ctx context.Context, text, locale string) (*analysis.Result, error) {
	args := m.Called(ctx, text, locale)
	result, ok := args.Get(0).(*analysis.Result)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *analysis.Result, got %T", args.Get(0))
	}
	return result, args.Error(1)
}

func (m *Analyzer) Ask(ctx context.Context, q analysis.Question) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}
