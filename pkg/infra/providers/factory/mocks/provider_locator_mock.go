package mocks

import (
	"fmt"

	"github.com/betterhyq/LexPlain/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type ProviderLocator struct {
	mock.Mock
}

func (m *ProviderLocator) Get(provider string) (providers.Client, error) {
	args := m.Called(provider)
	client, ok := args.Get(0).(providers.Client)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected providers.Client, got %T", args.Get(0))
	}
	return client, args.Error(1)
}
