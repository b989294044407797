package factory

import (
	"fmt"
	"strings"

	"github.com/betterhyq/LexPlain/pkg/infra/breaker"
	"github.com/betterhyq/LexPlain/pkg/infra/providers"
	"github.com/betterhyq/LexPlain/pkg/infra/providers/anthropic"
	"github.com/betterhyq/LexPlain/pkg/infra/providers/openai"
	"github.com/sirupsen/logrus"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	logger   *logrus.Logger
	settings breaker.Settings
	clients  map[string]providers.Client
}

// NewProviderLocator returns a locator whose clients are each guarded by their
// own circuit breaker built from settings. The breaker name is suffixed with
// the provider.
func NewProviderLocator(logger *logrus.Logger, settings breaker.Settings) ProviderLocator {
	l := &providerLocator{
		logger:   logger,
		settings: settings,
		clients:  make(map[string]providers.Client),
	}
	l.clients[ProviderOpenAI] = l.guard(ProviderOpenAI, openai.NewOpenaiClient())
	l.clients[ProviderAnthropic] = l.guard(ProviderAnthropic, anthropic.NewAnthropicClient())
	return l
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if name == "" {
		name = ProviderOpenAI
	}
	client, ok := f.clients[name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	return client, nil
}

func (f *providerLocator) guard(name string, client providers.Client) providers.Client {
	settings := f.settings
	if settings.Name == "" {
		settings.Name = "provider"
	}
	settings.Name = settings.Name + "-" + name
	return providers.NewGuardedClient(name, client, breaker.New(settings, f.logger))
}
