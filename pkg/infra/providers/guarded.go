package providers

import (
	"context"
	"time"

	"github.com/betterhyq/LexPlain/pkg/infra/breaker"
	"github.com/betterhyq/LexPlain/pkg/infra/prometheus"
)

type guardedClient struct {
	name    string
	inner   Client
	breaker breaker.Breaker
}

// NewGuardedClient runs every call through b and records its latency.
func NewGuardedClient(name string, inner Client, b breaker.Breaker) Client {
	return &guardedClient{
		name:    name,
		inner:   inner,
		breaker: b,
	}
}

func (g *guardedClient) Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error) {
	start := time.Now()

	var resp *CompletionResponse
	err := g.breaker.Execute(func() error {
		var err error
		resp, err = g.inner.Ask(ctx, config, prompt)
		return err
	})

	if prometheus.Config.EnableProviderLatency {
		result := "success"
		switch {
		case breaker.IsOpen(err):
			result = "rejected"
		case err != nil:
			result = "error"
		}
		prometheus.ProviderLatency.WithLabelValues(g.name, result).
			Observe(float64(time.Since(start).Milliseconds()))
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}
