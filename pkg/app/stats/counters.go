package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/betterhyq/LexPlain/pkg/domain"
	domainStats "github.com/betterhyq/LexPlain/pkg/domain/stats"
	"github.com/betterhyq/LexPlain/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

// Counters records usage and satisfaction and renders the aggregate view.
// Writes are best effort and never fail the caller; reads surface store
// failures so an outage is not mistaken for an empty store.
type Counters interface {
	RecordAnalysis(ctx context.Context)
	RecordRating(ctx context.Context, score int) error
	GetStats(ctx context.Context) (domainStats.Stats, error)
}

type counters struct {
	logger  *logrus.Logger
	store   domainStats.Store
	timeout time.Duration
}

func NewCounters(logger *logrus.Logger, store domainStats.Store, timeout time.Duration) Counters {
	return &counters{
		logger:  logger,
		store:   store,
		timeout: timeout,
	}
}

func (c *counters) RecordAnalysis(ctx context.Context) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.store.IncrAnalyses(ctx); err != nil {
		prometheus.StatsWriteFailures.WithLabelValues("analyses").Inc()
		c.logger.WithError(err).Warn("failed to record analysis")
	}
}

func (c *counters) RecordRating(ctx context.Context, score int) error {
	if !domainStats.ValidScore(score) {
		return domain.ErrInvalidScore
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.store.AddRating(ctx, score); err != nil {
		prometheus.StatsWriteFailures.WithLabelValues("ratings").Inc()
		c.logger.WithError(err).WithField("score", score).Warn("failed to record rating")
	}
	return nil
}

func (c *counters) GetStats(ctx context.Context) (domainStats.Stats, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	totals, err := c.store.Totals(ctx)
	if err != nil {
		c.logger.WithError(err).Error("failed to load stats")
		return domainStats.Stats{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return totals.Stats(), nil
}

func (c *counters) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
