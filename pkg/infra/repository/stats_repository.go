package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/betterhyq/LexPlain/pkg/domain/stats"
	"github.com/go-redis/redis/v8"
)

var statsKeys = []string{
	stats.AnalysesKey,
	stats.RatingsCountKey,
	stats.RatingsSumKey,
	stats.RatingsPositiveKey,
}

type StatsRepository struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) stats.Store {
	return &StatsRepository{
		client: client,
	}
}

func (r *StatsRepository) IncrAnalyses(ctx context.Context) error {
	if err := r.client.Incr(ctx, stats.AnalysesKey).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", stats.AnalysesKey, err)
	}
	return nil
}

func (r *StatsRepository) AddRating(ctx context.Context, score int) error {
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, stats.RatingsCountKey)
	pipe.IncrBy(ctx, stats.RatingsSumKey, int64(score))
	if stats.IsPositive(score) {
		pipe.Incr(ctx, stats.RatingsPositiveKey)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute rating pipeline: %w", err)
	}
	return nil
}

func (r *StatsRepository) Totals(ctx context.Context) (stats.Totals, error) {
	values, err := r.client.MGet(ctx, statsKeys...).Result()
	if err != nil {
		return stats.Totals{}, fmt.Errorf("failed to read stats counters: %w", err)
	}
	if len(values) != len(statsKeys) {
		return stats.Totals{}, fmt.Errorf("unexpected stats counters length: %d", len(values))
	}

	parsed := make([]int64, len(values))
	for i, v := range values {
		n, err := parseCounter(v)
		if err != nil {
			return stats.Totals{}, fmt.Errorf("invalid value for %s: %w", statsKeys[i], err)
		}
		parsed[i] = n
	}

	return stats.Totals{
		Analyses:      parsed[0],
		RatingsCount:  parsed[1],
		RatingsSum:    parsed[2],
		PositiveCount: parsed[3],
	}, nil
}

// parseCounter treats a missing key as zero.
func parseCounter(v interface{}) (int64, error) {
	switch value := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(value, 10, 64)
	case int64:
		return value, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
