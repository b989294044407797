package repository

import (
	"context"
	"sync"
	"time"

	"github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	"github.com/betterhyq/LexPlain/pkg/domain/stats"
)

// TimeProvider lets tests move the memory store's clock.
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

type memoryEntry struct {
	value     int64
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryRepository is an in-process counter store used when no Redis is
// configured. It implements both ratelimit.Store and stats.Store and is only
// correct for a single instance.
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   TimeProvider
}

func NewMemoryRepository(clock TimeProvider) *MemoryRepository {
	if clock == nil {
		clock = systemTime{}
	}
	return &MemoryRepository{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

var (
	_ ratelimit.Store = (*MemoryRepository)(nil)
	_ stats.Store     = (*MemoryRepository)(nil)
)

// StartJanitor drops expired keys every interval until ctx is cancelled.
func (m *MemoryRepository) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Sweep removes every expired key and reports how many were dropped.
func (m *MemoryRepository) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryRepository) Consume(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		e = memoryEntry{}
	}
	e.value++
	if e.value == 1 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e

	var remaining time.Duration
	if !e.expiresAt.IsZero() {
		// Redis reports TTL in whole seconds, rounded down.
		remaining = e.expiresAt.Sub(now).Truncate(time.Second)
	}
	return e.value, remaining, nil
}

func (m *MemoryRepository) IncrAnalyses(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrLocked(stats.AnalysesKey, 1)
	return nil
}

func (m *MemoryRepository) AddRating(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incrLocked(stats.RatingsCountKey, 1)
	m.incrLocked(stats.RatingsSumKey, int64(score))
	if stats.IsPositive(score) {
		m.incrLocked(stats.RatingsPositiveKey, 1)
	}
	return nil
}

func (m *MemoryRepository) Totals(ctx context.Context) (stats.Totals, error) {
	if err := ctx.Err(); err != nil {
		return stats.Totals{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return stats.Totals{
		Analyses:      m.entries[stats.AnalysesKey].value,
		RatingsCount:  m.entries[stats.RatingsCountKey].value,
		RatingsSum:    m.entries[stats.RatingsSumKey].value,
		PositiveCount: m.entries[stats.RatingsPositiveKey].value,
	}, nil
}

func (m *MemoryRepository) incrLocked(key string, delta int64) {
	e := m.entries[key]
	e.value += delta
	m.entries[key] = e
}
