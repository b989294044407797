package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	KeyPrefix       = "ratelimit:ai:"
	UnknownIdentity = "unknown"

	DefaultLimit  = 20
	DefaultWindow = time.Hour
)

// Decision is the outcome of consuming one unit of quota.
type Decision struct {
	Allowed bool  `json:"allowed"`
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
	// RetryAfter is expressed in seconds and only set when Allowed is false.
	RetryAfter int `json:"retry_after,omitempty"`
}

func (d Decision) Remaining() int64 {
	if d.Current >= d.Limit {
		return 0
	}
	return d.Limit - d.Current
}

// Store keeps one counter per key.
//
// Consume must atomically increment the counter stored at key, set its expiry
// to ttl only when the increment created it, and report the post-increment
// count together with the key's remaining time to live. A non-positive ttl
// result means the store could not report one.
type Store interface {
	Consume(ctx context.Context, key string, ttl time.Duration) (count int64, remaining time.Duration, err error)
}

// WindowID maps t onto an epoch-aligned bucket of the given length.
func WindowID(t time.Time, window time.Duration) int64 {
	size := int64(window / time.Second)
	if size <= 0 {
		size = 1
	}
	return t.Unix() / size
}

// Key builds the counter key for identity in window windowID.
func Key(identity string, windowID int64) string {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = UnknownIdentity
	}
	return KeyPrefix + identity + ":" + strconv.FormatInt(windowID, 10)
}
