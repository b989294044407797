package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

// Client is the process-wide handle on the shared counter store.
type Client interface {
	RedisClient() *redis.Client
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Host        string
	Port        int
	Password    string
	DB          int
	TLS         bool
	DialTimeout time.Duration
	OpTimeout   time.Duration
}

type client struct {
	redisClient *redis.Client
}

// NewClient never fails on an unreachable server. The pool dials lazily and
// redials on the next command, so callers that fail open keep serving while
// Redis is down.
func NewClient(config Config, logger *logrus.Logger) Client {
	options := &redis.Options{
		Addr:        fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:    config.Password,
		DB:          config.DB,
		DialTimeout: config.DialTimeout,
	}
	if config.OpTimeout > 0 {
		options.ReadTimeout = config.OpTimeout
		options.WriteTimeout = config.OpTimeout
	}
	if config.TLS {
		options.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: config.Host,
		}
	}

	c := &client{redisClient: redis.NewClient(options)}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	fields := logrus.Fields{
		"host": config.Host,
		"port": config.Port,
		"db":   config.DB,
	}
	if err := c.Ping(ctx); err != nil {
		logger.WithFields(fields).WithError(err).Warn("redis unreachable at startup, rate limiting will fail open until it recovers")
		return c
	}
	logger.WithFields(fields).Info("redis connected successfully")
	return c
}

func (c *client) RedisClient() *redis.Client {
	return c.redisClient
}

func (c *client) Ping(ctx context.Context) error {
	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (c *client) Close() error {
	return c.redisClient.Close()
}
