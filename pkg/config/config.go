package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type MetricsConfig struct {
	Enabled               bool `mapstructure:"enabled"`
	EnableLatency         bool `mapstructure:"enable_latency"`
	EnableProviderLatency bool `mapstructure:"enable_provider_latency"`
}

type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	TLS         bool          `mapstructure:"tls"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	OpTimeout   time.Duration `mapstructure:"op_timeout"`
}

const (
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

type RateLimitConfig struct {
	Limit  int64         `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type ProviderConfig struct {
	Name             string        `mapstructure:"name"`
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxInputChars    int           `mapstructure:"max_input_chars"`
	AnalyzeMaxTokens int           `mapstructure:"analyze_max_tokens"`
	AskMaxTokens     int           `mapstructure:"ask_max_tokens"`
	Temperature      float64       `mapstructure:"temperature"`
}

type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

var globalConfig Config

// envAliases lets deployments keep the variable names the hosted service
// already used.
var envAliases = map[string][]string{
	"provider.api_key":  {"PROVIDER_API_KEY", "CHATRHINO_API_KEY", "DEEPSEEK_API_KEY"},
	"provider.base_url": {"PROVIDER_BASE_URL", "CHATRHINO_API_URL"},
	"provider.model":    {"PROVIDER_MODEL", "CHATRHINO_MODEL"},
	"redis.password":    {"REDIS_PASSWORD"},
}

func Load(configPath string) error {
	cfg, err := LoadFrom(viper.New(), configPath)
	if err != nil {
		return err
	}
	globalConfig = *cfg
	return nil
}

// LoadFrom reads config.yaml into v. A missing file is not an error: defaults
// and the environment still apply.
func LoadFrom(v *viper.Viper, configPath string) (*Config, error) {
	setDefaultValues(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file config.yaml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.body_limit", 4*1024*1024)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)
	v.SetDefault("metrics.enable_provider_latency", true)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.dial_timeout", "2s")
	v.SetDefault("redis.op_timeout", "500ms")

	v.SetDefault("store.driver", StoreDriverRedis)
	v.SetDefault("store.janitor_interval", "1m")

	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", "1h")

	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.model", "deepseek-chat")
	v.SetDefault("provider.timeout", "60s")
	v.SetDefault("provider.max_input_chars", 12000)
	v.SetDefault("provider.analyze_max_tokens", 2000)
	v.SetDefault("provider.ask_max_tokens", 400)
	v.SetDefault("provider.temperature", 0.2)

	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "0s")
	v.SetDefault("breaker.timeout", "30s")
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("invalid store.driver %q: must be %q or %q", c.Store.Driver, StoreDriverRedis, StoreDriverMemory)
	}
	if c.RateLimit.Limit <= 0 {
		return fmt.Errorf("rate_limit.limit must be positive, got %d", c.RateLimit.Limit)
	}
	if c.RateLimit.Window < time.Second {
		return fmt.Errorf("rate_limit.window must be at least 1s, got %s", c.RateLimit.Window)
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
