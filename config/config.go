// Package config loads loader settings and the shared Redis connection from YAML.
//
//	redis:
//	  addrs: ["localhost:6379"]
//	  pool_size: 20
//	loader:
//	  suffix: v2
//	  ttl: 10m
//	  not_found_ttl: 1m
//	  registry: redis
//	  registry_key: cacheloader:namespaces
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/cacheloader"
	"github.com/unkn0wn-root/cacheloader/registry"
)

const (
	RegistryLocal = "local"
	RegistryRedis = "redis"
)

// Config is the root of the YAML document.
type Config struct {
	Redis  RedisConfig  `yaml:"redis"`
	Loader LoaderConfig `yaml:"loader"`
}

// RedisConfig describes the shared cache-store connection. One address yields a
// single-node client, several yield a cluster client (go-redis UniversalClient).
type RedisConfig struct {
	Addrs        []string      `yaml:"addrs"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoaderConfig holds the per-deployment loader knobs.
type LoaderConfig struct {
	Suffix      string        `yaml:"suffix"`
	TTL         time.Duration `yaml:"ttl"`
	NotFoundTTL time.Duration `yaml:"not_found_ttl"`
	Registry    string        `yaml:"registry"`     // "local" (default) or "redis"
	RegistryKey string        `yaml:"registry_key"` // required for "redis"
}

// DefaultConfig returns the settings used when a field is absent from the file.
func DefaultConfig() Config {
	return Config{
		Redis: RedisConfig{
			Addrs:        []string{"localhost:6379"},
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		// NotFoundTTL stays 0 so the loader derives it as min(60s, ttl/2).
		Loader: LoaderConfig{
			TTL:      10 * time.Minute,
			Registry: RegistryLocal,
		},
	}
}

// Load reads and validates a YAML file on top of DefaultConfig.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Redis),
		validation.Field(&c.Loader),
	)
}

func (c RedisConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addrs, validation.Required, validation.Each(validation.Required)),
		validation.Field(&c.DB, validation.Min(0)),
		validation.Field(&c.PoolSize, validation.Min(0)),
		validation.Field(&c.MinIdleConns, validation.Min(0)),
		validation.Field(&c.DialTimeout, validation.Min(0)),
		validation.Field(&c.ReadTimeout, validation.Min(0)),
		validation.Field(&c.WriteTimeout, validation.Min(0)),
	)
}

func (c LoaderConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Min(0)),
		validation.Field(&c.NotFoundTTL, validation.Min(0), validation.By(func(any) error {
			if c.NotFoundTTL > 0 && c.TTL > 0 && c.NotFoundTTL >= c.TTL {
				return errors.New("must be shorter than ttl")
			}
			return nil
		})),
		validation.Field(&c.Registry, validation.In(RegistryLocal, RegistryRedis)),
		validation.Field(&c.RegistryKey, validation.When(c.Registry == RegistryRedis, validation.Required)),
	)
}

// NewRedisClient builds the shared client. The caller owns and closes it.
func (c RedisConfig) NewRedisClient() redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        c.Addrs,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	})
}

// NewRegistry returns the namespace registry selected by the config.
// client may be nil when Registry is "local".
func (c LoaderConfig) NewRegistry(client redis.UniversalClient) (registry.Registry, error) {
	switch c.Registry {
	case "", RegistryLocal:
		return registry.Default, nil
	case RegistryRedis:
		if client == nil {
			return nil, errors.New("config: redis registry needs a client")
		}
		return registry.NewRedis(client, c.RegistryKey), nil
	default:
		return nil, fmt.Errorf("config: unknown registry %q", c.Registry)
	}
}

// Apply copies the loader knobs into opts, leaving unset fields untouched.
func Apply[K, V any](c LoaderConfig, opts *cacheloader.Options[K, V]) {
	if c.Suffix != "" {
		opts.Suffix = c.Suffix
	}
	if c.TTL > 0 {
		opts.TTL = c.TTL
	}
	if c.NotFoundTTL > 0 {
		opts.NotFoundTTL = c.NotFoundTTL
	}
}
