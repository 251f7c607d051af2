package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cacheloader"
	"github.com/unkn0wn-root/cacheloader/codec"
	"github.com/unkn0wn-root/cacheloader/provider/gocache"
	"github.com/unkn0wn-root/cacheloader/registry"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
redis:
  addrs: ["redis-a:6379", "redis-b:6379"]
  pool_size: 32
loader:
  suffix: v2
  ttl: 15m
  not_found_ttl: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Redis.DialTimeout, "default kept")
	assert.Equal(t, "v2", cfg.Loader.Suffix)
	assert.Equal(t, 15*time.Minute, cfg.Loader.TTL)
	assert.Equal(t, 30*time.Second, cfg.Loader.NotFoundTTL)
	assert.Equal(t, RegistryLocal, cfg.Loader.Registry)
}

func TestParseShortTTLAlone(t *testing.T) {
	cfg, err := Parse([]byte("loader:\n  ttl: 30s\n"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Loader.TTL)
	assert.Zero(t, cfg.Loader.NotFoundTTL)

	opts := cacheloader.Options[int, string]{Name: "user"}
	Apply(cfg.Loader, &opts)
	ld, err := cacheloader.New(func(_ context.Context, keys []int) []cacheloader.Result[string] {
		return make([]cacheloader.Result[string], len(keys))
	}, cacheloader.Options[int, string]{
		Name:     opts.Name,
		TTL:      opts.TTL,
		Provider: gocache.New(gocache.Config{}),
		Codec:    codec.String{},
		Registry: registry.NewLocal(),
	})
	require.NoError(t, err, "loader derives a not-found TTL below a short ttl")
	assert.Equal(t, "user", ld.Name())
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not_found_ttl_not_shorter":  "loader:\n  ttl: 1m\n  not_found_ttl: 1m\n",
		"unknown_registry":           "loader:\n  registry: etcd\n",
		"redis_registry_without_key": "loader:\n  registry: redis\n",
		"empty_addrs":                "redis:\n  addrs: []\n",
		"negative_db":                "redis:\n  db: -1\n",
		"bad_yaml":                   "redis: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loader:\n  suffix: blue\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blue", cfg.Loader.Suffix)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRedisClientAndRegistry(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Redis.Addrs = []string{mr.Addr()}
	cfg.Loader.Registry = RegistryRedis
	cfg.Loader.RegistryKey = "cacheloader:namespaces"
	require.NoError(t, cfg.Validate())

	client := cfg.Redis.NewRedisClient()
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())

	reg, err := cfg.Loader.NewRegistry(client)
	require.NoError(t, err)
	existed, err := reg.Register(context.Background(), "user")
	require.NoError(t, err)
	assert.False(t, existed)

	local, err := LoaderConfig{}.NewRegistry(nil)
	require.NoError(t, err)
	assert.Same(t, registry.Default, local)

	_, err = LoaderConfig{Registry: RegistryRedis}.NewRegistry(nil)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	opts := cacheloader.Options[int, string]{Name: "user", TTL: time.Hour}
	Apply(LoaderConfig{Suffix: "v3", NotFoundTTL: 10 * time.Second}, &opts)

	assert.Equal(t, "v3", opts.Suffix)
	assert.Equal(t, time.Hour, opts.TTL, "unset TTL keeps caller value")
	assert.Equal(t, 10*time.Second, opts.NotFoundTTL)
}
