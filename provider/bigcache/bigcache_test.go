package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(context.Background(), Config{LifeWindow: time.Hour, MaxEntriesInWindow: 100, MaxEntrySize: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRequiresLifeWindow(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	ok, err := p.Set(ctx, "k", []byte("payload"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(b))

	removed, err := p.Del(ctx, "k")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = p.Del(ctx, "k")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPerEntryDeadline(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	now := time.Now()
	p.now = func() time.Time { return now }

	_, _ = p.Set(ctx, "neg", []byte("___NOTFOUND___"), time.Minute)
	_, _ = p.Set(ctx, "pos", []byte("v"), 10*time.Minute)

	now = now.Add(2 * time.Minute)

	_, ok, err := p.Get(ctx, "neg")
	require.NoError(t, err)
	assert.False(t, ok, "short entry should have expired")

	b, ok, err := p.Get(ctx, "pos")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))
}

func TestExpiredEntryNotCountedOnDel(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	now := time.Now()
	p.now = func() time.Time { return now }

	_, _ = p.Set(ctx, "k", []byte("v"), time.Second)
	now = now.Add(time.Minute)

	removed, err := p.Del(ctx, "k")
	require.NoError(t, err)
	assert.False(t, removed)
}
