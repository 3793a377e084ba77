package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKV is an in-process stand-in for the redis commands the cache uses
type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.failGet {
		cmd.SetErr(errors.New("connection reset"))
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisProductCache_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	c := NewRedisProductCache(kv, "test:")
	ctx := context.Background()
	product := testProduct()

	_, found, err := c.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, product, 5*time.Minute))
	key := "test:product:" + product.ID.String()
	assert.Contains(t, kv.data, key)
	assert.Equal(t, 5*time.Minute, kv.ttls[key])

	got, found, err := c.Get(ctx, product.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, product.ID, got.ID)
	assert.True(t, got.SalePrice.Amount().Equal(product.SalePrice.Amount()))
	assert.Equal(t, product.SalePrice.Currency(), got.SalePrice.Currency())
	assert.True(t, got.PisRate.Equal(product.PisRate))
	assert.True(t, got.CofinsRate.Equal(product.CofinsRate))

	require.NoError(t, c.Invalidate(ctx, product.ID))
	_, found, err = c.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisProductCache_DefaultPrefix(t *testing.T) {
	c := NewRedisProductCache(newFakeKV(), "")
	assert.Equal(t, "taxsim:product:"+testProduct().ID.String(), c.key(testProduct().ID))
}

func TestRedisProductCache_Errors(t *testing.T) {
	ctx := context.Background()
	product := testProduct()

	t.Run("read failure", func(t *testing.T) {
		kv := newFakeKV()
		kv.failGet = true
		_, found, err := NewRedisProductCache(kv, "").Get(ctx, product.ID)
		assert.Error(t, err)
		assert.False(t, found)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		kv := newFakeKV()
		c := NewRedisProductCache(kv, "")
		kv.data[c.key(product.ID)] = "{not json"
		_, found, err := c.Get(ctx, product.ID)
		assert.Error(t, err)
		assert.False(t, found)
	})
}
