package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	err := mc.Set(ctx, "key1", []byte("value1"), time.Hour)
	require.NoError(t, err)

	val, err := mc.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("value1"), val)
}

func TestMemoryCache_GetMiss(t *testing.T) {
	mc := NewMemoryCache()

	val, err := mc.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "key1", []byte("value1"), 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	val, err := mc.Get(ctx, "key1")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryCache_CapacityEvictsOldest(t *testing.T) {
	mc := NewMemoryCacheWithCapacity(3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, mc.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Hour))
	}

	assert.Equal(t, 3, mc.Len())
	val, err := mc.Get(ctx, "key0")
	require.NoError(t, err)
	assert.Nil(t, val, "oldest entry should be evicted")

	val, err = mc.Get(ctx, "key3")
	require.NoError(t, err)
	assert.NotNil(t, val)
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	mc := NewMemoryCacheWithCapacity(2)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, mc.Set(ctx, "a", []byte("3"), time.Hour))

	assert.Equal(t, 2, mc.Len())
	val, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), val)
}

func TestMemoryCache_Delete(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "key1", []byte("value1"), time.Hour))
	require.NoError(t, mc.Delete(ctx, "key1"))

	val, err := mc.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryCache_MGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Hour))

	vals, err := mc.MGet(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), vals[0])
	assert.Nil(t, vals[1])
	assert.Equal(t, []byte("3"), vals[2])
}

func TestNewFromConfig_Memory(t *testing.T) {
	c, err := NewFromConfig(context.Background(), "memory", nil, "", 10)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestNewFromConfig_Unknown(t *testing.T) {
	_, err := NewFromConfig(context.Background(), "mongo", nil, "", 0)
	assert.Error(t, err)
}
