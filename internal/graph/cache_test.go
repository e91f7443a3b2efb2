package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Put("A", newNode("A", nil))
	c.Put("B", newNode("B", nil))
	_, ok := c.Get("A") // A becomes MRU
	require.True(t, ok)
	c.Put("C", newNode("C", nil))

	_, ok = c.Get("B")
	assert.False(t, ok, "B was least recently used")
	assert.Equal(t, []string{"C", "A"}, c.Keys())
	assert.Equal(t, 2, c.Len())
}

func TestCachePutRefreshesExisting(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	old, fresh := newNode("A", 1), newNode("A", 2)
	c.Put("A", old)
	c.Put("B", newNode("B", nil))
	c.Put("A", fresh)

	assert.Equal(t, []string{"A", "B"}, c.Keys())
	got, ok := c.Get("A")
	require.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Equal(t, 2, c.Len())
}

func TestCacheRemoveAndPurge(t *testing.T) {
	c, err := NewCache(3)
	require.NoError(t, err)
	for _, id := range []string{"A", "B", "C"} {
		c.Put(id, newNode(id, nil))
	}

	c.Remove("B")
	c.Remove("missing")
	assert.Equal(t, []string{"C", "A"}, c.Keys())

	c.Remove("C")
	c.Remove("A")
	assert.Empty(t, c.Keys())
	assert.Equal(t, 0, c.Len())

	c.Put("D", newNode("D", nil))
	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 3, c.Cap())
}

func TestCacheCapacityOne(t *testing.T) {
	c, err := NewCache(1)
	require.NoError(t, err)
	c.Put("A", newNode("A", nil))
	c.Put("B", newNode("B", nil))
	assert.Equal(t, []string{"B"}, c.Keys())
}

func TestCacheRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewCache(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStaleCacheHitFallsThrough(t *testing.T) {
	s, err := NewStore(4)
	require.NoError(t, err)
	require.NoError(t, s.AddNode("A", nil))
	n, err := s.GetNode("A")
	require.NoError(t, err)

	// Simulate a lookup that cached A just before a concurrent removal.
	_, _ = n.tombstone()
	s.cache.Put("A", n)

	_, err = s.GetNode("A")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.cache.Len())
}

func TestAtomicFloat(t *testing.T) {
	var f atomicFloat
	f.Store(1.5)
	assert.Equal(t, 2.0, f.Add(0.5))
	f.Max(1.0)
	assert.Equal(t, 2.0, f.Load())
	f.Max(3.25)
	assert.Equal(t, 3.25, f.Load())
}
