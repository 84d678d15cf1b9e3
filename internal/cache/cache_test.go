package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCache_SetAndGet(t *testing.T) {
	c := New[string](time.Minute)

	c.Set("key1", "value1")

	value, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", value)
	assert.Equal(t, 1, c.Size())
}

func TestCache_GetMissing(t *testing.T) {
	c := New[string](time.Minute)

	value, ok := c.Get("nonexistent")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := New[[]int](10*time.Minute, WithClock(clock.Now))

	c.Set("k", []int{1, 2})

	clock.Advance(10*time.Minute - time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry should be fresh just before the TTL")

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire at the TTL")

	stale, ok := c.Stale("k")
	require.True(t, ok, "expired entry should still be readable as stale")
	assert.Equal(t, []int{1, 2}, stale)
}

func TestCache_SetRefreshesTimestamp(t *testing.T) {
	clock := newFakeClock()
	c := New[string](time.Minute, WithClock(clock.Now))

	c.Set("k", "v1")
	clock.Advance(2 * time.Minute)
	c.Set("k", "v2")

	value, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", value)
}

func TestCache_Stats(t *testing.T) {
	c := New[string](time.Minute)

	c.Get("a")
	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Stale("a")

	assert.Equal(t, Stats{Hits: 2, Misses: 1, Keys: 1}, c.Stats())
}

func TestCache_Clear(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Clear()
	c.Clear()

	assert.Equal(t, 0, c.Size())
	_, ok := c.Stale("a")
	assert.False(t, ok)
}

func TestCache_Cleanup(t *testing.T) {
	clock := newFakeClock()
	c := New[string](time.Minute, WithClock(clock.Now), WithStaleGrace(time.Hour))

	c.Set("old", "1")
	clock.Advance(30 * time.Minute)
	c.Set("new", "2")

	assert.Equal(t, 0, c.Cleanup(), "entries inside the grace window are kept")

	clock.Advance(31*time.Minute + time.Second)
	assert.Equal(t, 1, c.Cleanup())

	_, ok := c.Stale("old")
	assert.False(t, ok)
	_, ok = c.Stale("new")
	assert.True(t, ok)
}

func TestCache_Range(t *testing.T) {
	c := New[int](time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	sum := 0
	c.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 10, sum)

	visited := 0
	c.Range(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[string](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("key", "value")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("key")
				c.Stale("key")
			}
		}()
	}
	wg.Wait()

	value, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", value)
}
