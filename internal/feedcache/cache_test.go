package feedcache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(t *testing.T) (*Cache[string], *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)}
	c := New[string](DefaultTTL)
	c.SetClock(clk.Now)
	return c, clk
}

func TestGetOrCompute_HitWithinTTL(t *testing.T) {
	c, clk := newTestCache(t)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "feed", nil
	}

	v, cached, err := c.GetOrCompute("u1", "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "feed", v)
	assert.False(t, cached)

	clk.Advance(2 * time.Minute)
	v, cached, err = c.GetOrCompute("u1", "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "feed", v)
	assert.True(t, cached)
	assert.Equal(t, 1, calls)
}

func TestGetOrCompute_RecomputesAfterTTL(t *testing.T) {
	c, clk := newTestCache(t)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "feed", nil
	}

	_, _, _ = c.GetOrCompute("u1", "k", compute)
	clk.Advance(DefaultTTL)
	_, cached, err := c.GetOrCompute("u1", "k", compute)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, calls)
}

func TestGetOrCompute_ErrorsNotCached(t *testing.T) {
	c, _ := newTestCache(t)
	boom := errors.New("db down")

	_, _, err := c.GetOrCompute("u1", "k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get("u1", "k")
	assert.False(t, ok)

	v, cached, err := c.GetOrCompute("u1", "k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "ok", v)
}

func TestInvalidateUser_OnlyThatUser(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("u1", "a", "1a")
	c.Set("u1", "b", "1b")
	c.Set("u2", "a", "2a")

	assert.Equal(t, 2, c.InvalidateUser("u1"))

	_, ok := c.Get("u1", "a")
	assert.False(t, ok)
	_, ok = c.Get("u1", "b")
	assert.False(t, ok)
	v, ok := c.Get("u2", "a")
	assert.True(t, ok)
	assert.Equal(t, "2a", v)
}

func TestInvalidateUser_PrefixUsersAreDistinct(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("user", "k", "short")
	c.Set("user1", "k", "long")

	c.InvalidateUser("user")

	_, ok := c.Get("user1", "k")
	assert.True(t, ok)
}

func TestInvalidateUser_Unknown(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Equal(t, 0, c.InvalidateUser("nobody"))
}

func TestSweep(t *testing.T) {
	c, clk := newTestCache(t)
	c.Set("u1", "old", "x")
	clk.Advance(2 * time.Minute)
	c.Set("u1", "new", "y")
	c.Set("u2", "old", "z")
	clk.Advance(90 * time.Second)

	// u1/old is 3m30s old; the others 1m30s.
	assert.Equal(t, 1, c.Sweep())
	s := c.Stats()
	assert.Equal(t, 2, s.Entries)
	assert.Equal(t, 2, s.Users)

	clk.Advance(2 * time.Minute)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 0, c.Stats().Users)
}

func TestStats(t *testing.T) {
	c, _ := newTestCache(t)
	c.Get("u1", "k")
	c.Set("u1", "k", "v")
	c.Get("u1", "k")
	c.Get("u1", "k")
	c.InvalidateUser("u1")

	s := c.Stats()
	assert.Equal(t, uint64(2), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Invalidations)
	assert.Equal(t, 0, s.Entries)
}

func TestNew_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, New[int](0).TTL())
	assert.Equal(t, time.Second, New[int](time.Second).TTL())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := []string{"a", "b"}[i%2]
			for j := 0; j < 100; j++ {
				_, _, _ = c.GetOrCompute(user, "k", func() (int, error) { return j, nil })
				if j%25 == 0 {
					c.InvalidateUser(user)
				}
				c.Sweep()
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Stats().Entries, 2)
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	c := New[int](time.Millisecond)
	s := StartSweeper(c, time.Millisecond)
	c.Set("u", "k", 1)
	assert.Eventually(t, func() bool { return c.Stats().Entries == 0 }, time.Second, time.Millisecond)
	s.Stop()
	s.Stop()
}
