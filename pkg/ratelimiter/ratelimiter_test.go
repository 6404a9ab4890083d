package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/ratelimiter"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock { return &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var testConfig = ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBucket(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T, c *clock) ratelimiter.Store{
		"memory": func(t *testing.T, c *clock) ratelimiter.Store {
			s := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithMemoryClock(c.Now))
			t.Cleanup(s.Close)
			return s
		},
		"redis": func(t *testing.T, c *clock) ratelimiter.Store {
			_, client := newRedisClient(t)
			return ratelimiter.NewRedisStore(client, ratelimiter.WithRedisClock(c.Now))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newClock()
			store := newStore(t, c)
			b, err := ratelimiter.NewBucket(store, testConfig)
			require.NoError(t, err)
			ctx := context.Background()

			for i := range testConfig.Capacity {
				res, err := b.Allow(ctx, "ip")
				require.NoError(t, err)
				assert.True(t, res.Allowed())
				assert.Equal(t, testConfig.Capacity-i-1, res.Remaining)
				assert.Equal(t, testConfig.Capacity, res.Limit)
			}

			res, err := b.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.False(t, res.Allowed())
			assert.WithinDuration(t, c.Now().Add(time.Minute), res.ResetAt, 0)

			// Denied calls take nothing, so one refill admits exactly one more.
			_, err = b.Allow(ctx, "ip")
			require.NoError(t, err)
			c.Advance(time.Minute)
			res, err = b.Allow(ctx, "ip")
			require.NoError(t, err)
			assert.True(t, res.Allowed())
			assert.Equal(t, 0, res.Remaining)

			other, err := b.Allow(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, 2, other.Remaining)

			c.Advance(time.Hour)
			status, err := b.Status(ctx, "ip")
			require.NoError(t, err)
			assert.Equal(t, testConfig.Capacity, status.Remaining)

			_, err = b.Allow(ctx, "ip")
			require.NoError(t, err)
			require.NoError(t, b.Reset(ctx, "ip"))
			status, err = b.Status(ctx, "ip")
			require.NoError(t, err)
			assert.Equal(t, testConfig.Capacity, status.Remaining)

			_, err = b.AllowN(ctx, "ip", 0)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
		})
	}
}

func TestNewBucketValidates(t *testing.T) {
	t.Parallel()

	for _, cfg := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), cfg)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestRedisStoreExpiresIdleBuckets(t *testing.T) {
	t.Parallel()

	mr, client := newRedisClient(t)
	store := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("rl_"))
	_, _, err := store.ConsumeTokens(context.Background(), "ip", 1, testConfig)
	require.NoError(t, err)
	require.True(t, mr.Exists("rl_ip"))
	assert.Positive(t, mr.TTL("rl_ip"))

	mr.Close()
	_, _, err = store.ConsumeTokens(context.Background(), "ip", 1, testConfig)
	assert.ErrorIs(t, err, ratelimiter.ErrStoreUnavailable)
}

type failingStore struct{}

func (failingStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func (failingStore) Reset(context.Context, string) error { return nil }

func TestMiddleware(t *testing.T) {
	t.Parallel()

	c := newClock()
	b, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithMemoryClock(c.Now)),
		ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	key := func(r *http.Request) string { return r.Header.Get("X-Key") }
	h := ratelimiter.Middleware(b, key, ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, _ *http.Request, res *ratelimiter.Result) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))(ok)

	send := func(k string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.Header.Set("X-Key", k)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := send("a")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, send("a").Code)

	rec = send("a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "slow down", rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send("b").Code)
	for range 5 {
		assert.Equal(t, http.StatusOK, send("").Code)
	}

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		fb, err := ratelimiter.NewBucket(failingStore{}, testConfig)
		require.NoError(t, err)

		var got error
		h := ratelimiter.Middleware(fb, key, ratelimiter.WithStoreErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}))(ok)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Key", "a")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.True(t, errors.Is(got, ratelimiter.ErrStoreUnavailable))
	})
}
