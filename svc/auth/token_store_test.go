package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/svc/auth"
)

func TestRedisTokenStore(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := auth.NewRedisTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok", "64b7f0c2a1b2c3d4e5f60718", 24*time.Hour))
	assert.True(t, srv.Exists("auth_tok"))
	assert.Equal(t, 24*time.Hour, srv.TTL("auth_tok"))

	v, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", v)

	srv.FastForward(25 * time.Hour)
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "tok"), auth.ErrTokenNotFound)
}
