package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/filevault/pkg/objectid"
	"github.com/dmitrymomot/filevault/svc/auth"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newService(t *testing.T) (*auth.Service, *clock) {
	t.Helper()
	c := &clock{now: time.Now()}
	svc := auth.NewService(
		auth.NewMemoryUserStorage(),
		auth.NewMemoryTokenStore(c.Now),
		auth.WithBcryptCost(bcrypt.MinCost),
	)
	return svc, c
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates user with normalized email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)

		u, err := svc.Register(ctx, "  User@Test.com ", "pw123")
		require.NoError(t, err)
		assert.False(t, u.ID.IsZero())
		assert.Equal(t, "user@test.com", u.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("pw123")))

		n, err := svc.CountUsers(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)

		_, err := svc.Register(ctx, "  ", "pw")
		assert.ErrorIs(t, err, auth.ErrMissingEmail)
		_, err = svc.Register(ctx, "a@b.c", "")
		assert.ErrorIs(t, err, auth.ErrMissingPassword)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)

		_, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		_, err = svc.Register(ctx, "USER@test.com", "other")
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("storage race reports conflict", func(t *testing.T) {
		t.Parallel()
		users := new(MockUserStorage)
		users.On("GetUserByEmail", mock.Anything, "a@b.c").Return(nil, auth.ErrUserNotFound)
		users.On("CreateUser", mock.Anything, mock.Anything).Return(auth.ErrEmailAlreadyExists)

		svc := auth.NewService(users, auth.NewMemoryTokenStore(nil), auth.WithBcryptCost(bcrypt.MinCost))
		_, err := svc.Register(ctx, "a@b.c", "pw")
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
		users.AssertExpectations(t)
	})

	t.Run("storage failure is not a conflict", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("db down")
		users := new(MockUserStorage)
		users.On("GetUserByEmail", mock.Anything, "a@b.c").Return(nil, boom)

		svc := auth.NewService(users, auth.NewMemoryTokenStore(nil))
		_, err := svc.Register(ctx, "a@b.c", "pw")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})
}

func TestService_SessionLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("login resolve logout", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		u, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)

		token, err := svc.Login(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		id, err := svc.Resolve(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, id)

		me, err := svc.WhoAmI(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user@test.com", me.Email)

		require.NoError(t, svc.Logout(ctx, token))
		_, err = svc.Resolve(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
		assert.ErrorIs(t, svc.Logout(ctx, token), auth.ErrUnauthorized)
	})

	t.Run("no user oracle", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)

		_, errWrongPassword := svc.Login(ctx, "user@test.com", "nope")
		_, errUnknownUser := svc.Login(ctx, "ghost@test.com", "pw123")
		assert.ErrorIs(t, errWrongPassword, auth.ErrUnauthorized)
		assert.Equal(t, errWrongPassword, errUnknownUser)
	})

	t.Run("multiple concurrent sessions", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)

		first, err := svc.Login(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		require.NoError(t, svc.Logout(ctx, first))
		_, err = svc.Resolve(ctx, second)
		assert.NoError(t, err)
	})

	t.Run("absolute expiry", func(t *testing.T) {
		t.Parallel()
		svc, c := newService(t)
		_, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		token, err := svc.Login(ctx, "user@test.com", "pw123")
		require.NoError(t, err)

		c.Advance(23 * time.Hour)
		_, err = svc.Resolve(ctx, token)
		require.NoError(t, err)

		c.Advance(time.Hour)
		_, err = svc.Resolve(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("empty and unknown tokens", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.Resolve(ctx, "")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
		_, err = svc.WhoAmI(ctx, "missing")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("token store failure is surfaced", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("redis down")
		tokens := new(MockTokenStore)
		tokens.On("Get", mock.Anything, "tok").Return("", boom)

		svc := auth.NewService(auth.NewMemoryUserStorage(), tokens)
		_, err := svc.Resolve(ctx, "tok")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("uses configured ttl", func(t *testing.T) {
		t.Parallel()
		users := auth.NewMemoryUserStorage()
		tokens := new(MockTokenStore)
		tokens.On("Set", mock.Anything, "fixed", mock.AnythingOfType("string"), time.Hour).Return(nil).Once()

		svc := auth.NewService(users, tokens,
			auth.WithBcryptCost(bcrypt.MinCost),
			auth.WithTokenTTL(time.Hour),
			auth.WithTokenGenerator(func() string { return "fixed" }),
		)
		_, err := svc.Register(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		token, err := svc.Login(ctx, "user@test.com", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "fixed", token)
		tokens.AssertExpectations(t)
	})

	t.Run("garbage user id in store", func(t *testing.T) {
		t.Parallel()
		tokens := auth.NewMemoryTokenStore(nil)
		require.NoError(t, tokens.Set(ctx, "tok", "not-an-id", time.Hour))
		svc := auth.NewService(auth.NewMemoryUserStorage(), tokens)

		_, err := svc.Resolve(ctx, "tok")
		assert.ErrorIs(t, err, auth.ErrUnauthorized)
	})
}

func TestParseBasicAuth(t *testing.T) {
	t.Parallel()

	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	email, password, err := auth.ParseBasicAuth("Basic " + enc("user@test.com:pw:with:colons"))
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", email)
	assert.Equal(t, "pw:with:colons", password)

	_, _, err = auth.ParseBasicAuth("basic " + enc("a:b"))
	assert.NoError(t, err)

	for _, header := range []string{"", "Bearer abc", "Basic !!!", "Basic " + enc("nocolon")} {
		_, _, err := auth.ParseBasicAuth(header)
		assert.ErrorIs(t, err, auth.ErrUnauthorized, header)
	}
}

func TestMemoryUserStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := auth.NewMemoryUserStorage()

	u := &auth.User{ID: objectid.New(), Email: "a@b.c"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, &auth.User{ID: objectid.New(), Email: "a@b.c"}), auth.ErrEmailAlreadyExists)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = s.GetUserByID(ctx, objectid.New())
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
