package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-community-api/internal/model"
	"go-community-api/internal/password"
	"go-community-api/internal/token"
)

var cheapHashParams = password.Params{
	MemoryKiB:   8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type memoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[int64]model.User{}}
}

func (s *memoryUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memoryUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (s *memoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *memoryUserStore) List(_ context.Context, page int, limit int) ([]model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]model.User, 0, len(s.users))
	for id := int64(1); id <= s.nextID; id++ {
		if user, ok := s.users[id]; ok {
			users = append(users, user)
		}
	}

	total := len(users)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return users[start:end], total, nil
}

type memoryTokenStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{rows: map[string]model.RefreshToken{}}
}

func (s *memoryTokenStore) Save(_ context.Context, row model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[row.Token] = row
	return nil
}

func (s *memoryTokenStore) Consume(_ context.Context, value string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[value]
	if !ok || row.TokenType != model.TokenTypeRefresh {
		return model.RefreshToken{}, model.ErrTokenNotFound
	}
	delete(s.rows, value)
	return row, nil
}

func (s *memoryTokenStore) DeleteByValue(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rows, value)
	return nil
}

func (s *memoryTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rows)
}

func newTestService(t *testing.T) (*AuthService, *memoryUserStore, *memoryTokenStore) {
	t.Helper()

	users := newMemoryUserStore()
	tokens := newMemoryTokenStore()

	codec, err := token.NewCodec("test-secret", time.Hour)
	require.NoError(t, err)
	issuer := token.NewIssuer(codec, tokens, 168*time.Hour)

	return NewAuthService(users, tokens, issuer), users, tokens
}

func seedUser(t *testing.T, users *memoryUserStore, email string, plain string, role model.Role) model.User {
	t.Helper()

	hash, err := password.HashWithParams(plain, cheapHashParams)
	require.NoError(t, err)

	user, err := users.Create(context.Background(), model.User{
		Pseudo:   "John",
		Email:    email,
		Password: hash,
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Login(t *testing.T) {
	svc, users, tokens := newTestService(t)
	seedUser(t, users, "john@doe.io", "P4$$w0rdtest", model.RoleMember)

	t.Run("correct credentials issue a pair and persist the refresh row", func(t *testing.T) {
		pair, err := svc.Login(context.Background(), "john@doe.io", "P4$$w0rdtest")
		require.NoError(t, err)

		assert.NotEmpty(t, pair.Access.Token)
		assert.NotEmpty(t, pair.Refresh.Token)
		assert.Equal(t, 1, tokens.count())
	})

	t.Run("wrong password is rejected without a new refresh row", func(t *testing.T) {
		before := tokens.count()
		_, err := svc.Login(context.Background(), "john@doe.io", "wrong")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
		assert.Equal(t, before, tokens.count())
	})

	t.Run("unknown email is rejected with the same error", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@doe.io", "P4$$w0rdtest")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("valid token rotates and becomes single-use", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "john@doe.io", "P4$$w0rdtest", model.RoleMember)

		pair, err := svc.Login(context.Background(), "john@doe.io", "P4$$w0rdtest")
		require.NoError(t, err)

		rotated, err := svc.Refresh(context.Background(), pair.Refresh.Token)
		require.NoError(t, err)
		assert.NotEqual(t, pair.Refresh.Token, rotated.Refresh.Token)

		// Consumed value must not be accepted a second time.
		_, err = svc.Refresh(context.Background(), pair.Refresh.Token)
		assert.ErrorIs(t, err, model.ErrTokenNotFound)
	})

	t.Run("expired token is rejected and cleaned up", func(t *testing.T) {
		svc, users, tokens := newTestService(t)
		user := seedUser(t, users, "john@doe.io", "P4$$w0rdtest", model.RoleMember)

		require.NoError(t, tokens.Save(context.Background(), model.RefreshToken{
			Token:     "expired-value",
			UserID:    user.ID,
			TokenType: model.TokenTypeRefresh,
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}))

		_, err := svc.Refresh(context.Background(), "expired-value")
		assert.ErrorIs(t, err, model.ErrTokenExpired)
		assert.Equal(t, 0, tokens.count())
	})

	t.Run("unknown or blank values are rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Refresh(context.Background(), "never-issued")
		assert.ErrorIs(t, err, model.ErrTokenNotFound)

		_, err = svc.Refresh(context.Background(), "  ")
		assert.ErrorIs(t, err, model.ErrTokenNotFound)
	})

	t.Run("token owned by a deleted user is rejected", func(t *testing.T) {
		svc, _, tokens := newTestService(t)

		require.NoError(t, tokens.Save(context.Background(), model.RefreshToken{
			Token:     "orphan-value",
			UserID:    999,
			TokenType: model.TokenTypeRefresh,
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}))

		_, err := svc.Refresh(context.Background(), "orphan-value")
		assert.ErrorIs(t, err, model.ErrTokenNotFound)
	})
}

func TestAuthService_Logout(t *testing.T) {
	svc, users, tokens := newTestService(t)
	seedUser(t, users, "john@doe.io", "P4$$w0rdtest", model.RoleMember)

	pair, err := svc.Login(context.Background(), "john@doe.io", "P4$$w0rdtest")
	require.NoError(t, err)
	require.Equal(t, 1, tokens.count())

	svc.Logout(context.Background(), pair.Refresh.Token)
	assert.Equal(t, 0, tokens.count())

	// Blank and unknown values are silently ignored.
	svc.Logout(context.Background(), "")
	svc.Logout(context.Background(), "unknown")
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a member with a hashed password", func(t *testing.T) {
		svc, users, _ := newTestService(t)

		created, err := svc.Register(context.Background(), model.RegisterRequest{
			Pseudo:   "JohnDoe",
			Email:    "john@doe.io",
			Password: "P4$$w0rdtest",
			Confirm:  "P4$$w0rdtest",
		})
		require.NoError(t, err)

		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "JohnDoe", created.Pseudo)
		assert.Equal(t, model.RoleMember, created.Role)

		stored, err := users.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Regexp(t, `^\$argon2id\$`, stored.Password)
		assert.NotContains(t, stored.Password, "P4$$w0rdtest")
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Pseudo:   "JohnDoe",
			Email:    "john@doe.io",
			Password: "P4$$w0rdtest",
			Confirm:  "different",
		})
		assert.ErrorContains(t, err, "confirmation")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, users, _ := newTestService(t)
		seedUser(t, users, "john@doe.io", "P4$$w0rdtest", model.RoleMember)

		_, err := svc.Register(context.Background(), model.RegisterRequest{
			Pseudo:   "Other",
			Email:    "john@doe.io",
			Password: "P4$$w0rdtest",
			Confirm:  "P4$$w0rdtest",
		})
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		cases := []model.RegisterRequest{
			{Email: "john@doe.io", Password: "P4$$w0rdtest", Confirm: "P4$$w0rdtest"},
			{Pseudo: "John", Password: "P4$$w0rdtest", Confirm: "P4$$w0rdtest"},
			{Pseudo: "John", Email: "not-an-email", Password: "P4$$w0rdtest", Confirm: "P4$$w0rdtest"},
			{Pseudo: "John", Email: "john@doe.io", Password: "short", Confirm: "short"},
		}
		for i, req := range cases {
			_, err := svc.Register(context.Background(), req)
			assert.Error(t, err, "case %d", i)
		}
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	svc, users, _ := newTestService(t)
	for _, email := range []string{"a@doe.io", "b@doe.io", "c@doe.io"} {
		seedUser(t, users, email, "P4$$w0rdtest", model.RoleMember)
	}

	page, meta, err := svc.ListUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, model.Meta{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, meta)

	second, meta, err := svc.ListUsers(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 2, meta.Page)
}
