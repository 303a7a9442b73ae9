package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/hobbyvault/storefront/internal/roles"
	"github.com/hobbyvault/storefront/internal/storage"
)

var testSecret = []byte("test_secret")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(15 * time.Minute).Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestLoginStoresRoleCredentialIdentity(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), testSecret)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{
		"sub":   float64(7),
		"role":  "staff",
		"name":  "Dana",
		"email": "dana@example.com",
	})

	id, err := m.Login(ctx, "sess-1", token)
	require.NoError(t, err)
	require.Equal(t, roles.Staff, id.Role)
	require.Equal(t, uint(7), id.UserID)
	require.Equal(t, "Dana", id.Name)

	role, ok := m.CurrentRole(ctx, "sess-1")
	require.True(t, ok)
	require.Equal(t, roles.Staff, role)

	cred, ok := m.Credential(ctx, "sess-1")
	require.True(t, ok)
	require.Equal(t, token, cred)

	stored, ok := m.Identity(ctx, "sess-1")
	require.True(t, ok)
	require.Equal(t, id, stored)
}

func TestLoginRejectsBadSignature(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), testSecret)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "staff",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("wrong_secret"))
	require.NoError(t, err)

	_, err = m.Login(context.Background(), "sess-1", token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), testSecret)

	token := signToken(t, jwt.MapClaims{"role": "superuser"})
	_, err := m.Login(context.Background(), "sess-1", token)
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestSetRoleValidatesEnum(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), testSecret)
	ctx := context.Background()

	require.NoError(t, m.SetRole(ctx, "sess-1", roles.Manager))
	role, ok := m.CurrentRole(ctx, "sess-1")
	require.True(t, ok)
	require.Equal(t, roles.Manager, role)

	err := m.SetRole(ctx, "sess-1", "root")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestLogoutClearsEverything(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), testSecret)
	ctx := context.Background()

	token := signToken(t, jwt.MapClaims{"role": "customer"})
	_, err := m.Login(ctx, "sess-1", token)
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, "sess-1"))

	_, ok := m.CurrentRole(ctx, "sess-1")
	require.False(t, ok)
	_, ok = m.Credential(ctx, "sess-1")
	require.False(t, ok)
	_, ok = m.Identity(ctx, "sess-1")
	require.False(t, ok)
}

// flakyStore starts failing reads once broken is set, to exercise the
// in-memory role fallback.
type flakyStore struct {
	*storage.MemoryStore
	broken bool
}

var errStorageDown = errors.New("storage down")

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.broken {
		return nil, errStorageDown
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestCurrentRoleFallsBackToMemory(t *testing.T) {
	fs := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	m := NewManager(fs, testSecret)
	ctx := context.Background()

	require.NoError(t, m.SetRole(ctx, "sess-1", roles.Admin))
	_, ok := m.CurrentRole(ctx, "sess-1")
	require.True(t, ok)

	fs.broken = true
	role, ok := m.CurrentRole(ctx, "sess-1")
	require.True(t, ok)
	require.Equal(t, roles.Admin, role)

	// A session never seen before has nothing to fall back to.
	_, ok = m.CurrentRole(ctx, "sess-2")
	require.False(t, ok)
}
