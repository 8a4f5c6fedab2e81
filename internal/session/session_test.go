package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	tokens Tokens
	saves  int
	clears int
}

func (s *fakeStore) Load() (Tokens, error) { return s.tokens, nil }
func (s *fakeStore) Save(t Tokens) error   { s.tokens = t; s.saves++; return nil }
func (s *fakeStore) Clear() error          { s.tokens = Tokens{}; s.clears++; return nil }

type fakeRefresher struct {
	tokens Tokens
	err    error
	calls  int
}

func (r *fakeRefresher) Refresh(_ context.Context, refreshToken string) (Tokens, error) {
	r.calls++
	if r.err != nil {
		return Tokens{}, r.err
	}
	return r.tokens, nil
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestManager_LoadsTokensFromStore(t *testing.T) {
	store := &fakeStore{tokens: Tokens{AccessToken: "a", RefreshToken: "r"}}

	m, err := NewManager(store, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", m.AccessToken())
}

func TestManager_Refresh_ReplacesTokensAndPersists(t *testing.T) {
	store := &fakeStore{tokens: Tokens{AccessToken: "old", RefreshToken: "refresh-1"}}
	ref := &fakeRefresher{tokens: Tokens{AccessToken: "new", RefreshToken: "refresh-2"}}

	m, err := NewManager(store, ref)
	require.NoError(t, err)

	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, "new", m.AccessToken())
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, Tokens{AccessToken: "new", RefreshToken: "refresh-2"}, store.tokens)
}

func TestManager_Refresh_FailureClearsAndNotifiesExpired(t *testing.T) {
	store := &fakeStore{tokens: Tokens{AccessToken: "old", RefreshToken: "refresh-1"}}
	ref := &fakeRefresher{err: errors.New("rejected")}

	m, err := NewManager(store, ref)
	require.NoError(t, err)

	expired := 0
	m.OnExpired(func() { expired++ })

	require.Error(t, m.Refresh(context.Background()))
	assert.Equal(t, "", m.AccessToken())
	assert.Equal(t, 1, store.clears)
	assert.Equal(t, 1, expired, "expected exactly one expiry notification")
}

func TestManager_Refresh_WithoutRefreshTokenExpires(t *testing.T) {
	m, err := NewManager(&fakeStore{}, &fakeRefresher{})
	require.NoError(t, err)

	expired := 0
	m.OnExpired(func() { expired++ })

	err = m.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Equal(t, 1, expired)
}

func TestManager_Claims_ParsesUnverified(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{
		"sub":   "admin-1",
		"email": "staff@shelter.org",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	m, err := NewManager(&fakeStore{tokens: Tokens{AccessToken: tok}}, nil)
	require.NoError(t, err)

	c, ok := m.Claims()
	require.True(t, ok)
	assert.Equal(t, "admin-1", c.UserID)
	assert.Equal(t, "staff@shelter.org", c.Email)
	assert.Equal(t, "admin", c.Role)

	exp, ok := m.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.After(time.Now()))
}

func TestManager_Claims_GarbageTokenIsNotClaims(t *testing.T) {
	m, err := NewManager(&fakeStore{tokens: Tokens{AccessToken: "not-a-jwt"}}, nil)
	require.NoError(t, err)

	_, ok := m.Claims()
	assert.False(t, ok)
}
