package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/auth"
	"github.com/vytor/flashdeck/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, auth.CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), errors.ErrInvalidCredentials)
}

func TestHashPassword_OutOfRangeCost(t *testing.T) {
	hash, err := auth.HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	err := auth.CheckPassword("not-a-hash", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestScopeKey(t *testing.T) {
	tests := map[string]string{
		"alice":         "alice",
		"bob_smith-2":   "bob_smith-2",
		"../etc/passwd": "etcpasswd",
		"a b.c":         "abc",
		"éloïse":        "éloïse",
		"!!!":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, auth.ScopeKey(in), in)
	}
}

func TestValidUsername(t *testing.T) {
	assert.True(t, auth.ValidUsername("alice_01"))
	assert.False(t, auth.ValidUsername(""))
	assert.False(t, auth.ValidUsername("a.b"))
	assert.False(t, auth.ValidUsername(" alice"))
	assert.False(t, auth.ValidUsername("guest"))
}

func TestUserScope(t *testing.T) {
	s := auth.UserScope("alice")
	assert.Equal(t, "alice", s.Key)
	assert.Equal(t, "alice", s.Username)
	assert.True(t, s.Persistent)
	assert.False(t, s.IsGuest())
}
