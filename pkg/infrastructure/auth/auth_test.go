package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenManager(t *testing.T) {
	manager := NewTokenManager("secret", time.Hour)
	userID := uuid.New()

	t.Run("Round trip", func(t *testing.T) {
		token, err := manager.Issue(userID)
		require.NoError(t, err)

		parsed, err := manager.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, userID, parsed)
	})

	t.Run("Reject foreign signature", func(t *testing.T) {
		token, err := NewTokenManager("other-secret", time.Hour).Issue(userID)
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Reject expired token", func(t *testing.T) {
		token, err := manager.Issue(userID)
		require.NoError(t, err)

		later := NewTokenManager("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Reject garbage", func(t *testing.T) {
		_, err := manager.Parse("not-a-token")
		assert.Error(t, err)
	})

	t.Run("Default ttl is thirty days", func(t *testing.T) {
		assert.Equal(t, 30*24*time.Hour, NewTokenManager("secret", 0).ttl)
	})
}

func TestPasswordManager(t *testing.T) {
	manager := NewPasswordManager(bcrypt.MinCost)

	hash, err := manager.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := manager.Check(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = manager.Check(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = manager.Check("not-a-hash", "secret1")
	assert.Error(t, err)
}
