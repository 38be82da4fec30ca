package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher, err := NewBcrypt(4)
	require.NoError(t, err)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)

	ok, err := hasher.Verify("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashRejectsShortPassword(t *testing.T) {
	hasher, err := NewBcrypt(4)
	require.NoError(t, err)

	_, err = hasher.Hash("1234567")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewBcrypt(4)
	require.NoError(t, err)

	ok, err := hasher.Verify("correct horse", "not a bcrypt hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNewBcryptCostRange(t *testing.T) {
	_, err := NewBcrypt(0)
	assert.NoError(t, err)

	_, err = NewBcrypt(99)
	assert.Error(t, err)

	_, err = NewBcrypt(-1)
	assert.Error(t, err)
}
