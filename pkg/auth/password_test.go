package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordChecker_Plaintext(t *testing.T) {
	p := PasswordChecker{AllowPlaintext: true}

	assert.True(t, p.Check("secret", "secret"))
	assert.False(t, p.Check("secret", "wrong"))
	assert.False(t, p.Check("secret", "secret "))
	assert.False(t, p.Check("secret", ""))
}

func TestPasswordChecker_PlaintextDisabled(t *testing.T) {
	p := PasswordChecker{}
	assert.False(t, p.Check("secret", "secret"))
}

func TestPasswordChecker_Bcrypt(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	require.True(t, IsHashed(hash))

	for _, p := range []PasswordChecker{{}, {AllowPlaintext: true}} {
		assert.True(t, p.Check(hash, "secret"))
		assert.False(t, p.Check(hash, "wrong"))
		assert.False(t, p.Check(hash, hash))
	}
}
