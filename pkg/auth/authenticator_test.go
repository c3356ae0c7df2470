package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSharedPassword_Plaintext(t *testing.T) {
	a := NewSharedPassword("studio-secret")

	assert.True(t, a.Verify("studio-secret"))
	assert.False(t, a.Verify("wrong"))
	assert.False(t, a.Verify(""))
	assert.False(t, a.Verify("studio-secret "))
}

func TestSharedPassword_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("studio-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	a := NewSharedPassword(string(hash))

	assert.True(t, a.Verify("studio-secret"))
	assert.False(t, a.Verify("wrong"))
	assert.False(t, a.Verify(""))
}

func TestSharedPassword_EmptySecretNeverVerifies(t *testing.T) {
	a := NewSharedPassword("")

	assert.False(t, a.Verify(""))
	assert.False(t, a.Verify("anything"))
}
