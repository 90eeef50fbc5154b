package vault

import (
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
)

func generateKey(t *testing.T) string {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	return key.Encode()
}

func TestVault_RoundTrip(t *testing.T) {
	logger.Log = zaptest.NewLogger(t)

	v, err := New(generateKey(t))
	require.NoError(t, err)
	require.True(t, v.Enabled())

	plaintext := "AC0123456789abcdef0123456789abcdef"
	token := v.Encrypt(plaintext)
	assert.NotEqual(t, plaintext, token)
	assert.Equal(t, plaintext, v.Decrypt(token))
}

func TestVault_NoKeyIsPassThrough(t *testing.T) {
	logger.Log = zaptest.NewLogger(t)

	v, err := New("")
	require.NoError(t, err)
	assert.False(t, v.Enabled())

	assert.Equal(t, "secret-token", v.Encrypt("secret-token"))
	assert.Equal(t, "secret-token", v.Decrypt("secret-token"))
}

func TestVault_EmptyValuePassThrough(t *testing.T) {
	logger.Log = zaptest.NewLogger(t)

	v, err := New(generateKey(t))
	require.NoError(t, err)

	assert.Equal(t, "", v.Encrypt(""))
	assert.Equal(t, "", v.Decrypt(""))
}

func TestVault_DecryptFailureReturnsInputUnchanged(t *testing.T) {
	logger.Log = zaptest.NewLogger(t)

	v, err := New(generateKey(t))
	require.NoError(t, err)

	// Not a Fernet token at all, e.g. a row written before encryption was enabled.
	assert.Equal(t, "plaintext-legacy-key", v.Decrypt("plaintext-legacy-key"))

	// Token minted under a different key.
	other, err := New(generateKey(t))
	require.NoError(t, err)
	foreign := other.Encrypt("some-secret")
	assert.Equal(t, foreign, v.Decrypt(foreign))
}

func TestVault_InvalidKeyRejected(t *testing.T) {
	logger.Log = zaptest.NewLogger(t)

	_, err := New("not-a-fernet-key")
	assert.Error(t, err)
}
