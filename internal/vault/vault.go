package vault

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"go.uber.org/zap"
)

// Vault encrypts and decrypts provider credentials with a Fernet key.
//
// A Vault without a key is valid and acts as an identity transform. That
// keeps environments without an encryption key working against plaintext
// rows, and lets rows written before encryption was enabled keep resolving.
type Vault struct {
	key *fernet.Key
}

// New builds a Vault from a base64 Fernet key. An empty key yields a
// pass-through vault.
func New(encodedKey string) (*Vault, error) {
	if encodedKey == "" {
		logger.Log.Warn("credential encryption key not configured, storing credentials as plaintext")
		return &Vault{}, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid credential encryption key: %w", err)
	}
	return &Vault{key: key}, nil
}

// Enabled reports whether a key is configured.
func (v *Vault) Enabled() bool {
	return v.key != nil
}

// Encrypt returns the Fernet token for value. Empty values and keyless
// vaults return the input unchanged.
func (v *Vault) Encrypt(value string) string {
	if v.key == nil || value == "" {
		return value
	}
	tok, err := fernet.EncryptAndSign([]byte(value), v.key)
	if err != nil {
		logger.Log.Error("credential encryption failed", zap.Error(err))
		return value
	}
	return string(tok)
}

// Decrypt reverses Encrypt. Tokens that fail verification are returned
// unchanged so rows written before encryption was enabled keep working.
func (v *Vault) Decrypt(value string) string {
	if v.key == nil || value == "" {
		return value
	}
	msg := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{v.key})
	if msg == nil {
		return value
	}
	return string(msg)
}
