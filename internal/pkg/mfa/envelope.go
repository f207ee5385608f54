package mfa

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// encryptedPrefix tags vault values that hold an AES-GCM envelope. Values
// without the prefix are legacy plaintext from before the encryption rollout.
const encryptedPrefix = "enc:v1:"

// IsEncrypted reports whether a stored vault value carries the envelope prefix.
func IsEncrypted(stored string) bool {
	return strings.HasPrefix(stored, encryptedPrefix)
}

// SealString encrypts plain and returns the prefixed base64 envelope stored at
// rest: "enc:v1:" + base64(version || nonce || ciphertext+tag).
func SealString(e Encryptor, plain string, scope Scope) (string, error) {
	ciphertext, err := e.Encrypt([]byte(plain), scope)
	if err != nil {
		return "", err
	}

	return encryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// OpenString decrypts a prefixed envelope produced by SealString.
//
// Callers must check IsEncrypted first; passing a legacy plaintext value is a
// programming error and fails with ErrCiphertextTooShort or ErrDecryptFailed.
func OpenString(e Encryptor, stored string, scope Scope) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encryptedPrefix))
	if err != nil {
		return "", ErrDecryptFailed
	}

	plain, err := e.Decrypt(raw, scope)
	if err != nil {
		return "", err
	}

	return string(plain), nil
}

// PassphraseKeyProvider derives a fixed AES-256 key from configured key
// material by hashing it once: any length of input yields a 32-byte key.
type PassphraseKeyProvider struct {
	key [32]byte
}

// NewPassphraseKeyProvider hashes the key material into an AES-256 key.
func NewPassphraseKeyProvider(material string) (*PassphraseKeyProvider, error) {
	if material == "" {
		return nil, ErrMissingStaticKey
	}

	return &PassphraseKeyProvider{key: sha256.Sum256([]byte(material))}, nil
}

// Key returns the derived key for any scope.
func (p *PassphraseKeyProvider) Key(_ Scope) ([]byte, error) {
	k := make([]byte, len(p.key))
	copy(k, p.key[:])
	return k, nil
}
