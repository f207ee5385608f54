package mfa

// Encryptor seals and opens authenticator secrets. The scope binds each
// ciphertext to its owner and purpose, so a value copied between rows fails
// to decrypt.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider supplies the raw 32-byte AES key for a scope. Implementations
// may key per environment or per tenant.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
