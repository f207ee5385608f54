package hash

// Hash hashes plaintext values and verifies plaintext against stored hashes.
type Hash interface {
	// Hash returns the stored representation of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored hash.
	Verify(hashed, str string) bool
}
