package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// NumericCode returns a zero-padded numeric one-time code of the given length,
// drawn from a cryptographically secure source.
func NumericCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("otp: numeric code generation failed: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
