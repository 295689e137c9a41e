package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// otpLength is the number of digits in a reset code.
const otpLength = 6

// generateOTP returns a uniformly random numeric code of n digits,
// zero-padded on the left.
func generateOTP(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}

	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%0*d", n, v), nil
}
