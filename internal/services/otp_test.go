package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := generateOTP(otpLength)
		assert.NoError(t, err)
		assert.Len(t, code, otpLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "non-digit in otp: %q", code)
		}
		seen[code] = struct{}{}
	}
	// 100 draws from a million values collapsing to one would mean a
	// broken generator.
	assert.Greater(t, len(seen), 1)
}

func TestGenerateOTPLengths(t *testing.T) {
	for _, n := range []int{4, 6, 8} {
		code, err := generateOTP(n)
		assert.NoError(t, err)
		assert.Len(t, code, n)
	}
}
