package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/antimatter-studios/cognito-local/internal/core/services"
)

func TestRandomOTPIsSixDigits(t *testing.T) {
	otp := services.RandomOTP{}
	for i := 0; i < 20; i++ {
		code := otp.Generate()
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "expected a digit, got %q", code)
		}
	}
}

func TestFixedOTP(t *testing.T) {
	t.Run("returns the configured code", func(t *testing.T) {
		otp := services.FixedOTP{Code: "5555"}
		assert.Equal(t, "5555", otp.Generate())
		assert.Equal(t, "5555", otp.Generate())
	})

	t.Run("falls back to 1234 when no code is configured", func(t *testing.T) {
		otp := services.FixedOTP{}
		assert.Equal(t, "1234", otp.Generate())
	})
}
