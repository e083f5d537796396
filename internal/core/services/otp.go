package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomOTP generates a 6-digit numeric code using crypto/rand. No pack
// library offers a bare "random numeric code" primitive — pquerna/otp (seen
// in the pack's other_examples manifests) builds HOTP/TOTP codes tied to a
// shared secret, not a one-shot confirmation code, so it has no home here.
type RandomOTP struct{}

func (RandomOTP) Generate() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// FixedOTP always returns the same code, for local development where a
// predictable confirmation code saves the caller from reading a log line.
type FixedOTP struct {
	Code string
}

func (f FixedOTP) Generate() string {
	if f.Code == "" {
		return "1234"
	}
	return f.Code
}
