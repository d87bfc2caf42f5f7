package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

// charset is the alphabet for auto-generated codes: alphanumeric only
// (no '_'/'-') so generated codes read cleanly; custom codes may still
// use the full class validated by customCodePattern.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// autoCodeLength is sized so the generated code carries at least 64 bits
// of entropy: log2(62) ≈ 5.95 bits/char, 11 chars ≈ 65.5 bits.
const autoCodeLength = 11

const (
	minCustomCodeLength = 6
	maxCustomCodeLength = 64
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GenerateCode returns a cryptographically random short code of
// autoCodeLength characters drawn from charset.
func GenerateCode() (string, error) {
	return randomCode(autoCodeLength)
}

func randomCode(n int) (string, error) {
	result := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = charset[idx.Int64()]
	}
	return string(result), nil
}

// ValidateCustomCode checks that a caller-supplied code matches
// [A-Za-z0-9_-]{6,64}.
func ValidateCustomCode(code string) error {
	if len(code) < minCustomCodeLength || len(code) > maxCustomCodeLength {
		return ValidationError(
			"custom code must be between 6 and 64 characters",
			map[string]any{"length": len(code)},
		)
	}
	if !customCodePattern.MatchString(code) {
		return ValidationError(
			"custom code may only contain letters, digits, '_' and '-'",
			map[string]any{"code": code},
		)
	}
	return nil
}
