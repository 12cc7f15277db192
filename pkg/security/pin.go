package security

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
)

// GeneratePIN produces a random numeric PIN of the given length.
func GeneratePIN(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buff := make([]byte, length)
	if _, err := rand.Read(buff); err != nil {
		return "", err
	}

	digits := make([]byte, length)
	for i, b := range buff {
		digits[i] = '0' + b%10
	}
	return string(digits), nil
}

// PINEqual compares two PINs in constant time.
func PINEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
