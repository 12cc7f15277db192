package security

import (
	"testing"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	encoded, err := HashPassword("correct horse", cfg)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	ok, err := VerifyPassword("correct horse", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong horse", encoded)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch to fail verification")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := VerifyPassword("anything", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestGeneratePIN(t *testing.T) {
	pin, err := GeneratePIN(5)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(pin) != 5 {
		t.Fatalf("expected 5 digits, got %q", pin)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric pin, got %q", pin)
		}
	}
}

func TestPINEqual(t *testing.T) {
	if !PINEqual("12345", "12345") {
		t.Fatal("expected equal pins to match")
	}
	if PINEqual("12345", "12344") || PINEqual("12345", "1234") {
		t.Fatal("expected mismatched pins to fail")
	}
}
