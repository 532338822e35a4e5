package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash equals plaintext")
	}

	if err := VerifyPassword(hash, "correct-horse-battery"); err != nil {
		t.Errorf("VerifyPassword rejected the right password: %v", err)
	}

	if err := VerifyPassword(hash, "wrong-password-here"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestGenerateTempPassword(t *testing.T) {
	first := GenerateTempPassword()
	second := GenerateTempPassword()

	if len(first) != TempPasswordLength {
		t.Errorf("expected length %d, got %d", TempPasswordLength, len(first))
	}
	if first == second {
		t.Error("two generated passwords are identical")
	}
	if !IsPasswordValid(first) {
		t.Error("generated password fails the minimum length check")
	}
}
