package auth

import (
	"strings"
	"testing"
)

// Cost 4 is the bcrypt minimum; tests would crawl at the production cost.
func newTestPasswords() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestPasswordHashAndVerify(t *testing.T) {
	ps := newTestPasswords()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %q, want a bcrypt hash", hash)
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
}

func TestPasswordVerifyMismatch(t *testing.T) {
	ps := newTestPasswords()

	hash, err := ps.Hash("right-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() with wrong password should fail")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	ps := newTestPasswords()

	h1, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt missing")
	}
}

func TestPasswordTooLong(t *testing.T) {
	ps := newTestPasswords()

	// bcrypt truncates beyond 72 bytes; we reject instead.
	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}

	if _, err := ps.Hash(strings.Repeat("x", 72)); err != nil {
		t.Errorf("Hash() should accept a 72-byte password, got %v", err)
	}
}
