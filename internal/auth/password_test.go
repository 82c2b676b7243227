package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	// Minimum cost keeps the suite fast; correctness doesn't depend on cost.
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestPassword_HashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() rejected the correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestPassword_HashesAreSalted(t *testing.T) {
	ps := newTestPasswordService()

	h1, _ := ps.Hash("same password")
	h2, _ := ps.Hash("same password")
	if h1 == h2 {
		t.Error("Hash() produced identical hashes for the same password (no salt?)")
	}
}

func TestPassword_RejectsOverlongPlaintext(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject plaintexts over 72 bytes instead of truncating")
	}
}
