package utils

import "testing"

func TestHashPasswordDeterministic(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	if HashPassword("hunter22", salt) != HashPassword("hunter22", salt) {
		t.Fatal("same password and salt must hash identically")
	}
}

func TestHashPasswordDependsOnSalt(t *testing.T) {
	t.Parallel()

	s1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	s2, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	if s1 == s2 {
		t.Fatal("two fresh salts collided")
	}
	if HashPassword("hunter22", s1) == HashPassword("hunter22", s2) {
		t.Fatal("different salts must produce different hashes")
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt error: %v", err)
	}
	hash := HashPassword("correct horse", salt)

	if !CheckPassword("correct horse", salt, hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong horse", salt, hash) {
		t.Fatal("wrong password accepted")
	}
	if CheckPassword("correct horse", "00000000000000000000000000000000", hash) {
		t.Fatal("wrong salt accepted")
	}
}
