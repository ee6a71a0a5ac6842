package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing keeps the salt as a separate field on the user record so
// a password change can rotate salt and hash together. PBKDF2-SHA256 is
// used as the derivation function; the parameters are fixed because every
// stored hash must stay verifiable.
const (
	saltBytes   = 16
	pbkdf2Iters = 4096
	pbkdf2Len   = 32
)

// NewSalt returns a fresh random salt as a hex string. Each user gets a
// new salt at creation and at every password change.
func NewSalt() (string, error) {
	return randomHex(saltBytes)
}

// HashPassword derives the stored hash from a plaintext password and a
// hex-encoded salt. The result is deterministic for a given (password,
// salt) pair, which is what verification relies on.
func HashPassword(plain, salt string) string {
	sum := pbkdf2.Key([]byte(plain), []byte(salt), pbkdf2Iters, pbkdf2Len, sha256.New)
	return hex.EncodeToString(sum)
}

// CheckPassword recomputes the hash for plain with the stored salt and
// compares it to the stored hash in constant time.
func CheckPassword(plain, salt, storedHash string) bool {
	computed := HashPassword(plain, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
