package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// passwordIterations is the PBKDF2 round count. High enough to resist
	// offline brute force; changing it invalidates no stored hashes because
	// each hash re-derives with the embedded salt at the current count.
	passwordIterations = 120_000
	saltSize           = 16
	keySize            = sha256.Size
)

// HashPassword derives a salted PBKDF2-SHA256 hash encoded as
// "hex(salt)$hex(key)". A fresh salt means the same password never
// produces the same stored hash twice.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(password), salt, passwordIterations, keySize, sha256.New)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// VerifyPassword re-derives the key with the embedded salt and compares in
// constant time. A malformed stored hash verifies false, never panics.
func VerifyPassword(password, storedHash string) bool {
	saltHex, keyHex, ok := strings.Cut(storedHash, "$")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	expected, err := hex.DecodeString(keyHex)
	if err != nil || len(expected) != keySize {
		return false
	}
	derived := pbkdf2.Key([]byte(password), salt, passwordIterations, keySize, sha256.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
