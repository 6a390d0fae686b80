package credx

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"
)

const (
	// SaltLength is the size of the per-credential random salt. The salt is
	// used directly as the HMAC key, so it matches the SHA-512 block-friendly
	// key size of 64 bytes.
	SaltLength = 64

	// HashLength is the SHA-512 digest size.
	HashLength = sha512.Size
)

// Create derives a credential from a plaintext password. It draws a fresh
// random salt and computes HMAC-SHA512 over the UTF-8 password bytes with the
// salt as the key. The salt is never reused between credentials.
func Create(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("credx: generate salt: %w", err)
	}

	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil), salt, nil
}

// Verify recomputes the keyed hash for a candidate password with the stored
// salt and compares it against the stored hash in constant time. It reports
// whether the password matches; it never reveals which byte diverged.
func Verify(password string, storedHash, storedSalt []byte) bool {
	if len(storedHash) == 0 || len(storedSalt) == 0 {
		return false
	}

	mac := hmac.New(sha512.New, storedSalt)
	mac.Write([]byte(password))
	computed := mac.Sum(nil)

	return subtle.ConstantTimeCompare(computed, storedHash) == 1
}
