package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// MinKeySize is the minimum acceptable HMAC signing key length in bytes.
// Anything shorter than 256 bits is refused at construction time.
const MinKeySize = 32

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// HS256Signer implements the Signer interface using HMAC-SHA256 with a
// shared symmetric key.
type HS256Signer struct {
	key []byte
	alg string
}

// NewSignerHS256 creates an HS256 signer from raw key bytes. A missing or
// weak key is a configuration error and is rejected eagerly so the process
// fails at startup rather than on the first login.
func NewSignerHS256(key []byte) (*HS256Signer, error) {
	s := &HS256Signer{key: key, alg: jwt.SigningMethodHS256.Alg()}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.key)
}

// Validate does a quick sanity check on the key material.
func (s *HS256Signer) Validate() error {
	if len(s.key) == 0 {
		return ErrMissingKey
	}
	if len(s.key) < MinKeySize {
		return ErrWeakKey
	}
	return nil
}
