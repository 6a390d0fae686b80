package domain

import "time"

// User is an account that can authenticate against the service. The
// credential is an HMAC-SHA512 digest plus the per-user random salt used as
// the HMAC key; plaintext passwords are never stored or derivable.
type User struct {
	ID           string
	Username     string // unique, case-sensitive
	PasswordHash []byte
	PasswordSalt []byte
	Role         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
