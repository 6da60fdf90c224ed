// Package staff holds the shared staff credential and the staff login
// endpoint.
package staff

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"github.com/cornerstone-fellowship/backend/config"
)

// Credential is the single shared staff secret. A bcrypt hash is preferred;
// the plain form exists for parity with the deployed configuration.
type Credential struct {
	plain string
	hash  string
}

func NewCredential(cfg config.StaffConfig) *Credential {
	return &Credential{plain: cfg.Password, hash: cfg.PasswordHash}
}

// Matches reports whether the presented password is the staff secret.
func (c *Credential) Matches(password string) bool {
	if password == "" {
		return false
	}
	if c.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.hash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(c.plain), []byte(password)) == 1
}
