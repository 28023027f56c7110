package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity providers
const (
	ProviderOIDC  = "oidc"
	ProviderLocal = "local"
)

// User represents an authenticated user, either via OIDC or a local account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Sub          string    `json:"sub"` // OIDC subject, or "local|<email>" for local accounts
	Provider     string    `json:"provider"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocalSub returns the subject identifier used for a local account.
func LocalSub(email string) string {
	return ProviderLocal + "|" + strings.ToLower(strings.TrimSpace(email))
}

// IsLocal returns true if the user signs in with a password.
func (u *User) IsLocal() bool {
	return u.Provider == ProviderLocal
}

// DisplayName returns the name to show in the page header.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
