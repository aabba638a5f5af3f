package domain

import "time"

const RoleAdmin = "admin"

// User is an authenticated principal. PasswordHash is nil for accounts
// created through the passwordless flow.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	CreatedAt    time.Time
}

// Token purposes for the single-use auth token table.
const (
	TokenPurposeReset = "reset"
	TokenPurposeMagic = "magic"
)

// AuthToken is a single-use credential for password reset or passwordless
// sign-in. ConsumedAt is set exactly once.
type AuthToken struct {
	Token      string
	UserID     string
	Purpose    string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}
