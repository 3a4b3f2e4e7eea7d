package model

import "time"

// Credential is a login identity stored in the `credentials` table.  It is
// created together with a Profile at registration and read at login.  The
// password hash never leaves the repository and service layers.
//
// Fields:
//  ID           – primary key (UUID string), copied into profiles.id at registration.
//  Username     – unique login name.
//  Email        – unique email address; the key used to find the owning Profile.
//  PasswordHash – bcrypt hash of the password.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  IsActive     – inactive credentials cannot log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Credential struct {
	ID           string    // credentials.id
	Username     string    // credentials.username
	Email        string    // credentials.email
	PasswordHash string    // credentials.password_hash
	FirstName    string    // credentials.first_name
	LastName     string    // credentials.last_name
	IsActive     bool      // credentials.is_active
	CreatedAt    time.Time // credentials.created_at
	UpdatedAt    time.Time // credentials.updated_at
}

// PublicUser is the externally visible part of a Credential.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Public strips the password hash and bookkeeping columns.
func (c Credential) Public() PublicUser {
	return PublicUser{
		ID:        c.ID,
		Username:  c.Username,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the raw token is stored.
type RefreshToken struct {
	ID           uint64     // refresh_tokens.id
	CredentialID string     // refresh_tokens.credential_id
	TokenHash    string     // refresh_tokens.token_hash
	ExpiresAt    time.Time  // refresh_tokens.expires_at
	RevokedAt    *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt    time.Time  // refresh_tokens.created_at
}
