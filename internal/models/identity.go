package models

import (
	"fmt"
	"net/mail"
	"time"
)

// Provider names of stored accounts.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Account is a row of the identity directory.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PhotoURL     string
	PasswordHash string // bcrypt hash; empty for federated-only accounts
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks that the account can be stored.
func (a Account) Validate() error {
	if a.Email == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil {
		return fmt.Errorf("invalid email %q", a.Email)
	}
	if a.Provider == ProviderPassword && a.PasswordHash == "" {
		return fmt.Errorf("password account %s has no password hash", a.Email)
	}
	return nil
}

// SessionRecord is an issued session token. A token is usable while its record is neither revoked nor expired.
type SessionRecord struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session may still authenticate requests at now.
func (s SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Notification is a message kept in an account's inbox until read.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// Unread reports whether the notification has not been seen yet.
func (n Notification) Unread() bool {
	return n.ReadAt == nil
}
