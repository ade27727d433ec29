// Package model defines the data structures used throughout the application.
package model

import "time"

// Account is a registered user. The email doubles as the login name and is
// unique regardless of case.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // empty for accounts created through SSO
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
