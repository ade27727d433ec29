package auth

import "github.com/google/uuid"

// NewCode returns a random single-use code for email verification or
// password reset.
func NewCode() string {
	return uuid.NewString()
}
