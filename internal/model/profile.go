package model

import (
	"regexp"
	"time"
)

// Year is the academic standing stored on a profile.
type Year string

const (
	YearFreshman  Year = "freshman"
	YearSophomore Year = "sophomore"
	YearJunior    Year = "junior"
	YearSenior    Year = "senior"
)

// Years lists the valid values in order.
var Years = []Year{YearFreshman, YearSophomore, YearJunior, YearSenior}

func (y Year) Valid() bool {
	for _, v := range Years {
		if y == v {
			return true
		}
	}
	return false
}

// PhonePattern is the only accepted phone number format, e.g. (012)345-6789.
var PhonePattern = regexp.MustCompile(`^\(([0-9]{3})\)([0-9]{3})[-]([0-9]{4})$`)

// Profile belongs to exactly one account. The two codes are single-use and
// are cleared once consumed.
type Profile struct {
	ID                string    `json:"id"`
	AccountID         string    `json:"account_id"`
	Year              Year      `json:"year"`
	PhoneNumber       string    `json:"phone_number"` // empty when not provided
	Verified          bool      `json:"verified"`
	VerificationCode  *string   `json:"-"`
	PasswordResetCode *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
