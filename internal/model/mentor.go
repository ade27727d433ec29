package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/mentor-directory/internal/apperror"
)

// RelatedKind names one of a mentor's many-to-many lists. The string value is
// also the JSON field name used by the API.
type RelatedKind string

const (
	KindMajor  RelatedKind = "major"
	KindMinor  RelatedKind = "minor"
	KindCourse RelatedKind = "courses"
)

const (
	MaxMajors = 2
	MaxMinors = 3
)

// RelatedKinds is the fixed order in which lists are written.
var RelatedKinds = []RelatedKind{KindMajor, KindMinor, KindCourse}

// Limit returns the maximum list length for the kind, 0 meaning unbounded.
func (k RelatedKind) Limit() int {
	switch k {
	case KindMajor:
		return MaxMajors
	case KindMinor:
		return MaxMinors
	default:
		return 0
	}
}

// Table returns the entity table backing the kind.
func (k RelatedKind) Table() string {
	switch k {
	case KindMajor:
		return "majors"
	case KindMinor:
		return "minors"
	case KindCourse:
		return "courses"
	}
	panic(fmt.Sprintf("model: unknown related kind %q", string(k)))
}

// Named is the wire shape of a major, minor or course.
type Named struct {
	Name string `json:"name"`
}

// MentorProfile is the profile and account data embedded in a mentor result.
type MentorProfile struct {
	ID          string `json:"id"`
	Year        Year   `json:"year"`
	PhoneNumber string `json:"phone_number"`
	Verified    bool   `json:"verified"`
	AccountID   string `json:"account_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
}

// Mentor is a profile that opted into the directory. Seq is the storage
// insertion order and defines the default result order.
type Mentor struct {
	ID        string        `json:"id"`
	Seq       int64         `json:"-"`
	Active    bool          `json:"active"`
	Bio       string        `json:"bio"`
	Profile   MentorProfile `json:"profile"`
	Majors    []Named       `json:"major"`
	Minors    []Named       `json:"minor"`
	Courses   []Named       `json:"courses"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Related returns the list for kind.
func (m *Mentor) Related(kind RelatedKind) []Named {
	switch kind {
	case KindMajor:
		return m.Majors
	case KindMinor:
		return m.Minors
	default:
		return m.Courses
	}
}

// SetRelated replaces the list for kind.
func (m *Mentor) SetRelated(kind RelatedKind, names []Named) {
	switch kind {
	case KindMajor:
		m.Majors = names
	case KindMinor:
		m.Minors = names
	default:
		m.Courses = names
	}
}

// MentorUpdate is a partial update. Nil pointers are left alone; a kind
// present in Related replaces that whole list, an empty slice clearing it.
type MentorUpdate struct {
	MentorID string
	Active   *bool
	Bio      *string
	Related  map[RelatedKind][]string
}

// Normalize runs NormalizeNames over every list in the update.
func (u *MentorUpdate) Normalize() error {
	for kind, names := range u.Related {
		out, err := NormalizeNames(kind, names)
		if err != nil {
			return err
		}
		u.Related[kind] = out
	}
	return nil
}

// NormalizeNames trims names, drops case-insensitive duplicates (first
// spelling wins, order kept) and enforces the cardinality limit of kind.
func NormalizeNames(kind RelatedKind, names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, apperror.ValidationFailed(string(kind), fmt.Sprintf("%s names must not be empty", kind))
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	if limit := kind.Limit(); limit > 0 && len(out) > limit {
		return nil, apperror.CardinalityExceeded(string(kind), limit, len(out))
	}
	return out, nil
}
