package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mentor-directory/internal/apperror"
)

type sample struct {
	Email  string   `json:"email" validate:"required,email"`
	Phone  string   `json:"phone_number" validate:"omitempty,phone"`
	Year   string   `json:"year" validate:"omitempty,year"`
	Majors []string `json:"major" validate:"max=2"`
	Secret string   `json:"-" validate:"omitempty,min=8"`
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "want *AppError, got %T", err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	return appErr.Field
}

func TestStruct(t *testing.T) {
	valid := sample{Email: "a@g.ucla.edu", Phone: "(012)345-6789", Year: "junior", Majors: []string{"x"}}
	assert.NoError(t, Struct(valid))

	tests := []struct {
		name      string
		mutate    func(*sample)
		wantField string
		wantMsg   string
	}{
		{"missing email", func(s *sample) { s.Email = "" }, "email", "email is required"},
		{"double at", func(s *sample) { s.Email = "test@veryfakedomain.com@ucla.edu" }, "email", "email must be a valid email address"},
		{"bad phone", func(s *sample) { s.Phone = "012-345-6789" }, "phone_number", "phone_number must look like (012)345-6789"},
		{"bad year", func(s *sample) { s.Year = "fifth" }, "year", "year must be one of freshman, sophomore, junior, senior"},
		{"too many majors", func(s *sample) { s.Majors = []string{"a", "b", "c"} }, "major", "major accepts at most 2 entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := Struct(s)
			require.Error(t, err)
			assert.Equal(t, tt.wantField, fieldOf(t, err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("password", "long-enough", "min=8"))

	err := Var("password", "short", "min=8")
	require.Error(t, err)
	assert.Equal(t, "password", fieldOf(t, err))
	assert.Equal(t, "password must be at least 8 characters", err.Error())
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("ann@g.ucla.edu"))
	assert.False(t, Email("test@veryfakedomain.com@ucla.edu"))
	assert.False(t, Email("not-an-email"))
	assert.False(t, Email(""))
}
