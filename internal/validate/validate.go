// Package validate wraps a shared go-playground validator with the rules the
// API needs and turns its errors into apperror values.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/mentor-directory/internal/apperror"
	"github.com/sakif/mentor-directory/internal/model"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON (or mapstructure) name.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	must(val.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return model.PhonePattern.MatchString(fl.Field().String())
	}))
	must(val.RegisterValidation("year", func(fl validator.FieldLevel) bool {
		return model.Year(fl.Field().String()).Valid()
	}))
	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates s and returns the first failure as an
// apperror.ValidationFailed naming the field.
func Struct(s any) error {
	return convert(v.Struct(s), "")
}

// Var validates a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	return convert(v.Var(value, tag), field)
}

// Email reports whether s is a single well-formed address.
func Email(s string) bool {
	return strings.Count(s, "@") == 1 && v.Var(s, "required,email") == nil
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperror.ValidationFailed(field, err.Error())
	}
	fe := errs[0]
	if field == "" {
		field = fe.Field()
	}
	return apperror.ValidationFailed(field, message(field, fe))
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "phone":
		return fmt.Sprintf("%s must look like (012)345-6789", field)
	case "year":
		return fmt.Sprintf("%s must be one of freshman, sophomore, junior, senior", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s accepts at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
