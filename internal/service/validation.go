package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// emailPattern is the address shape accepted at signup and on the settings
// page.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator.  Field errors are reported
// under their json tag names so messages can quote them directly.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("account_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidEmail reports whether email has an acceptable shape.
func ValidEmail(email string) bool { return emailPattern.MatchString(email) }

// firstFailure validates s and returns the most important failing field.
// Tags are ranked by their position in priority; within a tag, struct field
// order wins.  A nil FieldError means s is valid.
func firstFailure(s any, priority ...string) (validator.FieldError, error) {
	err := getValidator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil, err
	}
	for _, tag := range priority {
		for _, fe := range ves {
			if fe.Tag() == tag {
				return fe, nil
			}
		}
	}
	return ves[0], nil
}
