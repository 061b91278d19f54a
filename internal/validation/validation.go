// Package validation wraps go-playground/validator so that create and update
// paths share one set of shape rules and handlers get back a structured list
// of violations instead of a single ad-hoc message.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a tagged request struct and returns one message per
// violated rule. A nil return means the value passed.
func Struct(s any) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"validation failed"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return msgs
}

// Password checks the complexity rules applied at registration and password
// change: minimum length 8, at least one digit, at least one special
// character. It returns an empty string when the password is acceptable,
// otherwise a message naming the violated rule.
func Password(pw string) string {
	if len(pw) < 8 {
		return "password must be at least 8 characters long"
	}
	var hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSpecial = true
		}
	}
	if !hasDigit {
		return "password must contain at least one number"
	}
	if !hasSpecial {
		return "password must contain at least one special character"
	}
	return ""
}

func message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
