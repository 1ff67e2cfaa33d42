package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/savora-backend/internal/identity"
	"github.com/go-playground/validator/v10"
)

const (
	MinTitleLength    = 3
	MaxCommentLength  = 1000
	MaxFullNameLength = 100
	MaxBioLength      = 500
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// Validate is the shared struct validator for request payloads. Field
// names in failures are the json names.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the struct tags of v and reports the first failing
// field as a validation error.
func ValidateStruct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		return validationError(field+"_invalid", field+" is invalid ("+fe.Tag()+")")
	}
	return validationError("invalid_request", "invalid request")
}

func requireIdentity(id *identity.Identity) error {
	if id == nil {
		return ErrUnauthenticated
	}
	return nil
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return validationError("username_format",
			"username must be 3-20 characters and contain only letters, digits and underscores")
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// cleanSteps trims each entry and drops blank ones.
func cleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// optionalString trims s and maps the empty string to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
