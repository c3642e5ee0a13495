package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field rule messages shown next to form inputs.
const (
	MsgRequired         = "This field is required."
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordTooLong  = "Password cannot be longer than 72 bytes."
)

// RegisterInput carries a new account. Its rules match the register form so
// accounts created outside the web form get the same checks.
type RegisterInput struct {
	Name     string `validate:"required,max=50"`
	Username string `validate:"required,min=4,max=25"`
	Email    string `validate:"required,min=6,max=50"`
	Password string `validate:"required,max=72"`
}

type PostInput struct {
	Title    string
	Subtitle string
	Author   string
	Content  string
}

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report "username" rather than "Username"
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.ToLower(f.Name)
	})
	return v
}

// Validate checks the field rules and returns FieldErrors when any fail.
func (in RegisterInput) Validate() error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate registration: %w", err)
	}
	return FieldErrorsFrom(verrs)
}

// FieldErrors maps a form field name to a message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// FieldErrorsFrom keeps the first failed rule per field.
func FieldErrorsFrom(verrs validator.ValidationErrors) FieldErrors {
	fields := FieldErrors{}
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = ValidationMessage(fe)
	}
	return fields
}

// ValidationMessage words a failed rule for display.
func ValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return MsgPasswordMismatch
	default:
		return "Invalid value."
	}
}
