package service

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/driftchat/backend/internal/common/constants"
)

// ChangeRequest is the inbound payload of a profile mutation. Username is
// optional; the password is always required for re-verification and never
// leaves this struct.
type ChangeRequest struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=2,max=32,username_chars"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

// RequestValidator checks the structural constraints of a ChangeRequest.
// The username charset is injected at construction so the pattern lives in
// configuration, not in a package-level global.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator(usernamePattern *regexp.Regexp) (*RequestValidator, error) {
	v := validator.New()

	err := v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register username validation: %w", err)
	}

	return &RequestValidator{validate: v}, nil
}

// Validate returns nil when the request is well formed; otherwise a
// VALIDATION_FAILED domain error carrying per-field detail. No side effects.
func (rv *RequestValidator) Validate(req ChangeRequest) error {
	err := rv.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ErrValidation.WithCause(err)
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.StructField() {
		case "Username":
			details["username"] = fmt.Sprintf(
				"must be %d-%d characters matching the allowed charset",
				constants.UsernameMinLength, constants.UsernameMaxLength,
			)
		case "Password":
			details["password"] = fmt.Sprintf(
				"must be between %d and %d characters",
				constants.PasswordMinLength, constants.PasswordMaxLength,
			)
		}
	}

	return ErrValidation.WithDetails(details)
}
