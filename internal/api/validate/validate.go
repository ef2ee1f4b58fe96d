// Package validate wires go-playground/validator with the request shapes the
// portal accepts. The rules mirror the ones enforced at the original API
// boundary: the protocols behind it assume shape-valid input.
package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

var (
	usernameRe    = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	employeeIDRe  = regexp.MustCompile(`^[A-Z0-9]{4,8}$`)
	licenseCodeRe = regexp.MustCompile(`^BP-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	_ = val.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("employee_id", func(fl validator.FieldLevel) bool {
		return employeeIDRe.MatchString(fl.Field().String())
	})
	_ = val.RegisterValidation("license_code", func(fl validator.FieldLevel) bool {
		return licenseCodeRe.MatchString(fl.Field().String())
	})
	return val
}

// Struct validates a request DTO and converts failures into a
// VALIDATION_ERROR DomainError with per-field details.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := make(map[string]any, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("Validation failed", details)
}
