package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// NewValidator returns a validator with the helpdesk tags registered and json
// field names used in error reports.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("ticket_type", func(fl validator.FieldLevel) bool {
		return domain.TicketType(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
		return apperrors.ValidRUT(fl.Field().String())
	})
	return validate
}

// validationError converts validator output into a field-scoped domain error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return apperrors.NewFieldValidationError(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "passwords do not match"
	case "slug":
		return "must contain lowercase letters, digits, dashes or underscores"
	case "ticket_type":
		return "unknown ticket type"
	case "rut":
		return "invalid national id; expected 12345678-9"
	default:
		return "is invalid"
	}
}
