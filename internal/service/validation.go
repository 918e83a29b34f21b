package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/calendar-scolar-api/internal/models"
	appErrors "github.com/noah-isme/calendar-scolar-api/pkg/errors"
	"github.com/noah-isme/calendar-scolar-api/pkg/sanitize"
)

var schoolYearPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// NewValidator returns a validator with the calendar-specific tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerValidators(v)
	return v
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerValidators(v)
	return v
}

func registerValidators(v *validator.Validate) {
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return sanitize.IsValidSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("hexcolor_or_empty", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || sanitize.IsValidHexColor(value)
	})
	_ = v.RegisterValidation("event_category", func(fl validator.FieldLevel) bool {
		return models.EventType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("vacation_type", func(fl validator.FieldLevel) bool {
		return models.VacationType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("school_year", func(fl validator.FieldLevel) bool {
		return validSchoolYear(fl.Field().String())
	})
	_ = v.RegisterValidation("http_url", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || sanitize.IsValidURL(value)
	})
}

// validSchoolYear accepts "YYYY-YYYY" where the second year follows the first.
func validSchoolYear(value string) bool {
	if !schoolYearPattern.MatchString(value) {
		return false
	}
	first, _ := strconv.Atoi(value[:4])
	second, _ := strconv.Atoi(value[5:])
	return second == first+1
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// optionalText trims s and maps blank values to nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
