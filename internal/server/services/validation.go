package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/colisso/internal/common"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[\+]?[0-9\s\-\(\)]{8,}$`)
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return common.NewValidationError(field, "is required")
	}
	return nil
}

func optionalEmail(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !emailPattern.MatchString(*value) {
		return common.NewValidationError(field, "invalid email address")
	}
	return nil
}

func optionalPhone(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !phonePattern.MatchString(*value) {
		return common.NewValidationError(field, "invalid phone number")
	}
	return nil
}

// positiveOr returns def when v is nil, or *v when it is strictly positive.
func positiveOr(field string, v *float64, def float64) (float64, error) {
	if v == nil {
		return def, nil
	}
	if *v <= 0 {
		return 0, common.NewValidationError(field, "must be positive")
	}
	return *v, nil
}

// CheckParcel applies the label input rules to an already assembled parcel:
// positive weight and dimensions, and a cost that is not negative.
func CheckParcel(weight, length, width, height float64, cost *float64) error {
	check := func(field string, v float64) error {
		_, err := positiveOr(field, &v, 0)
		return err
	}
	return firstError(
		check("weight", weight),
		check("length", length),
		check("width", width),
		check("height", height),
		nonNegative("cost", cost),
	)
}

func nonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return common.NewValidationError(field, "must not be negative")
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// trimmed returns nil for nil or blank strings.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, common.ErrorNotFound)
}
