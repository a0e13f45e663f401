package errors

import (
	"strings"
)

// ValidateEnum checks that value is one of the allowed choices, returning a
// structured error with the given code otherwise. Component configs use this
// for mode, metric, and scheme fields.
func ValidateEnum(code Code, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(code, "invalid %s: %q (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}

// ValidateRange checks that value lies in [min, max] inclusive.
func ValidateRange(code Code, field string, value, min, max float64) error {
	if value < min || value > max {
		return New(code, "%s must be between %g and %g, got %g", field, min, max, value)
	}
	return nil
}

// ValidatePositive checks that value is strictly greater than zero.
func ValidatePositive(code Code, field string, value float64) error {
	if value <= 0 {
		return New(code, "%s must be positive, got %g", field, value)
	}
	return nil
}
