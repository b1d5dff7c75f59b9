package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kbukum/pipelinekit/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Merge appends the field errors of an AppError produced by Validate, with
// every field name prefixed.
func (v *Validator) Merge(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		v.AddError(prefix, err.Error())
		return v
	}
	fields, _ := appErr.Details["fields"].([]FieldError)
	if len(fields) == 0 {
		v.AddError(prefix, appErr.Message)
		return v
	}
	for _, f := range fields {
		v.AddError(prefix+"."+f.Field, f.Message)
	}
	return v
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}

	return appErr
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Regexp checks that a non-empty string compiles as a regular expression.
func (v *Validator) Regexp(field, pattern string) *Validator {
	if pattern == "" {
		return v
	}
	if _, err := regexp.Compile(pattern); err != nil {
		v.AddError(field, "must be a valid regular expression")
	}
	return v
}

// OrderedFloat checks lo <= hi when both bounds are set.
func (v *Validator) OrderedFloat(field string, lo, hi *float64) *Validator {
	if lo != nil && hi != nil && *lo > *hi {
		v.AddError(field, fmt.Sprintf("minimum %v must not exceed maximum %v", *lo, *hi))
	}
	return v
}

// OrderedInt checks lo <= hi when both bounds are set.
func (v *Validator) OrderedInt(field string, lo, hi *int) *Validator {
	if lo != nil && hi != nil && *lo > *hi {
		v.AddError(field, fmt.Sprintf("minimum %d must not exceed maximum %d", *lo, *hi))
	}
	return v
}

// Unique checks that a value has not been seen under the given set.
func (v *Validator) Unique(field, value string, seen map[string]bool) *Validator {
	if seen[value] {
		v.AddError(field, fmt.Sprintf("duplicate value %q", value))
	}
	seen[value] = true
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
