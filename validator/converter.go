// Package validator converts ozzo-validation failures into coded errors
// so configuration and request validation surface uniformly at the HTTP
// boundary.
package validator

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fedgate/admission/errcode"
)

// ErrValidationFailed is the shared code for any field-level validation
// failure; the offending fields travel in the error data.
var ErrValidationFailed = errcode.Register(errcode.New(
	1, 1010, "common", "VALIDATION_FAILED",
	"validation failed", 400))

// Validatable is anything with a Validate method, including every
// ozzo-validated config struct in this module.
type Validatable interface {
	Validate() error
}

// ValidateRequest runs Validate and converts ozzo field errors into one
// coded error. Non-ozzo errors pass through unchanged.
func ValidateRequest(req Validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validation.Errors); ok {
		return ConvertValidationError(fieldErrs)
	}
	return err
}

// ConvertValidationError flattens ozzo field errors into
// ErrValidationFailed with a fields map.
func ConvertValidationError(fieldErrs validation.Errors) error {
	fields := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return ErrValidationFailed.WithData("fields", fields)
}
