package limiter

import "errors"

var (
	// ErrInvalidConfig reported for unusable limiter configuration.
	ErrInvalidConfig = errors.New("invalid limiter config")
)

// ValidationError describes one failed config field check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "limiter config validation failed for field '" + e.Field + "': " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}
