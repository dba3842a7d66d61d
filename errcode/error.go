// Package errcode provides layered error codes carried across the
// admission layer and rendered at the HTTP boundary.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import (
	"fmt"
	"net/http"
)

// CodedError is an error with a stable machine code, a reason string for
// clients, an HTTP status, and optional context data.
type CodedError struct {
	module     string
	code       int
	reason     string // machine-readable reason, e.g. RATE_LIMITED
	msg        string // human-readable default message
	httpStatus int
	data       map[string]interface{}
	cause      error
}

// New creates a coded error.
// moduleCode: 10-99, businessCode: 0001-9999.
func New(moduleCode, businessCode int, module, reason, msg string, httpStatus ...int) *CodedError {
	status := http.StatusInternalServerError
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &CodedError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		reason:     reason,
		msg:        msg,
		httpStatus: status,
		data:       make(map[string]interface{}),
	}
}

func (e *CodedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full numeric code (MMBBBB).
func (e *CodedError) Code() int { return e.code }

// Module returns the owning module name.
func (e *CodedError) Module() string { return e.module }

// Reason returns the machine-readable reason string.
func (e *CodedError) Reason() string { return e.reason }

// Message returns the human-readable message.
func (e *CodedError) Message() string { return e.msg }

// HTTPStatus returns the HTTP status this error maps to.
func (e *CodedError) HTTPStatus() int { return e.httpStatus }

// Data returns attached context data.
func (e *CodedError) Data() map[string]interface{} { return e.data }

// Unwrap supports errors.Is/As chains.
func (e *CodedError) Unwrap() error { return e.cause }

// Is matches by numeric code so wrapped instances compare equal to their
// registered definition.
func (e *CodedError) Is(target error) bool {
	t, ok := target.(*CodedError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// WithMsg returns a copy with a replaced message.
func (e *CodedError) WithMsg(msg string) *CodedError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf returns a copy with a formatted message.
func (e *CodedError) WithMsgf(format string, args ...interface{}) *CodedError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one context value attached.
func (e *CodedError) WithData(key string, value interface{}) *CodedError {
	clone := *e
	clone.data = e.cloneData()
	clone.data[key] = value
	return &clone
}

// WithFields returns a copy with several context values attached.
func (e *CodedError) WithFields(fields map[string]interface{}) *CodedError {
	clone := *e
	clone.data = e.cloneData()
	for k, v := range fields {
		clone.data[k] = v
	}
	return &clone
}

// Wrap returns a copy chaining the original error.
func (e *CodedError) Wrap(cause error) *CodedError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

func (e *CodedError) cloneData() map[string]interface{} {
	data := make(map[string]interface{}, len(e.data))
	for k, v := range e.data {
		data[k] = v
	}
	return data
}
