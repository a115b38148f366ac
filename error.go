package docmirror

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// Codes classify failures for programmatic handling at package boundaries.
// They map onto the failure taxonomy of a sync run: transport errors were
// retried and still failed, rate limits carry the server's back-off hint,
// validation and discovery errors are terminal for their scope.
const (
	ECONFIG    = "config"     // invalid configuration value
	EDISCOVERY = "discovery"  // link list could not be fetched or parsed
	EINTERNAL  = "internal"   // unexpected internal error
	EINVALID   = "invalid"    // content or input failed validation
	ENOTFOUND  = "not_found"  // entity does not exist
	ERATELIMIT = "rate_limit" // upstream asked us to back off
	ETRANSPORT = "transport"  // network or HTTP failure
)

// Error represents an application-specific error. Errors carry a machine
// readable code and a human readable message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docmirror error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error."
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf returns an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
