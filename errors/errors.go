// Package errors provides the error taxonomy shared by the sampling pipeline.
//
// Callers distinguish failure classes with the standard library:
//
//	if errors.Is(err, apperrors.ErrInvalidParameter) { ... }
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"
	// CodeInvalidParameter marks a configuration value which cannot produce a
	// meaningful result (non-positive voxel size, singular Poisson ratio, ...).
	CodeInvalidParameter Code = "INVALID_PARAMETER"
	// CodeOutOfResources marks a run which would exceed its voxel or particle
	// allocation limits.
	CodeOutOfResources Code = "OUT_OF_RESOURCES"
	// CodeInvalidInput marks a malformed input file.
	CodeInvalidInput Code = "INVALID_INPUT"
)

var (
	// ErrInvalidParameter matches any error with CodeInvalidParameter.
	ErrInvalidParameter = New(CodeInvalidParameter, "invalid parameter")
	// ErrOutOfResources matches any error with CodeOutOfResources.
	ErrOutOfResources = New(CodeOutOfResources, "out of resources")
	// ErrInvalidInput matches any error with CodeInvalidInput.
	ErrInvalidInput = New(CodeInvalidInput, "invalid input")
)

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// GetCode extracts the code from an error chain, or CodeUnknown.
func GetCode(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return CodeUnknown
}
