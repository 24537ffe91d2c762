package errors

import "fmt"

// ErrorCode represents a Tradehand error code.
type ErrorCode string

const (
	ErrValidation         ErrorCode = "VALIDATION"           // 400
	ErrInvalidTransition  ErrorCode = "INVALID_TRANSITION"   // 400
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"         // 401
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrNoActionableIntent ErrorCode = "NO_ACTIONABLE_INTENT" // 422
	ErrPersistence        ErrorCode = "PERSISTENCE"          // 500
	ErrInternal           ErrorCode = "INTERNAL"             // 500
	ErrAIUnavailable      ErrorCode = "AI_UNAVAILABLE"       // 502
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for invalid request parameters.
func NewValidation(msg string) *Error {
	return &Error{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidTransition creates a 400 error for a task status transition
// outside pending→approved and pending→skipped.
func NewInvalidTransition(from, to string) *Error {
	return &Error{
		Code:    ErrInvalidTransition,
		Status:  400,
		Message: fmt.Sprintf("cannot transition task from %q to %q", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// NewUnauthorized creates a 401 error for missing or unknown bearer tokens.
func NewUnauthorized() *Error {
	return &Error{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "missing or invalid bearer token",
	}
}

// NewNotFound creates a 404 error. Used both for genuinely missing records
// and for records owned by another user, so existence is never leaked.
func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewNoActionableIntent creates a 422 error for transcriptions the model
// produced no usable function calls for.
func NewNoActionableIntent(captureID string) *Error {
	return &Error{
		Code:    ErrNoActionableIntent,
		Status:  422,
		Message: "no actionable intent found in transcription",
		Details: map[string]any{"capture_id": captureID},
	}
}

// NewPersistence creates a 500 error for a store write that was rejected.
func NewPersistence(err error) *Error {
	msg := "store write failed"
	if err != nil {
		msg = fmt.Sprintf("store write failed: %v", err)
	}
	return &Error{
		Code:    ErrPersistence,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewAIUnavailable creates a 502 error for a failed or timed-out model call.
func NewAIUnavailable(err error) *Error {
	msg := "language model unavailable"
	if err != nil {
		msg = fmt.Sprintf("language model unavailable: %v", err)
	}
	return &Error{
		Code:    ErrAIUnavailable,
		Status:  502,
		Message: msg,
	}
}

// Is checks if an error is a tradehand Error with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*Error); ok {
		return tErr.Code == code
	}
	return false
}
