package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidID          = errors.New("invalid id")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("permission denied")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
)

// Error attaches a client-facing message to one of the sentinels above.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(err error, message string) error {
	return &Error{Err: err, Message: message}
}

func NotFound(message string) error {
	return New(ErrNotFound, message)
}

func Conflict(message string) error {
	return New(ErrConflict, message)
}

func Validation(message string) error {
	return New(ErrValidation, message)
}

func Forbidden(message string) error {
	return New(ErrForbidden, message)
}

// Message returns the client-facing message carried by err, or fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
