package service

import "errors"

// Kind classifies a failure for the transport layer. Handlers switch on
// the kind to pick a status code; the message is safe to show as-is.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindAlreadyExists      Kind = "already_exists"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidCode        Kind = "invalid_code"
	KindTooManyRequests    Kind = "too_many_requests"
	KindInternal           Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the classification of err, KindInternal when it carries
// none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrInvalidInput = newError(KindValidation, "invalid input")

	// Login collapses unknown email and wrong password into one error so
	// the endpoint cannot be used for account enumeration.
	ErrInvalidCredentials = newError(KindInvalidCredentials, "invalid email or password")

	ErrEmailAlreadyRegistered = newError(KindAlreadyExists, "user already exists with this email")

	ErrUnauthorized    = newError(KindUnauthorized, "unauthorized")
	ErrSessionNotFound = newError(KindNotFound, "session not found")
	ErrUserNotFound    = newError(KindNotFound, "user not found")

	// Code lookup failures stay distinguishable internally but share one
	// kind at the boundary.
	ErrCodeNotFound = newError(KindNotFound, "verification code not found")
	ErrCodeExpired  = newError(KindNotFound, "verification code expired")

	ErrMFANotEnabled  = newError(KindUnauthorized, "mfa not enabled for this user")
	ErrInvalidMFACode = newError(KindInvalidCode, "invalid mfa code")

	ErrTooManyRequests = newError(KindTooManyRequests, "too many requests, try again later")
)
