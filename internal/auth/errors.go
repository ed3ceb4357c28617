package auth

import "errors"

// Error taxonomy for the authentication state machine. Handlers map
// these onto HTTP status codes.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrOtpInvalid         = errors.New("invalid verification code")
	ErrOtpExpired         = errors.New("verification code expired")
	ErrNoSession          = errors.New("no active session")
)
