package auth

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("auth: not found")

	// ErrEmailNotFound means no identity exists for the presented email.
	ErrEmailNotFound = errors.New("auth: email not found")

	// ErrWrongPassword means the presented credential did not match.
	ErrWrongPassword = errors.New("auth: wrong password")

	// ErrUnauthorized covers every refresh token failure: missing, bad
	// signature, expired, malformed, or superseded by a later login. The
	// caller never learns which check failed.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrUserNotFound means the identity was deleted after the token was
	// issued.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrInvalidToken indicates the token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)
