package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountInactive     = errors.New("account is deactivated")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")

	ErrGoogleEmailNotVerified = errors.New("google account email is not verified")
	ErrNoAccountForEmail      = errors.New("no account is registered for this email")
)
