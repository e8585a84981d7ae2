package models

import "errors"

// Application-wide standard errors
var (
	// Common resource/DB errors
	ErrNotFound          = errors.New("fable not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrVersionConflict   = errors.New("fable was modified concurrently")

	// User & authentication errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenNotFound  = errors.New("token not found in storage")

	// General request/server errors
	ErrInvalidInput   = errors.New("invalid input data")
	ErrInternalServer = errors.New("internal server error")
)
