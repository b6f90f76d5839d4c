package models

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrInvalidToken covers bad signature, malformed payload and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUserNotFound indicates that no user matches the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists indicates a case-insensitive username collision.
	ErrUserAlreadyExists = errors.New("username already registered")
	// ErrProtectedUser is returned when deleting the primary admin.
	ErrProtectedUser = errors.New("the primary admin account cannot be deleted")
	// ErrBackupNotFound indicates that the user file does not exist yet.
	ErrBackupNotFound = errors.New("user file not found")

	ErrValidation = errors.New("validation failed")
)
