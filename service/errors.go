package service

import "errors"

// Recoverable failures, surfaced to the UI layer so the user can retry
// with corrected input. Persistence failures are not sentinels; they are
// wrapped I/O errors and fatal for the operation that hit them.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrInvalidRequest     = errors.New("invalid friend request")
)
