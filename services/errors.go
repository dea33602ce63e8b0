package services

import "errors"

var (
	ErrUserNotFound       = errors.New("User does not exist")
	ErrSelfRequest        = errors.New("Cannot send friend request to yourself")
	ErrAlreadyFriends     = errors.New("Already friends")
	ErrDuplicateRequest   = errors.New("Friend request already sent")
	ErrRateLimited        = errors.New("Too many friend requests")
	ErrRequestNotFound    = errors.New("Friend request not found")
	ErrInvalidAction      = errors.New("Invalid action")
	ErrInvalidCredentials = errors.New("Invalid Credentials")
)

// ValidationError reports malformed input. Message is shown to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
