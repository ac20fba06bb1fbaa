package user

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrExternalIDRequired = errors.New("external id is required")
)
