package admin

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrIgrejaNotFound = errors.New("church not found")
	ErrNothingToApply = errors.New("no changes requested")
)
