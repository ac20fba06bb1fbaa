package featureflag

import "errors"

var (
	ErrConfigNotFound = errors.New("config entry not found")
	ErrInvalidKey     = errors.New("config key is required")
)
