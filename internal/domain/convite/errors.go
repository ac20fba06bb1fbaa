package convite

import "errors"

var (
	ErrConviteNotFound = errors.New("invitation not found")
	ErrConviteExpirado = errors.New("invitation expired")
	ErrCelulaNotFound  = errors.New("cell not found")
	ErrSemIgreja       = errors.New("user has no church")
	ErrForbidden       = errors.New("insufficient permissions")
)
