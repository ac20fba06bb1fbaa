package igreja

import "errors"

var (
	ErrIgrejaNotFound = errors.New("church not found")
	ErrSemIgreja      = errors.New("user has no church")
	ErrAreaNotFound   = errors.New("area not found")
	ErrLiderNotFound  = errors.New("leader not found")
	ErrForbidden      = errors.New("insufficient permissions")
)
