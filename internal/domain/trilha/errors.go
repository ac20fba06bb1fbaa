package trilha

import "errors"

var (
	ErrTrilhaNotFound      = errors.New("trilha not found")
	ErrAreaNotFound        = errors.New("area not found")
	ErrSolicitacaoNotFound = errors.New("solicitacao not found")
	ErrUsuarioNotFound     = errors.New("usuario not found")
	ErrInvalidStatus       = errors.New("invalid solicitacao status")
	ErrForbidden           = errors.New("not allowed to act on this solicitacao")
)
