package leitura

import "errors"

var (
	ErrPlanoNotFound = errors.New("reading plan not found")
	ErrMetaNotFound  = errors.New("reading goal not found")
	ErrMetaExists    = errors.New("reading goal already started")
	ErrMetaConcluida = errors.New("reading goal already completed")
	ErrLidoNoFuturo  = errors.New("reading date is in the future")
)
