package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalidID      = errors.New("invalid document id")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidStyle   = errors.New("invalid style")
)
