package ticket

import "errors"

var (
	ErrNotFound      = errors.New("ticket not found")
	ErrAlreadyExists = errors.New("ticket already exists")
	ErrInvalidID     = errors.New("invalid ticket id")
)
