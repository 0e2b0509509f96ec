package session

import "errors"

var (
	ErrNotFound     = errors.New("session: not found")
	ErrExpired      = errors.New("session: expired")
	ErrTypeMismatch = errors.New("session: type mismatch")

	// ErrInvalidStorage is returned for a storage URL that cannot be parsed.
	ErrInvalidStorage = errors.New("session: invalid storage url")
)
