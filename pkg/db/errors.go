package db

import "errors"

var (
	ErrInvalidConfig = errors.New("db: invalid connection string")
	ErrConnect       = errors.New("db: cannot reach database")
	ErrUnavailable   = errors.New("db: database unavailable")
	// ErrMigrate wraps goose failures, including dialect selection.
	ErrMigrate = errors.New("db: migration failed")
)
