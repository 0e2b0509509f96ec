package redis

import "errors"

var (
	ErrEmptyURL    = errors.New("redis: url is empty")
	ErrInvalidURL  = errors.New("redis: url must be redis:// or rediss://")
	ErrConnect     = errors.New("redis: cannot reach server")
	ErrUnavailable = errors.New("redis: server unavailable")
)
