package job

import "errors"

var (
	// ErrJobRequired is returned when a job has no worker or command.
	ErrJobRequired = errors.New("job: worker and command are required")

	// ErrUnknownCommand is returned for a command no worker registered.
	ErrUnknownCommand = errors.New("job: unknown command")

	// ErrInvalidParams is returned when job parameters cannot be decoded.
	ErrInvalidParams = errors.New("job: invalid params")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")

	// ErrUnavailable is returned by the readiness check.
	ErrUnavailable = errors.New("job: manager unavailable")

	// ErrPoolRequired is returned when a manager or enqueuer is created
	// without a database pool.
	ErrPoolRequired = errors.New("job: pool is required")
)
