package record

import "errors"

var (
	ErrNotFound      = errors.New("record: not found")
	ErrMissingID     = errors.New("record: missing id")
	ErrStoreFailure  = errors.New("record: store failure")
	ErrInvalidRecord = errors.New("record: invalid record")
)
