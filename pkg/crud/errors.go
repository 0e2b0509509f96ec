package crud

import "errors"

var (
	ErrUnknownAction   = errors.New("crud: unknown action")
	ErrNoFile          = errors.New("crud: no file uploaded")
	ErrInvalidResource = errors.New("crud: invalid resource")
)
