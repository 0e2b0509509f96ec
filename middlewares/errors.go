package middlewares

import (
	"errors"
	"fmt"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	// Stack is nil when stack capture is disabled.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts a PanicError from err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
