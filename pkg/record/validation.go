package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ValidationError aggregates human-readable validation messages.
// It is created lazily: a nil *ValidationError means "valid".
type ValidationError struct {
	messages []string
}

// NewValidationError returns nil when no messages are given.
func NewValidationError(messages ...string) *ValidationError {
	var err *ValidationError
	for _, m := range messages {
		err = AttachError(err, m)
	}
	return err
}

// AttachError appends msg to err, creating err on the first message.
// Empty messages are ignored.
func AttachError(err *ValidationError, msg string) *ValidationError {
	if msg == "" {
		return err
	}
	if err == nil {
		err = &ValidationError{}
	}
	err.messages = append(err.messages, msg)
	return err
}

// Messages returns a copy of the collected messages.
func (e *ValidationError) Messages() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.messages...)
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.messages) == 0 {
		return "record: validation failed"
	}
	return "record: validation failed: " + strings.Join(e.messages, "; ")
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) && ve != nil {
		return ve, true
	}
	return nil, false
}

// Validator checks a record before it is persisted.
// It returns a *ValidationError for invalid input; any other error is
// treated as a failure of the validator itself.
type Validator interface {
	Validate(ctx context.Context, r Record) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, r Record) error

func (f ValidatorFunc) Validate(ctx context.Context, r Record) error {
	return f(ctx, r)
}

// Required reports every listed field that is absent or empty.
func Required(fields ...string) Validator {
	return ValidatorFunc(func(_ context.Context, r Record) error {
		var verr *ValidationError
		for _, f := range Missing(r, fields) {
			verr = AttachError(verr, fmt.Sprintf("Field %q is required", f))
		}
		if verr == nil {
			return nil
		}
		return verr
	})
}

// Validate runs validators in order and merges their messages into one
// ValidationError. A non-validation error stops the run and is returned.
func Validate(ctx context.Context, r Record, validators ...Validator) error {
	var verr *ValidationError
	for _, v := range validators {
		if v == nil {
			continue
		}
		err := v.Validate(ctx, r)
		if err == nil {
			continue
		}
		ve, ok := AsValidationError(err)
		if !ok {
			return err
		}
		for _, m := range ve.messages {
			verr = AttachError(verr, m)
		}
	}
	if verr == nil {
		return nil
	}
	return verr
}
