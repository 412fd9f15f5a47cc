// Package checker compiles type descriptors into validators and applies
// them to runtime values and types.
//
// The compile step is memoized per descriptor identity; the resulting
// validator tree is immutable except for the one-time resolution inside
// forward-reference nodes. Failures form a chain: each container layer
// wraps the inner failure with the index, key, field, or attribute that
// produced it.
package checker

import (
	"errors"
	"fmt"
)

// TypeMismatchError reports that a value or type does not conform to its
// descriptor. Cause holds the nested failure when the mismatch surfaced
// while unwinding from an inner check.
type TypeMismatchError struct {
	Msg   string
	Cause error
}

func (e *TypeMismatchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause.Error())
	}
	return e.Msg
}

func (e *TypeMismatchError) Unwrap() error { return e.Cause }

func mismatch(format string, args ...any) error {
	return &TypeMismatchError{Msg: fmt.Sprintf(format, args...)}
}

// wrapMismatch chains a child failure with positional or keyed context.
func wrapMismatch(cause error, format string, args ...any) error {
	return &TypeMismatchError{Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// InvalidDescriptorError reports that the descriptor itself is
// malformed. It is fatal and surfaces at compile time, or at resolution
// time for forward references whose name cannot be found.
type InvalidDescriptorError struct {
	Msg   string
	Cause error
}

func (e *InvalidDescriptorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Cause.Error())
	}
	return e.Msg
}

func (e *InvalidDescriptorError) Unwrap() error { return e.Cause }

func invalid(format string, args ...any) error {
	return &InvalidDescriptorError{Msg: fmt.Sprintf(format, args...)}
}

// NotImplementedError reports a descriptor shape the checker declines to
// support. It is never treated as pass or fail-soft.
type NotImplementedError struct {
	Msg string
}

func (e *NotImplementedError) Error() string { return e.Msg }

func notImplemented(format string, args ...any) error {
	return &NotImplementedError{Msg: fmt.Sprintf(format, args...)}
}

// IsTypeMismatch reports whether err is (or wraps) a type mismatch.
func IsTypeMismatch(err error) bool {
	var target *TypeMismatchError
	return errors.As(err, &target)
}

// IsInvalidDescriptor reports whether err is (or wraps) an invalid
// descriptor failure.
func IsInvalidDescriptor(err error) bool {
	var target *InvalidDescriptorError
	return errors.As(err, &target)
}

// IsNotImplemented reports whether err is (or wraps) an unsupported
// descriptor failure.
func IsNotImplemented(err error) bool {
	var target *NotImplementedError
	return errors.As(err, &target)
}
