// Copyright (c) 2019-2020 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package difficulty

import "fmt"

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific RuleError.
const (
	// ErrInvalidDifficulty indicates a packed difficulty is beyond the
	// infinite difficulty sentinel and therefore does not encode any valid
	// value.
	ErrInvalidDifficulty = ErrorKind("ErrInvalidDifficulty")

	// ErrUnreachableTarget indicates a packed difficulty is the infinite
	// difficulty sentinel which no hash is ever able to satisfy.
	ErrUnreachableTarget = ErrorKind("ErrUnreachableTarget")

	// ErrNegativeTarget indicates compact difficulty bits have the sign bit
	// set along with a non-zero mantissa.
	ErrNegativeTarget = ErrorKind("ErrNegativeTarget")

	// ErrTargetOverflow indicates compact difficulty bits encode a value that
	// does not fit in an unsigned 256-bit integer.
	ErrTargetOverflow = ErrorKind("ErrTargetOverflow")

	// ErrZeroTarget indicates compact difficulty bits encode a target of zero.
	ErrZeroTarget = ErrorKind("ErrZeroTarget")

	// ErrTargetAboveLimit indicates compact difficulty bits encode a target
	// that is higher than the proof-of-work limit of the network.
	ErrTargetAboveLimit = ErrorKind("ErrTargetAboveLimit")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// RuleError identifies a rule violation. It has full support for errors.Is
// and errors.As, so the caller can ascertain the specific reason for the
// error by checking the underlying error.
type RuleError struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(kind ErrorKind, desc string) RuleError {
	return RuleError{Err: kind, Description: desc}
}

// panicf is a convenience function that formats according to the given format
// specifier and arguments and panics with it.
func panicf(format string, args ...any) {
	str := fmt.Sprintf(format, args...)
	panic(str)
}
