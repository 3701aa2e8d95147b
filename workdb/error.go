// Copyright (c) 2021 The Decred developers
// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package workdb

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
)

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ErrDatabase indicates an error with the underlying database that does
	// not fall into one of the more specific kinds.
	ErrDatabase = ErrorKind("ErrDatabase")

	// ErrDatabaseCorruption indicates the database is corrupt.
	ErrDatabaseCorruption = ErrorKind("ErrDatabaseCorruption")

	// ErrDatabaseNotOpen indicates a request was made against a database
	// that is closed.
	ErrDatabaseNotOpen = ErrorKind("ErrDatabaseNotOpen")

	// ErrNetworkMismatch indicates the database was created for a different
	// network than the one it is being opened for.
	ErrNetworkMismatch = ErrorKind("ErrNetworkMismatch")

	// ErrNodeOutOfOrder indicates an attempt to store a node that is not at
	// the height immediately after the current best node.
	ErrNodeOutOfOrder = ErrorKind("ErrNodeOutOfOrder")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// ContextError wraps an error with additional context.  It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific wrapped
// error.
//
// RawErr contains the original error in the case where an error has been
// converted.
type ContextError struct {
	Err         error
	Description string
	RawErr      error
}

// Error satisfies the error interface and prints human-readable errors.
func (e ContextError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e ContextError) Unwrap() error {
	return e.Err
}

// contextError creates a ContextError given a set of arguments.
func contextError(kind error, desc string) ContextError {
	return ContextError{Err: kind, Description: desc}
}

// convertLdbErr converts the passed leveldb error into a context error with an
// equivalent error kind and the passed description.  It also sets the passed
// error as the underlying error and adds its error string to the description.
func convertLdbErr(ldbErr error, desc string) ContextError {
	// Use the general database error kind by default.  The code below will
	// update this with the converted error if it's recognized.
	var kind = ErrDatabase

	switch {
	// Database corruption errors.
	case ldberrors.IsCorrupted(ldbErr):
		kind = ErrDatabaseCorruption

	// Database open/create errors.
	case errors.Is(ldbErr, leveldb.ErrClosed):
		kind = ErrDatabaseNotOpen
	}

	// Include the original error in description.
	desc = fmt.Sprintf("%s: %v", desc, ldbErr)

	err := contextError(kind, desc)
	err.RawErr = ldbErr
	return err
}
