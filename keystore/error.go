// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"errors"
	"fmt"
)

var (
	// errLocked is the common error description used for the ErrLocked
	// error code.
	errLocked = "key store is locked"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific KeyStoreError.
const (
	// ErrDatabase indicates an error with the underlying database.  When
	// this error code is set, the Err field of the KeyStoreError will be
	// set to the underlying error returned from the database.
	ErrDatabase ErrorCode = iota

	// ErrCrypto indicates a failure to encrypt, decrypt or derive a key.
	ErrCrypto

	// ErrLocked indicates that an operation which requires the private
	// keys was attempted on a locked key store.
	ErrLocked

	// ErrWrongPassphrase indicates that the passphrase does not unlock the
	// key store.
	ErrWrongPassphrase

	// ErrKeyNotFound indicates that no key is registered under the
	// requested name.
	ErrKeyNotFound

	// ErrDuplicate indicates that a key is already registered under the
	// requested name.
	ErrDuplicate

	// ErrNoExist indicates that the key store has not been created.
	ErrNoExist

	// ErrAlreadyExists indicates that the key store has already been
	// created.
	ErrAlreadyExists

	// ErrInvalidName indicates that a key name is empty.
	ErrInvalidName
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrDatabase:        "ErrDatabase",
	ErrCrypto:          "ErrCrypto",
	ErrLocked:          "ErrLocked",
	ErrWrongPassphrase: "ErrWrongPassphrase",
	ErrKeyNotFound:     "ErrKeyNotFound",
	ErrDuplicate:       "ErrDuplicate",
	ErrNoExist:         "ErrNoExist",
	ErrAlreadyExists:   "ErrAlreadyExists",
	ErrInvalidName:     "ErrInvalidName",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// KeyStoreError provides a single type for errors that can happen during key
// store operation.
type KeyStoreError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e KeyStoreError) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e KeyStoreError) Unwrap() error {
	return e.Err
}

// keyStoreError creates a KeyStoreError given a set of arguments.
func keyStoreError(c ErrorCode, desc string, err error) KeyStoreError {
	return KeyStoreError{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether the error is a KeyStoreError with a matching error
// code.
func IsError(err error, code ErrorCode) bool {
	var e KeyStoreError
	return errors.As(err, &e) && e.ErrorCode == code
}
