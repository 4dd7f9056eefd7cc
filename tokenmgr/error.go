// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific LedgerError.
const (
	// ErrNotInitialized indicates that an operation was attempted before
	// the token was created, or after it was reset.
	ErrNotInitialized ErrorCode = iota

	// ErrAlreadyExists indicates that the token has already been created.
	ErrAlreadyExists

	// ErrUnknownAccount indicates that the referenced address holds no
	// account in the ledger.
	ErrUnknownAccount

	// ErrZeroAddress indicates that an empty address was used as an owner.
	ErrZeroAddress

	// ErrInvalidAmount indicates that a declared amount does not match the
	// amount of its output, or that an amount is zero or overflows.
	ErrInvalidAmount

	// ErrInsufficientSupply indicates that a burn exceeds the total supply.
	ErrInsufficientSupply

	// ErrInsufficientBalance indicates that an account balance cannot
	// cover the requested amount.
	ErrInsufficientBalance

	// ErrOutOfBounds indicates that the referenced UTXO id is not part of
	// the UTXO set.
	ErrOutOfBounds

	// ErrAlreadySpent indicates that the referenced UTXO was already
	// consumed.
	ErrAlreadySpent

	// ErrBadSignature indicates that the spend authorization of a UTXO was
	// missing or did not verify against its owner's key.
	ErrBadSignature

	// ErrExceedsUtxoAmount indicates that a transfer output is larger than
	// the UTXO it spends.
	ErrExceedsUtxoAmount

	// ErrNotOwner indicates that a UTXO was spent by an address other than
	// its owner.
	ErrNotOwner

	// ErrCorrupt indicates that a ledger snapshot could not be decoded or
	// that the decoded ledger violates its invariants.
	ErrCorrupt

	// ErrDatabase indicates an error with the underlying record store.
	// When this error code is set, the Err field of the LedgerError will be
	// set to the underlying error returned from the store.
	ErrDatabase
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrNotInitialized:      "ErrNotInitialized",
	ErrAlreadyExists:       "ErrAlreadyExists",
	ErrUnknownAccount:      "ErrUnknownAccount",
	ErrZeroAddress:         "ErrZeroAddress",
	ErrInvalidAmount:       "ErrInvalidAmount",
	ErrInsufficientSupply:  "ErrInsufficientSupply",
	ErrInsufficientBalance: "ErrInsufficientBalance",
	ErrOutOfBounds:         "ErrOutOfBounds",
	ErrAlreadySpent:        "ErrAlreadySpent",
	ErrBadSignature:        "ErrBadSignature",
	ErrExceedsUtxoAmount:   "ErrExceedsUtxoAmount",
	ErrNotOwner:            "ErrNotOwner",
	ErrCorrupt:             "ErrCorrupt",
	ErrDatabase:            "ErrDatabase",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// LedgerError provides a single type for errors that can happen during ledger
// operation.  It is similar to wtxmgr.TxStoreError.
type LedgerError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e LedgerError) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e LedgerError) Unwrap() error {
	return e.Err
}

// ledgerError creates a LedgerError given a set of arguments.
func ledgerError(c ErrorCode, desc string, err error) LedgerError {
	return LedgerError{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is a LedgerError, anywhere in its chain, with a
// matching error code.
func IsError(err error, code ErrorCode) bool {
	var e LedgerError
	return errors.As(err, &e) && e.ErrorCode == code
}
