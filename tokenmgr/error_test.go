// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrNotInitialized, "ErrNotInitialized"},
		{ErrAlreadyExists, "ErrAlreadyExists"},
		{ErrUnknownAccount, "ErrUnknownAccount"},
		{ErrZeroAddress, "ErrZeroAddress"},
		{ErrInvalidAmount, "ErrInvalidAmount"},
		{ErrInsufficientSupply, "ErrInsufficientSupply"},
		{ErrInsufficientBalance, "ErrInsufficientBalance"},
		{ErrOutOfBounds, "ErrOutOfBounds"},
		{ErrAlreadySpent, "ErrAlreadySpent"},
		{ErrBadSignature, "ErrBadSignature"},
		{ErrExceedsUtxoAmount, "ErrExceedsUtxoAmount"},
		{ErrNotOwner, "ErrNotOwner"},
		{ErrCorrupt, "ErrCorrupt"},
		{ErrDatabase, "ErrDatabase"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	require.Len(t, errorCodeStrings, len(tests)-1)
	for _, test := range tests {
		require.Equal(t, test.want, test.in.String())
	}
}

func TestLedgerError(t *testing.T) {
	t.Parallel()

	base := errors.New("disk on fire")
	err := ledgerError(ErrDatabase, "cannot store ledger", base)
	require.Equal(t, "cannot store ledger: disk on fire", err.Error())
	require.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("payment: %w", err)
	require.True(t, IsError(wrapped, ErrDatabase))
	require.False(t, IsError(wrapped, ErrCorrupt))
	require.False(t, IsError(base, ErrDatabase))
	require.False(t, IsError(nil, ErrDatabase))

	plain := ledgerError(ErrZeroAddress, "zero address", nil)
	require.Equal(t, "zero address", plain.Error())
}
