// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockVerifier is a mock implementation of the Verifier interface.
type mockVerifier struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockVerifier implements the
// Verifier interface.
var _ Verifier = (*mockVerifier)(nil)

// Verify implements the Verifier interface.
func (m *mockVerifier) Verify(keyName string, msg, sig []byte) bool {
	args := m.Called(keyName, msg, sig)
	return args.Bool(0)
}

// fundedLedger returns a ledger with one UTXO per amount, all owned by owner,
// together with the ids of those UTXOs.
func fundedLedger(t *testing.T, owner string, amounts ...Amount) (*Ledger,
	[]uint32) {

	t.Helper()

	l := New("Token", "TKN", 2)
	ids := make([]uint32, 0, len(amounts))
	for _, amount := range amounts {
		id, err := l.Mint(amount, TxOutput{amount, owner}, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, l.CheckInvariants())

	return l, ids
}

// requireUnchanged asserts that the ledger still encodes to before.
func requireUnchanged(t *testing.T, l *Ledger, before []byte) {
	t.Helper()

	after, err := l.Encode()
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.NoError(t, l.CheckInvariants())
}

func mustEncode(t *testing.T, l *Ledger) []byte {
	t.Helper()

	b, err := l.Encode()
	require.NoError(t, err)
	return b
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	require.Error(t, err)
	require.Truef(t, IsError(err, code), "expected %v, got %v", code, err)
}
