// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"fmt"
	"testing"

	"github.com/lightningnetwork/lnd/tlv"
	"github.com/stretchr/testify/require"
)

// busyLedger returns a ledger exercising every encoded field.
func busyLedger(t *testing.T) *Ledger {
	t.Helper()

	l := New("Token", "TKN", 2)
	_, err := l.Mint(30, TxOutput{30, "A"}, []byte("first"))
	require.NoError(t, err)
	_, err = l.Mint(70, TxOutput{70, "A"}, nil)
	require.NoError(t, err)
	require.NoError(t, l.CreateAccount("C"))
	_, err = l.Transfer("A", 50, TxInput{ID: 1}, TxOutput{50, "B"})
	require.NoError(t, err)
	_, err = l.Burn(10, TxOutput{10, "A"}, []byte{0})
	require.NoError(t, err)
	require.NoError(t, l.CheckInvariants())

	return l
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ledger func(t *testing.T) *Ledger
	}{
		{"empty", func(*testing.T) *Ledger { return New("", "", 0) }},
		{"meta only", func(*testing.T) *Ledger {
			return New("Token", "TKN", 18)
		}},
		{"busy", busyLedger},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			l := test.ledger(t)
			b, err := l.Encode()
			require.NoError(t, err)

			decoded, err := Decode(b)
			require.NoError(t, err)
			require.Equal(t, l.Meta(), decoded.Meta())
			require.Equal(t, l.Accounts(), decoded.Accounts())
			require.Equal(t, l.Utxos(), decoded.Utxos())
			require.Equal(t, l.index, decoded.index)
			require.NoError(t, decoded.CheckInvariants())

			again, err := decoded.Encode()
			require.NoError(t, err)
			require.Equal(t, b, again)
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	t.Parallel()

	for _, b := range [][]byte{nil, {}} {
		l, err := Decode(b)
		require.NoError(t, err)
		require.True(t, l.IsEmpty())
		require.Zero(t, l.UtxoLen())
	}
}

func TestDecodeAppliesOptions(t *testing.T) {
	t.Parallel()

	b := mustEncode(t, busyLedger(t))

	var events EventLog
	l, err := Decode(b, WithEventSink(&events))
	require.NoError(t, err)

	_, err = l.Mint(1, TxOutput{1, "C"}, nil)
	require.NoError(t, err)
	require.Len(t, events.Events, 1)
}

func TestDecodeCorrupt(t *testing.T) {
	t.Parallel()

	b := mustEncode(t, busyLedger(t))

	for _, cut := range []int{1, 5, len(b) / 2, len(b) - 1} {
		_, err := Decode(b[:cut])
		requireCode(t, err, ErrCorrupt)
	}

	dup := New("Token", "TKN", 2)
	dup.accounts = []Account{{Owner: "A"}, {Owner: "A"}}
	_, err := Decode(mustEncode(t, dup))
	requireCode(t, err, ErrCorrupt)

	blank := New("Token", "TKN", 2)
	blank.accounts = []Account{{Owner: ""}}
	_, err = Decode(mustEncode(t, blank))
	requireCode(t, err, ErrCorrupt)
}

func TestSnapshotBeyondRecordLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		owners int
		utxos  int
	}{
		{"many owners", 50, 5000},
		{"single owner", 1, 6000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			l := New("Token", "TKN", 2)
			for i := 0; i < test.utxos; i++ {
				owner := fmt.Sprintf("owner-%02d", i%test.owners)
				_, err := l.Mint(1, TxOutput{1, owner}, nil)
				require.NoError(t, err)
			}

			b := mustEncode(t, l)
			require.Greater(t, len(b), tlv.MaxRecordSize)

			decoded, err := Decode(b)
			require.NoError(t, err)
			require.NoError(t, decoded.CheckInvariants())
			require.Equal(t, l.Utxos(), decoded.Utxos())
			require.Equal(t, l.Accounts(), decoded.Accounts())
			require.Equal(t, Amount(test.utxos), decoded.TotalSupply())
			require.Len(t, decoded.Accounts(), test.owners)
		})
	}
}

func TestEncodeOversizedField(t *testing.T) {
	t.Parallel()

	l := New("Token", "TKN", 2)
	data := make([]byte, tlv.MaxRecordSize+1)
	_, err := l.Mint(1, TxOutput{1, "A"}, data)
	require.NoError(t, err)

	_, err = l.Encode()
	require.ErrorContains(t, err, "utxo data")
}

func TestDecodeTrailingBytes(t *testing.T) {
	t.Parallel()

	b := append(mustEncode(t, busyLedger(t)), 0)
	_, err := Decode(b)
	requireCode(t, err, ErrCorrupt)
}
