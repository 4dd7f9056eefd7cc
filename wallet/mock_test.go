// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"testing"

	"github.com/btcsuite/erc20utxo/ledgerdb"
	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSigner is a mock implementation of the Signer interface.
type mockSigner struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockSigner implements the Signer
// interface.
var _ Signer = (*mockSigner)(nil)

// Sign implements the Signer interface.
func (m *mockSigner) Sign(keyName string, msg []byte) ([]byte, error) {
	args := m.Called(keyName, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// mockRecordStore is a mock implementation of the RecordStore interface.
type mockRecordStore struct {
	mock.Mock
}

// A compile-time assertion to ensure that mockRecordStore implements the
// RecordStore interface.
var _ ledgerdb.RecordStore = (*mockRecordStore)(nil)

// Load implements the RecordStore interface.
func (m *mockRecordStore) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Store implements the RecordStore interface.
func (m *mockRecordStore) Store(ctx context.Context, b []byte) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// memStore is an in-memory RecordStore that counts the stores made.
type memStore struct {
	record []byte
	stores int
}

var _ ledgerdb.RecordStore = (*memStore)(nil)

func (s *memStore) Load(context.Context) ([]byte, error) {
	if s.record == nil {
		return nil, nil
	}
	return append([]byte{}, s.record...), nil
}

func (s *memStore) Store(_ context.Context, b []byte) error {
	s.record = append([]byte{}, b...)
	s.stores++
	return nil
}

// newTestWallet returns a wallet backed by a fresh memStore.
func newTestWallet(t *testing.T) (*Wallet, *memStore) {
	t.Helper()

	store := &memStore{}
	w, err := New(Config{Store: store})
	require.NoError(t, err)

	return w, store
}

// createTestCoin creates a token with supply minted to alice.
func createTestCoin(t *testing.T, w *Wallet, supply tokenmgr.Amount) {
	t.Helper()

	err := w.CreateCoin(
		context.Background(), "alice", "Token", "TKN", 2, supply,
	)
	require.NoError(t, err)
}

// requireAccount asserts the balance and the unspent UTXO ids of owner.
func requireAccount(t *testing.T, w *Wallet, owner string,
	balance tokenmgr.Amount, ids ...uint32) {

	t.Helper()

	acct, err := w.Account(context.Background(), owner, "")
	require.NoError(t, err)
	require.Equal(t, balance, acct.Balance)

	got := make([]uint32, 0, len(acct.Utxos))
	for _, u := range acct.Utxos {
		got = append(got, u.ID)
	}
	if len(ids) == 0 {
		ids = []uint32{}
	}
	require.Equal(t, ids, got)
}

func requireCode(t *testing.T, err error, code tokenmgr.ErrorCode) {
	t.Helper()

	require.Error(t, err)
	require.Truef(t, tokenmgr.IsError(err, code), "expected %v, got %v",
		code, err)
}
