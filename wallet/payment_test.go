// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/erc20utxo/keystore"
	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet/coinselect"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPassphrase = []byte("wallet passphrase")

// newSigningWallet returns a wallet persisting to a bolt database in a
// temporary directory that signs and verifies spends with a key store holding
// keys for names.
func newSigningWallet(t *testing.T, names ...string) (*Wallet,
	*keystore.Store) {

	t.Helper()

	loader := NewLoader(t.TempDir(), true, DefaultDBTimeout)
	_, err := loader.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, loader.UnloadDB())
	})

	err = loader.CreateKeyStore(testPassphrase, &keystore.FastScryptOptions)
	require.NoError(t, err)
	keys, err := loader.OpenKeyStore()
	require.NoError(t, err)
	require.NoError(t, keys.Unlock(testPassphrase))
	for _, name := range names {
		_, err := keys.NewKey(name)
		require.NoError(t, err)
	}

	store, err := loader.RecordStore()
	require.NoError(t, err)

	w, err := New(Config{
		Store:    store,
		Signer:   keys,
		Verifier: keys,
	})
	require.NoError(t, err)

	return w, keys
}

// TestPaymentAcrossUtxos pays 80 from an account holding UTXOs of 30 and 70.
func TestPaymentAcrossUtxos(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, _ := newSigningWallet(t, "alice", "bob")

	createTestCoin(t, w, 30)
	_, err := w.Fund(ctx, "alice", 70, "")
	require.NoError(t, err)
	require.NoError(t, w.OpenAccount(ctx, "bob", ""))

	require.NoError(t, w.Payment(ctx, "alice", 80, "", "bob"))

	// UTXO 0 moves to bob whole, UTXO 1 is split into 50 for bob and 20
	// change for alice.
	requireAccount(t, w, "alice", 20, 4)
	requireAccount(t, w, "bob", 80, 2, 3)

	supply, err := w.TotalSupply(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, tokenmgr.Amount(100), supply)

	for _, id := range []uint32{0, 1} {
		utxo, err := w.Utxo(ctx, "alice", id)
		require.NoError(t, err)
		require.True(t, utxo.Spent)
	}
}

func TestPaymentFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, _ := newSigningWallet(t, "alice", "bob")
	createTestCoin(t, w, 30)
	_, err := w.Fund(ctx, "alice", 70, "")
	require.NoError(t, err)

	before, err := w.cfg.Store.Load(ctx)
	require.NoError(t, err)

	// The payee holds no account yet.
	err = w.Payment(ctx, "alice", 10, "", "bob")
	requireCode(t, err, tokenmgr.ErrUnknownAccount)
	after, err := w.cfg.Store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)

	require.NoError(t, w.OpenAccount(ctx, "bob", ""))
	before, err = w.cfg.Store.Load(ctx)
	require.NoError(t, err)

	err = w.Payment(ctx, "alice", 101, "", "bob")
	requireCode(t, err, tokenmgr.ErrInsufficientBalance)

	err = w.Payment(ctx, "alice", 0, "", "bob")
	requireCode(t, err, tokenmgr.ErrInvalidAmount)

	err = w.Payment(ctx, "bob", 1, "", "alice")
	requireCode(t, err, tokenmgr.ErrInsufficientBalance)

	after, err = w.cfg.Store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestPaymentSignerFailure checks that a payment whose second spend cannot be
// signed leaves the stored ledger untouched.
func TestPaymentSignerFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, store := newTestWallet(t)
	createTestCoin(t, w, 30)
	_, err := w.Fund(ctx, "alice", 70, "")
	require.NoError(t, err)
	require.NoError(t, w.OpenAccount(ctx, "bob", ""))

	signer := &mockSigner{}
	signer.On("Sign", "alice", tokenmgr.SpendMessage(0)).
		Return([]byte{0x01}, nil)
	signer.On("Sign", "alice", tokenmgr.SpendMessage(1)).
		Return(nil, errors.New("key locked"))
	w.cfg.Signer = signer

	before := append([]byte{}, store.record...)
	stores := store.stores

	err = w.Payment(ctx, "alice", 80, "", "bob")
	requireCode(t, err, tokenmgr.ErrBadSignature)
	signer.AssertExpectations(t)

	require.Equal(t, before, store.record)
	require.Equal(t, stores, store.stores)
	requireAccount(t, w, "alice", 100, 0, 1)
}

func TestPaymentEmptySignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, _ := newTestWallet(t)
	createTestCoin(t, w, 30)
	require.NoError(t, w.OpenAccount(ctx, "bob", ""))

	signer := &mockSigner{}
	signer.On("Sign", "alice", mock.Anything).Return([]byte{}, nil)
	w.cfg.Signer = signer

	err := w.Payment(ctx, "alice", 10, "", "bob")
	requireCode(t, err, tokenmgr.ErrBadSignature)
}

func TestPaymentForgedSignature(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, keys := newSigningWallet(t, "alice", "bob")
	createTestCoin(t, w, 30)
	require.NoError(t, w.OpenAccount(ctx, "bob", ""))

	// Bob signs a spend of alice's UTXO.
	forged, err := keys.Sign("bob", tokenmgr.SpendMessage(0))
	require.NoError(t, err)

	signer := &mockSigner{}
	signer.On("Sign", "alice", tokenmgr.SpendMessage(0)).Return(forged, nil)
	w.cfg.Signer = signer

	err = w.Payment(ctx, "alice", 10, "", "bob")
	requireCode(t, err, tokenmgr.ErrBadSignature)
	requireAccount(t, w, "alice", 30, 0)
}

// shortSelector is a coin selector that never covers its target.
type shortSelector struct{}

func (shortSelector) SelectCoins(coins []coinselect.Coin,
	target uint64) (*coinselect.Result, error) {

	return &coinselect.Result{
		Selections: []coinselect.Selection{{
			ID:         coins[0].ID,
			UtxoAmount: coins[0].Amount,
			Transfer:   1,
			Change:     coins[0].Amount - 1,
		}},
		Total: 1,
	}, nil
}

func TestPaymentShortSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w, _ := newTestWallet(t)
	createTestCoin(t, w, 30)
	require.NoError(t, w.OpenAccount(ctx, "bob", ""))
	w.cfg.CoinSelector = shortSelector{}

	err := w.Payment(ctx, "alice", 10, "", "bob")
	requireCode(t, err, tokenmgr.ErrInsufficientBalance)
}

func TestLoaderReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	loader := NewLoader(dir, true, DefaultDBTimeout)
	_, err := loader.OpenDB()
	require.NoError(t, err)

	_, err = loader.OpenDB()
	require.ErrorIs(t, err, ErrLoaded)

	exists, err := loader.KeyStoreExists()
	require.NoError(t, err)
	require.False(t, exists)

	store, err := loader.RecordStore()
	require.NoError(t, err)
	w, err := New(Config{Store: store})
	require.NoError(t, err)
	createTestCoin(t, w, 42)
	require.NoError(t, loader.UnloadDB())

	_, err = loader.RecordStore()
	require.ErrorIs(t, err, ErrNotLoaded)
	require.ErrorIs(t, loader.UnloadDB(), ErrNotLoaded)

	loader = NewLoader(dir, true, DefaultDBTimeout)
	_, err = loader.OpenDB()
	require.NoError(t, err)
	defer loader.UnloadDB()

	store, err = loader.RecordStore()
	require.NoError(t, err)
	w, err = New(Config{Store: store})
	require.NoError(t, err)
	requireAccount(t, w, "alice", 42, 0)

	supply, err := w.TotalSupply(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, tokenmgr.Amount(42), supply)
}

func TestLoaderCreatesDir(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	loader := NewLoader(filepath.Join(root, "nested", "db"), true,
		DefaultDBTimeout)
	_, err := loader.OpenDB()
	require.NoError(t, err)
	require.FileExists(t, loader.DBPath())
	require.NoError(t, loader.UnloadDB())

	// A regular file in place of the directory is rejected.
	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	_, err = NewLoader(file, true, DefaultDBTimeout).OpenDB()
	require.ErrorContains(t, err, "not a directory")
}
