// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/stretchr/testify/require"
)

var testPassphrase = []byte("keystore passphrase")

// createTestDB creates a fresh bolt database that is closed at the end of the
// test.
func createTestDB(t *testing.T) walletdb.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "keys.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

// openTestStore creates and opens an unlocked key store.
func openTestStore(t *testing.T) (*Store, walletdb.DB) {
	t.Helper()

	db := createTestDB(t)
	require.NoError(t, Create(db, testPassphrase, &FastScryptOptions))

	s, err := Open(db)
	require.NoError(t, err)
	require.NoError(t, s.Unlock(testPassphrase))

	return s, db
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()

	require.Error(t, err)
	require.Truef(t, IsError(err, code), "expected %v, got %v", code, err)
}
