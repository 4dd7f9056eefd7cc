// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcwallet/walletdb"
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/btcsuite/erc20utxo/internal/sqltest"
	"github.com/stretchr/testify/require"
)

// testRecordStore runs the RecordStore contract against store.
func testRecordStore(t *testing.T, store RecordStore) {
	t.Helper()

	ctx := context.Background()

	record, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, record)

	first := []byte{0x01, 0x05, 'T', 'o', 'k', 'e', 'n'}
	require.NoError(t, store.Store(ctx, first))

	record, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, first, record)

	// Mutating the returned record must not affect the stored one.
	record[0] = 0xff
	record, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, first, record)

	second := make([]byte, 4096)
	for i := range second {
		second[i] = byte(i)
	}
	require.NoError(t, store.Store(ctx, second))

	record, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, second, record)
}

func TestBoltStore(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second)
	require.NoError(t, err)
	defer db.Close()

	testRecordStore(t, NewBoltStore(db))

	// The record lives in its own top-level bucket.
	err = walletdb.View(db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket([]byte(TableName))
		require.NotNil(t, bucket)
		require.NotNil(t, bucket.Get([]byte(RecordName)))
		return nil
	})
	require.NoError(t, err)
}

func TestBoltStoreCancelled(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	db, err := walletdb.Create("bdb", dbPath, true, 10*time.Second)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewBoltStore(db)
	require.ErrorIs(t, store.Store(ctx, []byte{1}), context.Canceled)
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSQLStore(t *testing.T) {
	sqltest.RunDatabaseTest(t, func(t *testing.T,
		dbFactory sqltest.DBFactory) {

		db := dbFactory(t)
		ctx := context.Background()

		store, err := NewSQLStore(ctx, db)
		require.NoError(t, err)
		testRecordStore(t, store)

		// Creating the store again keeps the existing record.
		again, err := NewSQLStore(ctx, db)
		require.NoError(t, err)
		record, err := again.Load(ctx)
		require.NoError(t, err)
		require.Len(t, record, 4096)

		var rows int
		err = db.QueryRowContext(
			ctx, "SELECT COUNT(*) FROM ledger_records",
		).Scan(&rows)
		require.NoError(t, err)
		require.Equal(t, 1, rows)
	})
}
