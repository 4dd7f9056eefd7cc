// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerdb

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcwallet/walletdb"
)

var (
	// tableKey is the top-level bucket holding the record.
	tableKey = []byte(TableName)

	// recordKey is the key of the record inside tableKey.
	recordKey = []byte(RecordName)
)

// BoltStore is a RecordStore backed by a walletdb database.
type BoltStore struct {
	db walletdb.DB
}

// A compile-time assertion to ensure BoltStore meets the RecordStore
// interface.
var _ RecordStore = (*BoltStore)(nil)

// NewBoltStore returns a RecordStore keeping the record in db.
func NewBoltStore(db walletdb.DB) *BoltStore {
	return &BoltStore{db: db}
}

// Load implements RecordStore.
func (s *BoltStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record []byte
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		bucket := tx.ReadBucket(tableKey)
		if bucket == nil {
			return nil
		}

		// Values returned by Get are only valid for the lifetime of
		// the transaction.
		if v := bucket.Get(recordKey); v != nil {
			record = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s/%s: %w", TableName, RecordName,
			err)
	}

	log.Tracef("Loaded %d byte record from %s", len(record), TableName)
	return record, nil
}

// Store implements RecordStore.
func (s *BoltStore) Store(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		bucket, err := tx.CreateTopLevelBucket(tableKey)
		if err != nil {
			return err
		}

		// An empty value would read back as a missing record.
		if b == nil {
			b = []byte{}
		}
		return bucket.Put(recordKey, b)
	})
	if err != nil {
		return fmt.Errorf("store %s/%s: %w", TableName, RecordName,
			err)
	}

	log.Tracef("Stored %d byte record in %s", len(b), TableName)
	return nil
}
