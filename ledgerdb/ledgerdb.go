// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgerdb persists the serialized ledger as a single record.  The
// record lives in table ERC20UTXOTable under key ALL and is always loaded and
// stored as a whole.
package ledgerdb

import "context"

const (
	// TableName is the table holding the ledger record.
	TableName = "ERC20UTXOTable"

	// RecordName is the key of the ledger record.
	RecordName = "ALL"
)

// RecordStore loads and stores the full ledger snapshot.
type RecordStore interface {
	// Load returns the stored snapshot, or nil with no error if nothing
	// has been stored yet.
	Load(ctx context.Context) ([]byte, error)

	// Store replaces the stored snapshot with b.
	Store(ctx context.Context, b []byte) error
}
