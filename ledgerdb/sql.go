// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// The statements below use numbered placeholders and an upsert understood by
// both Postgres and SQLite.
const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS ledger_records (
			tbl TEXT NOT NULL,
			name TEXT NOT NULL,
			value BYTEA NOT NULL,
			PRIMARY KEY (tbl, name)
		);`

	selectRecordSQL = `
		SELECT value FROM ledger_records WHERE tbl = $1 AND name = $2`

	upsertRecordSQL = `
		INSERT INTO ledger_records (tbl, name, value) VALUES ($1, $2, $3)
		ON CONFLICT (tbl, name) DO UPDATE SET value = excluded.value`
)

// SQLStore is a RecordStore backed by a SQL database.
type SQLStore struct {
	db *sql.DB
}

// A compile-time assertion to ensure SQLStore meets the RecordStore
// interface.
var _ RecordStore = (*SQLStore)(nil)

// NewSQLStore returns a RecordStore keeping the record in db, creating the
// records table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create ledger_records: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load implements RecordStore.
func (s *SQLStore) Load(ctx context.Context) ([]byte, error) {
	var record []byte
	err := s.db.QueryRowContext(
		ctx, selectRecordSQL, TableName, RecordName,
	).Scan(&record)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil

	case err != nil:
		return nil, fmt.Errorf("load %s/%s: %w", TableName, RecordName,
			err)
	}

	if record == nil {
		record = []byte{}
	}

	log.Tracef("Loaded %d byte record from %s", len(record), TableName)
	return record, nil
}

// Store implements RecordStore.
func (s *SQLStore) Store(ctx context.Context, b []byte) error {
	if b == nil {
		b = []byte{}
	}

	_, err := s.db.ExecContext(
		ctx, upsertRecordSQL, TableName, RecordName, b,
	)
	if err != nil {
		return fmt.Errorf("store %s/%s: %w", TableName, RecordName,
			err)
	}

	log.Tracef("Stored %d byte record in %s", len(b), TableName)
	return nil
}
