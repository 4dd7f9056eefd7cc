// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sqltest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register SQLite driver under name "sqlite".
	_ "modernc.org/sqlite"
)

// NewSQLiteDB creates an isolated fresh SQLite database in a temporary
// directory for each test.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(
		t.TempDir(), "ledger_"+deterministicTestID(t)+".sqlite",
	)
	dsn := "file:" + dbPath + "?mode=rwc"

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "failed to open SQLite database")

	// A single connection avoids SQLITE_BUSY between parallel statements
	// against the same file.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		require.NoError(t, err, "failed to ping SQLite database")
	}

	t.Cleanup(func() {
		assert.NoError(t, db.Close(), "failed to close SQLite database")
	})

	return db
}
