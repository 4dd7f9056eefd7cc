// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sqltest provides isolated SQL databases for tests.  SQLite backed
// databases are always available.  Postgres databases run in a shared
// container and are only compiled in with the integration_test build tag.
package sqltest

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/require"
)

// DBFactory is a function type that creates a new database connection for
// testing purposes. The returned database is unique to the calling test and is
// closed when the test ends.
type DBFactory func(t testing.TB) *sql.DB

// DBTestFunc is a function type that defines the signature for database test
// functions that will be run against different database implementations.
type DBTestFunc func(t *testing.T, dbFactory DBFactory)

// backend pairs a human readable name with its database factory.
type backend struct {
	name      string
	dbFactory DBFactory
}

// RunDatabaseTest runs the same test function against every database backend
// compiled into the test binary.
func RunDatabaseTest(t *testing.T, testFunc DBTestFunc) {
	t.Helper()

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Parallel()
			testFunc(t, b.dbFactory)
		})
	}
}

// deterministicTestID generates a deterministic identifier based on the test
// name. The hash keeps database names short enough for every backend.
func deterministicTestID(t testing.TB) string {
	t.Helper()
	h := fnv.New32a()
	_, err := h.Write([]byte(t.Name()))
	require.NoError(t, err)

	return fmt.Sprintf("%08x", h.Sum32())
}
