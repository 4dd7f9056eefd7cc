// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build integration_test

package sqltest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	// Register the pgx driver under name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgOnce     sync.Once
	pgErr      error
	pgAdminDSN string
)

// postgresAdminDSN starts the shared Postgres container on first use and
// returns its admin DSN.
func postgresAdminDSN(t testing.TB) string {
	t.Helper()

	pgOnce.Do(func() {
		ctx, cancel := context.WithTimeout(
			context.Background(), 2*time.Minute,
		)
		defer cancel()

		container, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("erc20utxo"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = err
			return
		}

		pgAdminDSN, pgErr = container.ConnectionString(
			ctx, "sslmode=disable",
		)
	})
	require.NoError(t, pgErr, "failed to start Postgres container")

	return pgAdminDSN
}

// NewPostgresDB creates an isolated fresh database inside a shared Postgres
// container and returns a connection to it. The database is dropped when the
// test ends.
func NewPostgresDB(t testing.TB) *sql.DB {
	t.Helper()

	adminDSN := postgresAdminDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	admin, err := sql.Open("pgx", adminDSN)
	require.NoError(t, err, "failed to connect to postgres")
	defer func() {
		assert.NoError(t, admin.Close(), "failed to close admin")
	}()

	require.NoError(t, admin.PingContext(ctx), "failed to ping admin DB")

	name := "ledger_test_" + deterministicTestID(t)
	_, err = admin.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", name))
	require.NoError(t, err, "failed to create test database")

	testDSN, err := setDBNameInDSN(adminDSN, name)
	require.NoError(t, err, "failed to set database name")

	db, err := sql.Open("pgx", testDSN)
	require.NoError(t, err, "failed to open test database")

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(30 * time.Second)

	t.Cleanup(func() {
		_ = db.Close()

		cctx, ccancel := context.WithTimeout(
			context.Background(), 30*time.Second,
		)
		defer ccancel()

		admin, err := sql.Open("pgx", adminDSN)
		if err != nil {
			return
		}
		drop := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", name)
		_, _ = admin.ExecContext(cctx, drop)
		_ = admin.Close()
	})

	return db
}

// setDBNameInDSN returns the DSN with its database name replaced by dbName.
func setDBNameInDSN(dsn, dbName string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse DSN: %w", err)
	}
	u.Path = "/" + dbName
	return u.String(), nil
}
