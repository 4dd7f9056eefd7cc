// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build integration_test

package sqltest

func backends() []backend {
	return []backend{
		{name: "Postgres", dbFactory: NewPostgresDB},
		{name: "SQLite", dbFactory: NewSQLiteDB},
	}
}
