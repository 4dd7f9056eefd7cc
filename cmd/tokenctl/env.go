// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/erc20utxo/internal/cfgutil"
	"github.com/btcsuite/erc20utxo/internal/prompt"
	"github.com/btcsuite/erc20utxo/internal/zero"
	"github.com/btcsuite/erc20utxo/keystore"
	"github.com/btcsuite/erc20utxo/ledgerdb"
	"github.com/btcsuite/erc20utxo/wallet"
	// Register the SQL drivers of the sqlite and postgres backends.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// env holds the resources a command runs against.
type env struct {
	loader *wallet.Loader
	sqlDB  *sql.DB

	// keys is nil when no key store has been created.
	keys *keystore.Store

	// signing is set when keys has been unlocked.
	signing bool

	wallet *wallet.Wallet
}

// passphrase returns the key store passphrase from the configuration or, when
// unset, prompts for it.
func (cfg *config) passphrase(create bool) ([]byte, error) {
	if cfg.Passphrase != "" {
		return []byte(cfg.Passphrase), nil
	}

	var r *bufio.Reader
	if !prompt.IsTerminal() {
		r = bufio.NewReader(os.Stdin)
	}
	return prompt.PrivatePass(r, create)
}

// openRecordStore opens the record store of the configured backend.
func openRecordStore(ctx context.Context, cfg *config,
	loader *wallet.Loader) (ledgerdb.RecordStore, *sql.DB, error) {

	var driver string
	switch cfg.Backend {
	case backendBolt:
		store, err := loader.RecordStore()
		return store, nil, err

	case backendSQLite:
		err := cfgutil.EnsureDir(filepath.Dir(cfg.DSN), 0700)
		if err != nil {
			return nil, nil, err
		}
		driver = "sqlite"

	case backendPostgres:
		driver = "pgx"

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	store, err := ledgerdb.NewSQLStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Debugf("Using %s record store", cfg.Backend)
	return store, db, nil
}

// openEnv opens the databases of cfg.  When unlock is set and a key store
// exists it is unlocked so spends can be signed.
func openEnv(ctx context.Context, cfg *config, unlock bool) (*env, error) {
	e := &env{
		loader: wallet.NewLoader(
			cfg.DataDir, cfg.NoFreelistSync, cfg.DBTimeout,
		),
	}
	if _, err := e.loader.OpenDB(); err != nil {
		return nil, err
	}

	store, sqlDB, err := openRecordStore(ctx, cfg, e.loader)
	if err != nil {
		e.close()
		return nil, err
	}
	e.sqlDB = sqlDB

	walletCfg := wallet.Config{Store: store}

	exists, err := e.loader.KeyStoreExists()
	if err != nil {
		e.close()
		return nil, err
	}
	if exists {
		e.keys, err = e.loader.OpenKeyStore()
		if err != nil {
			e.close()
			return nil, err
		}
		walletCfg.Verifier = e.keys

		if unlock {
			pass, err := cfg.passphrase(false)
			if err != nil {
				e.close()
				return nil, err
			}
			err = e.keys.Unlock(pass)
			zero.Bytes(pass)
			if err != nil {
				e.close()
				return nil, err
			}
			walletCfg.Signer = e.keys
			e.signing = true
		}
	}

	e.wallet, err = wallet.New(walletCfg)
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// requireKeys returns an error when no key store exists.
func (e *env) requireKeys() error {
	if e.keys == nil {
		return errors.New("no key store exists, run createkeystore " +
			"first")
	}
	return nil
}

// close locks the key store and closes every database.
func (e *env) close() {
	if e.keys != nil && !e.keys.IsLocked() {
		e.keys.Lock()
	}
	if e.sqlDB != nil {
		if err := e.sqlDB.Close(); err != nil {
			log.Errorf("Unable to close record store: %v", err)
		}
	}
	if err := e.loader.UnloadDB(); err != nil &&
		!errors.Is(err, wallet.ErrNotLoaded) {

		log.Errorf("Unable to close database: %v", err)
	}
}

// run prepares logging and the databases, then runs f.
func (cfg *config) run(unlock bool,
	f func(ctx context.Context, e *env) error) error {

	if err := cfg.normalize(); err != nil {
		return err
	}

	logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
	if err := initLogRotator(logFile); err != nil {
		return err
	}
	defer closeLogRotator()
	setLogLevels(cfg.DebugLevel)

	ctx := context.Background()
	e, err := openEnv(ctx, cfg, unlock)
	if err != nil {
		return err
	}
	defer e.close()

	return f(ctx, e)
}
