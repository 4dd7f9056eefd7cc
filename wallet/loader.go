// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcwallet/walletdb"
	// Register the bolt walletdb driver.
	_ "github.com/btcsuite/btcwallet/walletdb/bdb"
	"github.com/btcsuite/erc20utxo/internal/cfgutil"
	"github.com/btcsuite/erc20utxo/keystore"
	"github.com/btcsuite/erc20utxo/ledgerdb"
)

const (
	// LedgerDBName is the name of the database file holding the ledger
	// record and the key store.
	LedgerDBName = "ledger.db"

	// DefaultDBTimeout is the default time to wait for the database lock.
	DefaultDBTimeout = 60 * time.Second
)

var (
	// ErrLoaded is returned when trying to open a database that is
	// already open.
	ErrLoaded = errors.New("database already loaded")

	// ErrNotLoaded is returned when the database has not been opened.
	ErrNotLoaded = errors.New("database is not loaded")
)

// Loader opens the bolt database of a data directory and hands out the key
// store and record store kept inside it.
type Loader struct {
	mu sync.Mutex

	dbDirPath      string
	noFreelistSync bool
	timeout        time.Duration
	db             walletdb.DB
}

// NewLoader returns a Loader for the database in dbDirPath.
func NewLoader(dbDirPath string, noFreelistSync bool,
	timeout time.Duration) *Loader {

	return &Loader{
		dbDirPath:      dbDirPath,
		noFreelistSync: noFreelistSync,
		timeout:        timeout,
	}
}

// DBPath returns the path of the database file.
func (l *Loader) DBPath() string {
	return filepath.Join(l.dbDirPath, LedgerDBName)
}

// OpenDB opens the database, creating it and its directory if needed.
func (l *Loader) OpenDB() (walletdb.DB, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db != nil {
		return nil, ErrLoaded
	}

	dbPath := l.DBPath()
	var db walletdb.DB
	exists, err := cfgutil.FileExists(dbPath)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cfgutil.EnsureDir(l.dbDirPath, 0700); err != nil {
			return nil, err
		}
		db, err = walletdb.Create(
			"bdb", dbPath, l.noFreelistSync, l.timeout,
		)
	} else {
		db, err = walletdb.Open(
			"bdb", dbPath, l.noFreelistSync, l.timeout,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	log.Debugf("Opened database %s", dbPath)
	l.db = db
	return db, nil
}

// RecordStore returns the ledger record store kept in the open database.
func (l *Loader) RecordStore() (*ledgerdb.BoltStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil, ErrNotLoaded
	}
	return ledgerdb.NewBoltStore(l.db), nil
}

// CreateKeyStore creates the key store in the open database.
func (l *Loader) CreateKeyStore(passphrase []byte,
	opts *keystore.ScryptOptions) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return ErrNotLoaded
	}
	return keystore.Create(l.db, passphrase, opts)
}

// KeyStoreExists reports whether the open database holds a key store.
func (l *Loader) KeyStoreExists() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return false, ErrNotLoaded
	}
	return keystore.Exists(l.db)
}

// OpenKeyStore opens the locked key store of the open database.
func (l *Loader) OpenKeyStore() (*keystore.Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil, ErrNotLoaded
	}
	return keystore.Open(l.db)
}

// UnloadDB closes the database.
func (l *Loader) UnloadDB() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return ErrNotLoaded
	}

	err := l.db.Close()
	l.db = nil
	return err
}
