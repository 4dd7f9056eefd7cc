// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/erc20utxo/build"
	"github.com/btcsuite/erc20utxo/internal/cfgutil"
	"github.com/btcsuite/erc20utxo/keystore"
	"github.com/btcsuite/erc20utxo/ledgerdb"
	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet"
	"github.com/jrick/logrotate/rotator"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// Loggers per subsystem.  A single backend logger is created and all subsystem
// loggers created from it will write to the backend.  When adding new
// subsystems, add the subsystem logger variable here and to the
// subsystemLoggers map.
//
// Loggers can not be used before the log rotator has been initialized with a
// log file.  This must be performed early during application startup by
// calling initLogRotator.
var (
	// backendLog is the logging backend used to create all subsystem
	// loggers.
	backendLog = btclog.NewBackend(logWriter{})

	// logRotator is one of the logging outputs.  It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	log       = build.NewSubLogger("TCTL", backendLog.Logger)
	tmgrLog   = build.NewSubLogger("TMGR", backendLog.Logger)
	kstrLog   = build.NewSubLogger("KSTR", backendLog.Logger)
	walletLog = build.NewSubLogger("WLLT", backendLog.Logger)
	lgdbLog   = build.NewSubLogger("LGDB", backendLog.Logger)
)

// Initialize package-global logger variables.
func init() {
	tokenmgr.UseLogger(tmgrLog)
	keystore.UseLogger(kstrLog)
	wallet.UseLogger(walletLog)
	ledgerdb.UseLogger(lgdbLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"TCTL": log,
	"TMGR": tmgrLog,
	"KSTR": kstrLog,
	"WLLT": walletLog,
	"LGDB": lgdbLog,
}

// initLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.  It must be called before the
// package-global log rotater variables are used.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	err := cfgutil.EnsureDir(logDir, 0700)
	if err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	logRotator = r
	return nil
}

// closeLogRotator flushes and closes the log file, if any.
func closeLogRotator() {
	if logRotator != nil {
		logRotator.Close()
		logRotator = nil
	}
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID string, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}

	// Defaults to info if the log level is invalid.
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string) {
	for subsystemID := range subsystemLoggers {
		setLogLevel(subsystemID, logLevel)
	}
}
