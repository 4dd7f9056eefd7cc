// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet"
	flags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes contents to a config file in dir.
func writeConfigFile(t *testing.T, dir, contents string) string {
	t.Helper()

	path := filepath.Join(dir, defaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

// runCommand parses args, prefixed with a config file and data directory in
// dir, and runs the selected command.  It returns the configuration and the
// command output.
func runCommand(t *testing.T, dir string, args ...string) (*config, string,
	error) {

	t.Helper()

	configFile := filepath.Join(dir, defaultConfigFilename)
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		writeConfigFile(t, dir, "")
	}

	args = append([]string{
		"--configfile", configFile, "--datadir", dir,
	}, args...)

	cfg, parser, err := loadConfig(args)
	if err != nil {
		return nil, "", err
	}
	parser.Options &^= flags.PrintErrors

	var out bytes.Buffer
	cfg.out = &out
	_, err = parser.ParseArgs(args)
	return cfg, out.String(), err
}

func TestDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := writeConfigFile(t, dir, "")

	cfg, _, err := loadConfig([]string{"--configfile", configFile})
	require.NoError(t, err)
	require.Equal(t, defaultDataDir, cfg.DataDir)
	require.Equal(t, defaultLogLevel, cfg.DebugLevel)
	require.Equal(t, backendBolt, cfg.Backend)
	require.Equal(t, wallet.DefaultDBTimeout, cfg.DBTimeout)
	require.Empty(t, cfg.Sender)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	configFile := writeConfigFile(t, dir, "[Application Options]\n"+
		"sender=alice\n"+
		"debuglevel=debug\n"+
		"backend=sqlite\n"+
		"dbtimeout=5s\n")

	cfg, _, err := loadConfig([]string{"--configfile", configFile})
	require.NoError(t, err)
	require.Equal(t, "alice", cfg.Sender)
	require.Equal(t, "debug", cfg.DebugLevel)
	require.Equal(t, backendSQLite, cfg.Backend)
	require.Equal(t, "5s", cfg.DBTimeout.String())

	// The command line takes precedence over the config file.
	cfg, _, err = runCommand(t, dir, "--sender", "bob", "name")
	require.Truef(t, tokenmgr.IsError(err, tokenmgr.ErrNotInitialized),
		"unexpected error: %v", err)
	require.Equal(t, "bob", cfg.Sender)
	require.Equal(t, filepath.Join(dir, defaultSQLiteFilename), cfg.DSN)
}

func TestMissingConfigFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.conf")

	_, _, err := loadConfig([]string{"--configfile", missing})
	require.Error(t, err)
}

func TestInvalidBackend(t *testing.T) {
	dir := t.TempDir()
	configFile := writeConfigFile(t, dir, "")

	_, _, err := loadConfig([]string{
		"--configfile", configFile, "--backend", "leveldb",
	})
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *config)
		wantErr bool
	}{
		{
			name:   "defaults",
			modify: func(*config) {},
		},
		{
			name: "invalid debug level",
			modify: func(cfg *config) {
				cfg.DebugLevel = "verbose"
			},
			wantErr: true,
		},
		{
			name: "zero timeout",
			modify: func(cfg *config) {
				cfg.DBTimeout = 0
			},
			wantErr: true,
		},
		{
			name: "bolt with dsn",
			modify: func(cfg *config) {
				cfg.DSN = "ledger.sqlite"
			},
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			modify: func(cfg *config) {
				cfg.Backend = backendPostgres
			},
			wantErr: true,
		},
		{
			name: "postgres with dsn",
			modify: func(cfg *config) {
				cfg.Backend = backendPostgres
				cfg.DSN = "postgres://localhost/ledger"
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			cfg.DataDir = t.TempDir()
			test.modify(cfg)

			err := cfg.normalize()
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, filepath.Join(cfg.DataDir,
				defaultLogDirname), cfg.LogDir)
		})
	}
}

func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("TOKENCTL_TEST_DIR", "/tmp/tokens")

	require.Equal(t, "", cleanAndExpandPath(""))
	require.Equal(t, "/tmp/tokens/ledger",
		cleanAndExpandPath("$TOKENCTL_TEST_DIR/ledger/"))
	require.Equal(t, "/a/c", cleanAndExpandPath("/a/b/../c"))
}
