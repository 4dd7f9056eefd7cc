// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/erc20utxo/internal/cfgutil"
	"github.com/btcsuite/erc20utxo/wallet"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "tokenctl.conf"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "tokenctl.log"
	defaultSQLiteFilename = "ledger.sqlite"

	backendBolt     = "bdb"
	backendSQLite   = "sqlite"
	backendPostgres = "postgres"
)

var (
	tokenctlHomeDir   = btcutil.AppDataDir("tokenctl", false)
	defaultConfigFile = filepath.Join(tokenctlHomeDir, defaultConfigFilename)
	defaultDataDir    = tokenctlHomeDir
)

// config defines the global options shared by every command.
type config struct {
	ConfigFile     *cfgutil.ExplicitString `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir        string                  `short:"b" long:"datadir" description:"Directory holding the ledger and key store databases"`
	LogDir         string                  `long:"logdir" description:"Directory to log output"`
	DebugLevel     string                  `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	Sender         string                  `short:"s" long:"sender" description:"Address of the caller on whose behalf the command runs"`
	Backend        string                  `long:"backend" choice:"bdb" choice:"sqlite" choice:"postgres" description:"Record store holding the ledger"`
	DSN            string                  `long:"dsn" description:"Data source name of the sqlite or postgres record store"`
	DBTimeout      time.Duration           `long:"dbtimeout" description:"Time to wait for the database file lock"`
	NoFreelistSync bool                    `long:"nofreelistsync" description:"Do not sync the bolt freelist to disk"`
	Passphrase     string                  `long:"passphrase" default-mask:"-" description:"Key store passphrase, prompted for when unset"`

	// out receives command output.
	out io.Writer
}

// defaultConfig returns the configuration used when no option is given.
func defaultConfig() *config {
	return &config{
		ConfigFile: cfgutil.NewExplicitString(defaultConfigFile),
		DataDir:    defaultDataDir,
		DebugLevel: defaultLogLevel,
		Backend:    backendBolt,
		DBTimeout:  wallet.DefaultDBTimeout,
		out:        os.Stdout,
	}
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// validLogLevel returns whether or not logLevel is a valid debug log level.
func validLogLevel(logLevel string) bool {
	switch logLevel {
	case "trace", "debug", "info", "warn", "error", "critical":
		return true
	}
	return false
}

// normalize expands paths and checks option combinations once every source of
// configuration has been applied.
func (cfg *config) normalize() error {
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, defaultLogDirname)
	}
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)

	if !validLogLevel(cfg.DebugLevel) {
		return fmt.Errorf("the specified debug level [%v] is invalid",
			cfg.DebugLevel)
	}
	if cfg.DBTimeout <= 0 {
		return errors.New("the database timeout must be positive")
	}

	switch cfg.Backend {
	case backendBolt:
		if cfg.DSN != "" {
			return errors.New("--dsn may not be used with the " +
				"bdb backend")
		}
	case backendSQLite:
		if cfg.DSN == "" {
			cfg.DSN = filepath.Join(cfg.DataDir,
				defaultSQLiteFilename)
		}
	case backendPostgres:
		if cfg.DSN == "" {
			return errors.New("--dsn is required with the " +
				"postgres backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return nil
}

// newParser returns a parser over cfg with every command registered.
func newParser(cfg *config) (*flags.Parser, error) {
	parser := flags.NewParser(cfg, flags.Default)
	if err := registerCommands(parser, cfg); err != nil {
		return nil, err
	}
	return parser, nil
}

// loadConfig returns a configuration initialized with the defaults and the
// configuration file, together with the parser that applies the command line
// to it and runs the selected command.
//
// The above results in tokenctl functioning properly without any config
// settings while still allowing the user to override settings with config
// files and command line options.  Command line options always take
// precedence.
func loadConfig(args []string) (*config, *flags.Parser, error) {
	// Pre-parse the command line options to see if an alternative config
	// file was specified.  Commands and their options are ignored here.
	preCfg := defaultConfig()
	preParser := flags.NewParser(preCfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, nil, err
	}

	cfg := defaultConfig()
	parser, err := newParser(cfg)
	if err != nil {
		return nil, nil, err
	}

	configFile := cleanAndExpandPath(preCfg.ConfigFile.Value)
	exists, err := cfgutil.FileExists(configFile)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case exists:
		err := flags.NewIniParser(parser).ParseFile(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("error parsing config "+
				"file: %w", err)
		}
	case preCfg.ConfigFile.ExplicitlySet():
		return nil, nil, fmt.Errorf("config file %s does not exist",
			configFile)
	}

	return cfg, parser, nil
}
