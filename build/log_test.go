// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package build

import (
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

// TestNewSubLoggerProduction checks that production builds defer to the
// provided sub-logger constructor and fall back to a disabled logger.
func TestNewSubLoggerProduction(t *testing.T) {
	t.Parallel()

	if !IsProdBuild() {
		t.Skip("only meaningful for production builds")
	}

	require.Equal(t, btclog.Disabled, NewSubLogger("TEST", nil))

	var requested string
	backend := btclog.NewBackend(&discard{})
	logger := NewSubLogger("TEST", func(tag string) btclog.Logger {
		requested = tag
		return backend.Logger(tag)
	})
	require.Equal(t, "TEST", requested)
	require.NotEqual(t, btclog.Disabled, logger)
}

// TestLogClosure checks that the closure is only evaluated when stringified.
func TestLogClosure(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewLogClosure(func() string {
		calls++
		return "dump"
	})
	require.Zero(t, calls)
	require.Equal(t, "dump", c.String())
	require.Equal(t, 1, calls)
}

func TestLogTypeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", LogTypeNone.String())
	require.Equal(t, "stdout", LogTypeStdOut.String())
	require.Equal(t, "default", LogTypeDefault.String())
	require.Equal(t, "unknown", LogType(0xff).String())
	require.Equal(t, "production", Production.String())
	require.Equal(t, "development", Development.String())
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) {
	return len(p), nil
}
