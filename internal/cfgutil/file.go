// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileExists reports whether the named file or directory exists.  Errors
// other than a missing path are returned unchanged.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// EnsureDir creates dir and any missing parents with mode perm.  An empty dir
// names the working directory and is left alone.  It fails when dir exists
// but is not a directory.
func EnsureDir(dir string, perm fs.FileMode) error {
	if dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory",
				dir)
		}
		return nil

	case !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
