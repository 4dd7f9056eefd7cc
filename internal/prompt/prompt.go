// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prompt reads passphrases for the key store from an interactive
// terminal.
package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is replaced in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// ErrEmptyPassphrase is returned when an empty passphrase is entered where
// one is required.
var ErrEmptyPassphrase = errors.New("passphrase may not be empty")

// promptPass prompts the user for a passphrase.  The passphrase is read
// without echo when stdin is a terminal.  When confirm is set the user must
// enter it twice.
func promptPass(r *bufio.Reader, prefix string, confirm bool) ([]byte, error) {
	for {
		fmt.Print(prefix + ": ")
		pass, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if len(pass) == 0 {
			fmt.Println(ErrEmptyPassphrase)
			continue
		}

		if !confirm {
			return pass, nil
		}

		fmt.Print("Confirm passphrase: ")
		again, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(pass, again) {
			fmt.Println("The entered passphrases do not match")
			continue
		}

		return pass, nil
	}
}

func readLine(r *bufio.Reader) ([]byte, error) {
	if r == nil {
		pass, err := readPassword()
		fmt.Print("\n")
		if err != nil {
			return nil, err
		}
		return bytes.TrimSpace(pass), nil
	}

	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return []byte(strings.TrimSpace(line)), nil
}

// PrivatePass prompts the user for the key store passphrase.  When create is
// set the passphrase is confirmed before returning.  A nil reader reads from
// the terminal with echo disabled.
func PrivatePass(r *bufio.Reader, create bool) ([]byte, error) {
	if create {
		return promptPass(r, "Enter a passphrase for the key store", true)
	}
	return promptPass(r, "Enter the key store passphrase", false)
}

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
