// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zero contains functions to clear data from byte slices and arrays
// holding key material or passphrases.
package zero

// Bytes sets all bytes in the passed slice to zero.
func Bytes(b []byte) {
	clear(b)
}

// Bytea32 clears the 32-byte array by filling it with the zero value.
func Bytea32(b *[32]byte) {
	*b = [32]byte{}
}

// Bytea64 clears the 64-byte array by filling it with the zero value.
func Bytea64(b *[64]byte) {
	*b = [64]byte{}
}
