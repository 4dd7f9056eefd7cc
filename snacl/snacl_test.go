// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snacl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Cheap scrypt parameters keep the tests fast.
const (
	testN = 16
	testR = 8
	testP = 1
)

var (
	password = []byte("sikrit")
	message  = []byte("ledger key material of sorts")
)

func newTestKey(t *testing.T) *SecretKey {
	t.Helper()

	key, err := NewSecretKey(&password, testN, testR, testP)
	require.NoError(t, err)
	return key
}

func TestSecretKeyMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	params := key.Marshal()

	var sk SecretKey
	require.NoError(t, sk.Unmarshal(params))
	require.Equal(t, key.Parameters, sk.Parameters)

	require.NoError(t, sk.DeriveKey(&password))
	require.Equal(t, key.Key[:], sk.Key[:])

	wrong := []byte("wrong password")
	require.ErrorIs(t, sk.DeriveKey(&wrong), ErrInvalidPassword)
}

func TestUnmarshalMalformed(t *testing.T) {
	t.Parallel()

	var sk SecretKey
	require.ErrorIs(t, sk.Unmarshal([]byte{1, 2, 3}), ErrMalformed)
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)

	blob, err := key.Encrypt(message)
	require.NoError(t, err)
	require.Len(t, blob, NonceSize+Overhead+len(message))

	plain, err := key.Decrypt(blob)
	require.NoError(t, err)
	require.Equal(t, message, plain)

	// Flipping a byte of the ciphertext must be detected.
	blob[len(blob)-15]++
	_, err = key.Decrypt(blob)
	require.ErrorIs(t, err, ErrDecryptFailed)

	_, err = key.Decrypt(blob[:NonceSize-1])
	require.ErrorIs(t, err, ErrMalformed)
}

func TestZeroAndRederive(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	orig := *key.Key

	key.Zero()
	require.Equal(t, CryptoKey{}, *key.Key)

	require.NoError(t, key.DeriveKey(&password))
	require.Equal(t, orig, *key.Key)

	bogus := []byte("bogus")
	require.ErrorIs(t, key.DeriveKey(&bogus), ErrInvalidPassword)
}

func TestCryptoKey(t *testing.T) {
	t.Parallel()

	ck, err := GenerateCryptoKey()
	require.NoError(t, err)
	require.NotEqual(t, CryptoKey{}, *ck)

	blob, err := ck.Encrypt(message)
	require.NoError(t, err)

	plain, err := ck.Decrypt(blob)
	require.NoError(t, err)
	require.Equal(t, message, plain)

	other, err := GenerateCryptoKey()
	require.NoError(t, err)
	_, err = other.Decrypt(blob)
	require.ErrorIs(t, err, ErrDecryptFailed)
}
