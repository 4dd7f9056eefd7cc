// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"fmt"

	"github.com/btcsuite/btcwallet/walletdb"
)

// Key store database layout, all inside the namespace bucket:
//
//	masterprivparams -> marshalled snacl.SecretKey parameters
//	cryptoprivkey    -> crypto key encrypted with the master key
//	pubkeys/<name>   -> compressed public key
//	privkeys/<name>  -> private key encrypted with the crypto key
var (
	// NamespaceKey is the top-level bucket the key store lives in.
	NamespaceKey = []byte("keystore")

	masterPrivParamsName = []byte("masterprivparams")
	cryptoPrivKeyName    = []byte("cryptoprivkey")
	pubKeysBucketName    = []byte("pubkeys")
	privKeysBucketName   = []byte("privkeys")
)

// putMasterKeys writes the master key parameters and the encrypted crypto
// key.
func putMasterKeys(ns walletdb.ReadWriteBucket, params,
	cryptoKeyEnc []byte) error {

	if err := ns.Put(masterPrivParamsName, params); err != nil {
		str := "failed to store master key parameters"
		return keyStoreError(ErrDatabase, str, err)
	}
	if err := ns.Put(cryptoPrivKeyName, cryptoKeyEnc); err != nil {
		str := "failed to store encrypted crypto key"
		return keyStoreError(ErrDatabase, str, err)
	}
	return nil
}

// fetchMasterKeys returns copies of the master key parameters and the
// encrypted crypto key.
func fetchMasterKeys(ns walletdb.ReadBucket) ([]byte, []byte, error) {
	params := ns.Get(masterPrivParamsName)
	cryptoKeyEnc := ns.Get(cryptoPrivKeyName)
	if params == nil || cryptoKeyEnc == nil {
		str := "key store is missing its master keys"
		return nil, nil, keyStoreError(ErrDatabase, str, nil)
	}

	return append([]byte(nil), params...),
		append([]byte(nil), cryptoKeyEnc...), nil
}

// putKey stores the public and encrypted private key registered as name.
func putKey(ns walletdb.ReadWriteBucket, name string, pub,
	privEnc []byte) error {

	pubs := ns.NestedReadWriteBucket(pubKeysBucketName)
	privs := ns.NestedReadWriteBucket(privKeysBucketName)
	if pubs == nil || privs == nil {
		return keyStoreError(ErrDatabase, "key buckets not found", nil)
	}

	if err := pubs.Put([]byte(name), pub); err != nil {
		str := fmt.Sprintf("failed to store public key %q", name)
		return keyStoreError(ErrDatabase, str, err)
	}
	if err := privs.Put([]byte(name), privEnc); err != nil {
		str := fmt.Sprintf("failed to store private key %q", name)
		return keyStoreError(ErrDatabase, str, err)
	}
	return nil
}

// fetchPrivKey returns a copy of the encrypted private key registered as
// name, or nil if there is none.
func fetchPrivKey(ns walletdb.ReadBucket, name string) []byte {
	privs := ns.NestedReadBucket(privKeysBucketName)
	if privs == nil {
		return nil
	}
	v := privs.Get([]byte(name))
	if v == nil {
		return nil
	}
	return append([]byte(nil), v...)
}

// forEachPubKey calls f for every registered public key.
func forEachPubKey(ns walletdb.ReadBucket, f func(name string,
	pub []byte) error) error {

	pubs := ns.NestedReadBucket(pubKeysBucketName)
	if pubs == nil {
		return keyStoreError(ErrDatabase, "key buckets not found", nil)
	}
	return pubs.ForEach(func(k, v []byte) error {
		return f(string(k), v)
	})
}

// createBuckets creates the nested key buckets.
func createBuckets(ns walletdb.ReadWriteBucket) error {
	for _, name := range [][]byte{pubKeysBucketName, privKeysBucketName} {
		if _, err := ns.CreateBucket(name); err != nil {
			str := fmt.Sprintf("failed to create bucket %s", name)
			return keyStoreError(ErrDatabase, str, err)
		}
	}
	return nil
}
