// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package keystore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet/walletdb"
	"github.com/btcsuite/erc20utxo/internal/zero"
	"github.com/btcsuite/erc20utxo/snacl"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ScryptOptions is used to hold the scrypt parameters needed when deriving new
// passphrase keys.
type ScryptOptions struct {
	N, R, P int
}

var (
	// DefaultScryptOptions is the default options used with scrypt.
	DefaultScryptOptions = ScryptOptions{
		N: snacl.DefaultN,
		R: snacl.DefaultR,
		P: snacl.DefaultP,
	}

	// FastScryptOptions are cheap scrypt parameters for tests and
	// throwaway stores.
	FastScryptOptions = ScryptOptions{
		N: 16,
		R: 8,
		P: 1,
	}
)

// Digest returns the hash signed for msg.
func Digest(msg []byte) []byte {
	return chainhash.DoubleHashB(msg)
}

// Store keeps named secp256k1 signing keys in a walletdb database.  Private
// keys are encrypted with a crypto key, which is itself encrypted with a key
// derived from the passphrase.  A Store is created locked.
type Store struct {
	mtx sync.RWMutex

	db      walletdb.DB
	pubKeys map[string]*btcec.PublicKey

	masterKey    *snacl.SecretKey
	cryptoKeyEnc []byte
	cryptoKey    *snacl.CryptoKey
	locked       bool
}

// Create initializes a new key store in db protected by passphrase.
func Create(db walletdb.DB, passphrase []byte, opts *ScryptOptions) error {
	if opts == nil {
		opts = &DefaultScryptOptions
	}

	masterKey, err := snacl.NewSecretKey(&passphrase, opts.N, opts.R, opts.P)
	if err != nil {
		str := "failed to derive master key"
		return keyStoreError(ErrCrypto, str, err)
	}
	defer masterKey.Zero()

	cryptoKey, err := snacl.GenerateCryptoKey()
	if err != nil {
		str := "failed to generate crypto key"
		return keyStoreError(ErrCrypto, str, err)
	}
	defer cryptoKey.Zero()

	cryptoKeyEnc, err := masterKey.Encrypt(cryptoKey[:])
	if err != nil {
		str := "failed to encrypt crypto key"
		return keyStoreError(ErrCrypto, str, err)
	}

	return walletdb.Update(db, func(tx walletdb.ReadWriteTx) error {
		if tx.ReadWriteBucket(NamespaceKey) != nil {
			return keyStoreError(ErrAlreadyExists,
				"key store already exists", nil)
		}

		ns, err := tx.CreateTopLevelBucket(NamespaceKey)
		if err != nil {
			str := "failed to create key store namespace"
			return keyStoreError(ErrDatabase, str, err)
		}

		if err := createBuckets(ns); err != nil {
			return err
		}
		return putMasterKeys(ns, masterKey.Marshal(), cryptoKeyEnc)
	})
}

// Exists reports whether db holds a key store.
func Exists(db walletdb.DB) (bool, error) {
	var exists bool
	err := walletdb.View(db, func(tx walletdb.ReadTx) error {
		exists = tx.ReadBucket(NamespaceKey) != nil
		return nil
	})
	if err != nil {
		return false, keyStoreError(ErrDatabase, "failed to read "+
			"key store", err)
	}
	return exists, nil
}

// Open loads the key store kept in db.  The returned store is locked.
func Open(db walletdb.DB) (*Store, error) {
	s := &Store{
		db:      db,
		pubKeys: make(map[string]*btcec.PublicKey),
		locked:  true,
	}

	var params []byte
	err := walletdb.View(db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(NamespaceKey)
		if ns == nil {
			return keyStoreError(ErrNoExist,
				"key store does not exist", nil)
		}

		var err error
		params, s.cryptoKeyEnc, err = fetchMasterKeys(ns)
		if err != nil {
			return err
		}

		return forEachPubKey(ns, func(name string, pub []byte) error {
			key, err := btcec.ParsePubKey(pub)
			if err != nil {
				str := fmt.Sprintf("invalid public key %q", name)
				return keyStoreError(ErrCrypto, str, err)
			}
			s.pubKeys[name] = key
			return nil
		})
	})
	if err != nil {
		var kErr KeyStoreError
		if errors.As(err, &kErr) {
			return nil, err
		}
		return nil, keyStoreError(ErrDatabase, "failed to open key "+
			"store", err)
	}

	var masterKey snacl.SecretKey
	if err := masterKey.Unmarshal(params); err != nil {
		str := "failed to unmarshal master key parameters"
		return nil, keyStoreError(ErrCrypto, str, err)
	}
	s.masterKey = &masterKey

	log.Debugf("Opened key store with %d keys", len(s.pubKeys))
	return s, nil
}

// IsLocked reports whether the private keys are unavailable.
func (s *Store) IsLocked() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.locked
}

// Unlock derives the master key from passphrase and decrypts the crypto key,
// making the private keys available until Lock is called.  A failed unlock
// leaves the store locked.
func (s *Store) Unlock(passphrase []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.masterKey.DeriveKey(&passphrase); err != nil {
		s.lock()
		if errors.Is(err, snacl.ErrInvalidPassword) {
			str := "invalid passphrase for key store"
			return keyStoreError(ErrWrongPassphrase, str, nil)
		}

		str := "failed to derive master key"
		return keyStoreError(ErrCrypto, str, err)
	}

	decrypted, err := s.masterKey.Decrypt(s.cryptoKeyEnc)
	if err != nil {
		s.lock()
		str := "failed to decrypt crypto key"
		return keyStoreError(ErrCrypto, str, err)
	}
	defer zero.Bytes(decrypted)

	if len(decrypted) != snacl.KeySize {
		s.lock()
		str := "decrypted crypto key has wrong size"
		return keyStoreError(ErrCrypto, str, nil)
	}

	var cryptoKey snacl.CryptoKey
	copy(cryptoKey[:], decrypted)
	s.cryptoKey = &cryptoKey
	s.locked = false

	log.Debugf("Key store unlocked")
	return nil
}

// Lock zeroes all secret key material held in memory.
func (s *Store) Lock() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.locked {
		return keyStoreError(ErrLocked, errLocked, nil)
	}

	s.lock()
	log.Debugf("Key store locked")
	return nil
}

// lock zeroes the secret keys.  It must be called with the mutex held.
func (s *Store) lock() {
	if s.cryptoKey != nil {
		s.cryptoKey.Zero()
		s.cryptoKey = nil
	}
	s.masterKey.Zero()
	s.locked = true
}

// lookupPubKey returns the public key registered as name.
func (s *Store) lookupPubKey(name string) fn.Option[*btcec.PublicKey] {
	key, ok := s.pubKeys[name]
	if !ok {
		return fn.None[*btcec.PublicKey]()
	}
	return fn.Some(key)
}

// PubKey returns the public key registered as name.
func (s *Store) PubKey(name string) (*btcec.PublicKey, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	key := s.lookupPubKey(name)
	if key.IsNone() {
		str := fmt.Sprintf("no key named %q", name)
		return nil, keyStoreError(ErrKeyNotFound, str, nil)
	}
	return key.UnwrapOr(nil), nil
}

// KeyNames returns the names of all registered keys in lexical order.
func (s *Store) KeyNames() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	names := make([]string, 0, len(s.pubKeys))
	for name := range s.pubKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewKey generates and registers a new signing key under name.  The store
// must be unlocked.
func (s *Store) NewKey(name string) (*btcec.PublicKey, error) {
	if name == "" {
		return nil, keyStoreError(ErrInvalidName,
			"key name may not be empty", nil)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.locked {
		return nil, keyStoreError(ErrLocked, errLocked, nil)
	}
	if s.lookupPubKey(name).IsSome() {
		str := fmt.Sprintf("a key named %q already exists", name)
		return nil, keyStoreError(ErrDuplicate, str, nil)
	}

	priv, err := btcec.NewPrivateKey()
	if err != nil {
		str := "failed to generate private key"
		return nil, keyStoreError(ErrCrypto, str, err)
	}
	defer priv.Zero()

	privBytes := priv.Serialize()
	privEnc, err := s.cryptoKey.Encrypt(privBytes)
	zero.Bytes(privBytes)
	if err != nil {
		str := "failed to encrypt private key"
		return nil, keyStoreError(ErrCrypto, str, err)
	}

	pub := priv.PubKey()
	err = walletdb.Update(s.db, func(tx walletdb.ReadWriteTx) error {
		ns := tx.ReadWriteBucket(NamespaceKey)
		if ns == nil {
			return keyStoreError(ErrNoExist,
				"key store does not exist", nil)
		}
		return putKey(ns, name, pub.SerializeCompressed(), privEnc)
	})
	if err != nil {
		return nil, err
	}

	s.pubKeys[name] = pub
	log.Infof("Registered key %q", name)
	return pub, nil
}

// Sign signs the double SHA256 digest of msg with the key registered as
// keyName and returns the DER encoded signature.
func (s *Store) Sign(keyName string, msg []byte) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.locked {
		return nil, keyStoreError(ErrLocked, errLocked, nil)
	}
	if s.lookupPubKey(keyName).IsNone() {
		str := fmt.Sprintf("no key named %q", keyName)
		return nil, keyStoreError(ErrKeyNotFound, str, nil)
	}

	var privEnc []byte
	err := walletdb.View(s.db, func(tx walletdb.ReadTx) error {
		ns := tx.ReadBucket(NamespaceKey)
		if ns == nil {
			return keyStoreError(ErrNoExist,
				"key store does not exist", nil)
		}
		privEnc = fetchPrivKey(ns, keyName)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if privEnc == nil {
		str := fmt.Sprintf("private key %q is missing", keyName)
		return nil, keyStoreError(ErrKeyNotFound, str, nil)
	}

	privBytes, err := s.cryptoKey.Decrypt(privEnc)
	if err != nil {
		str := fmt.Sprintf("failed to decrypt private key %q", keyName)
		return nil, keyStoreError(ErrCrypto, str, err)
	}
	priv, _ := btcec.PrivKeyFromBytes(privBytes)
	zero.Bytes(privBytes)
	defer priv.Zero()

	sig := ecdsa.Sign(priv, Digest(msg))
	return sig.Serialize(), nil
}

// Verify reports whether sig is a valid signature over msg by the key
// registered as keyName.  Unknown keys and malformed signatures never
// verify.  Verification does not require the store to be unlocked.
func (s *Store) Verify(keyName string, msg, sig []byte) bool {
	s.mtx.RLock()
	key := s.lookupPubKey(keyName)
	s.mtx.RUnlock()

	verified := false
	key.WhenSome(func(pub *btcec.PublicKey) {
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			log.Debugf("Malformed signature for key %q: %v",
				keyName, err)
			return
		}
		verified = parsed.Verify(Digest(msg), pub)
	})
	return verified
}
