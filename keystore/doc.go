// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package keystore provides named secp256k1 signing keys kept in a walletdb
database.

Keys are addressed by name, which for the token ledger is the address of the
account they authorize.  Signatures are DER encoded ECDSA signatures over the
double SHA256 of the message.

The private keys are encrypted with a random crypto key.  The crypto key is
encrypted with a master key derived from the passphrase with scrypt, so the
passphrase only guards a single small secret.  A store starts out locked;
signing and creating keys require Unlock, verification does not.
*/
package keystore
