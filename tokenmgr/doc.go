// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package tokenmgr implements a fungible token ledger whose balances are kept
both as account totals and as a set of individually spendable outputs.

Every unit of value is created as a UTXO by a mint, and is moved by spending a
UTXO and creating new ones for the receiver and, when the spent output is
larger than the transfer, for the change.  Each account carries an index of
the unspent outputs it owns.  The ledger maintains the following at all
times:

	TotalSupply == sum of account balances == sum of unspent UTXO amounts

and every unspent UTXO appears exactly once in its owner's index.

UTXO ids are dense and zero based.  Spent UTXOs are never removed from the
set, so an id always refers to the same output.

A Ledger is not safe for concurrent use.  It is meant to be decoded from a
snapshot, mutated by a single operation and encoded again.
*/
package tokenmgr
