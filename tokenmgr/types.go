// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"strconv"
	"strings"
)

// Amount is a quantity of tokens in base units.
type Amount uint64

// Format renders the amount with the given number of decimals.  With two
// decimals 505 is rendered as "5.05".  Trailing zeros of the fractional part
// are kept.
func (a Amount) Format(decimals uint8) string {
	s := strconv.FormatUint(uint64(a), 10)
	if decimals == 0 {
		return s
	}

	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d-len(s)+1) + s
	}
	return s[:len(s)-d] + "." + s[len(s)-d:]
}

// String returns the amount in base units.
func (a Amount) String() string {
	return strconv.FormatUint(uint64(a), 10)
}

// TokenMeta describes the token itself.  TotalSupply is the only field that
// changes after creation.
type TokenMeta struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply Amount
}

// Utxo is a discrete record of value with a single owner.  Its identity is its
// position in the ledger's UTXO set.
type Utxo struct {
	Amount Amount
	Owner  string
	Data   []byte
	Spent  bool
}

// TxInput references a UTXO to consume together with the owner's signature
// authorizing the spend.
type TxInput struct {
	ID        uint32
	Signature []byte
}

// TxOutput describes a UTXO to create.
type TxOutput struct {
	Amount Amount
	Owner  string
}

// UtxoBrief is an entry of an account's UTXO index.
type UtxoBrief struct {
	ID     uint32
	Amount Amount
}

// Account is the aggregate view of an address.  Balance always equals the sum
// of the amounts in Utxos.
type Account struct {
	Owner   string
	Balance Amount
	Utxos   []UtxoBrief
}

// FindUtxo returns the position of the UTXO id in the account's index, or -1
// if the account does not hold it.
func (a *Account) FindUtxo(id uint32) int {
	for i, u := range a.Utxos {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// UtxoAmount returns the amount of the indexed UTXO id, or zero if the account
// does not hold it.
func (a *Account) UtxoAmount(id uint32) Amount {
	if i := a.FindUtxo(id); i >= 0 {
		return a.Utxos[i].Amount
	}
	return 0
}

// SpendMessage returns the message an owner signs to authorize spending the
// UTXO id.
func SpendMessage(id uint32) []byte {
	return strconv.AppendUint(nil, uint64(id), 10)
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func (u *Utxo) clone() Utxo {
	c := *u
	c.Data = cloneBytes(u.Data)
	return c
}

func (a *Account) clone() Account {
	c := *a
	c.Utxos = nil
	if len(a.Utxos) > 0 {
		c.Utxos = make([]UtxoBrief, len(a.Utxos))
		copy(c.Utxos, a.Utxos)
	}
	return c
}
