// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/lightningnetwork/lnd/tlv"
)

const (
	typeName        tlv.Type = 1
	typeSymbol      tlv.Type = 2
	typeDecimals    tlv.Type = 3
	typeTotalSupply tlv.Type = 4

	typeUtxoAmount tlv.Type = 1
	typeUtxoOwner  tlv.Type = 2
	typeUtxoData   tlv.Type = 3
	typeUtxoSpent  tlv.Type = 4

	typeAccountOwner   tlv.Type = 1
	typeAccountBalance tlv.Type = 2
)

// Encode serializes the full ledger state.
//
// The snapshot is laid out as:
//
//	header   := sub record holding name, symbol, decimals and supply
//	utxos    := varint count, then one sub record per UTXO
//	accounts := varint count, then per account a sub record holding the
//	            owner and balance followed by a varint count of briefs and
//	            each brief as a 4 byte id and an 8 byte amount
//
// Every sub record is a TLV stream prefixed with its varint length.  No
// single TLV record grows with the ledger, so only an individual string or
// data field is bound by tlv.MaxRecordSize.
func (l *Ledger) Encode() ([]byte, error) {
	if err := l.checkFieldSizes(); err != nil {
		return nil, err
	}

	var (
		w   bytes.Buffer
		buf [8]byte
	)

	header, err := l.headerStream()
	if err != nil {
		return nil, err
	}
	if err := writeSubRecord(&w, header, &buf); err != nil {
		return nil, err
	}

	err = tlv.WriteVarInt(&w, uint64(len(l.utxos)), &buf)
	if err != nil {
		return nil, err
	}
	for i := range l.utxos {
		if err := writeUtxo(&w, &l.utxos[i], &buf); err != nil {
			return nil, err
		}
	}

	err = tlv.WriteVarInt(&w, uint64(len(l.accounts)), &buf)
	if err != nil {
		return nil, err
	}
	for i := range l.accounts {
		if err := writeAccount(&w, &l.accounts[i], &buf); err != nil {
			return nil, err
		}
	}

	return w.Bytes(), nil
}

// Decode parses a ledger previously serialized with Encode.  An empty input
// yields an empty ledger.  The decoded ledger is not checked against its
// invariants; see CheckInvariants.
func Decode(b []byte, opts ...Option) (*Ledger, error) {
	if len(b) == 0 {
		return New("", "", 0, opts...), nil
	}

	l, err := decodeSnapshot(bytes.NewReader(b), opts)
	if err != nil {
		return nil, ledgerError(ErrCorrupt, "malformed ledger snapshot",
			err)
	}

	for i := range l.accounts {
		owner := l.accounts[i].Owner
		if owner == "" {
			return nil, ledgerError(ErrCorrupt, "snapshot holds an "+
				"account without owner", nil)
		}
		if _, ok := l.index[owner]; ok {
			str := fmt.Sprintf("snapshot holds account %s twice",
				owner)
			return nil, ledgerError(ErrCorrupt, str, nil)
		}
		l.index[owner] = i
	}

	return l, nil
}

func decodeSnapshot(r *bytes.Reader, opts []Option) (*Ledger, error) {
	var (
		buf          [8]byte
		name, symbol []byte
		decimals     uint8
		supply       uint64
	)

	err := readSubRecord(r, &buf, func(r io.Reader) error {
		stream, err := tlv.NewStream(
			tlv.MakePrimitiveRecord(typeName, &name),
			tlv.MakePrimitiveRecord(typeSymbol, &symbol),
			tlv.MakePrimitiveRecord(typeDecimals, &decimals),
			tlv.MakePrimitiveRecord(typeTotalSupply, &supply),
		)
		if err != nil {
			return err
		}
		return stream.Decode(r)
	})
	if err != nil {
		return nil, err
	}

	l := New(string(name), string(symbol), decimals, opts...)
	l.meta.TotalSupply = Amount(supply)

	n, err := readCount(r, &buf)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		u, err := readUtxo(r, &buf)
		if err != nil {
			return nil, err
		}
		l.utxos = append(l.utxos, u)
	}

	n, err = readCount(r, &buf)
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		a, err := readAccount(r, &buf)
		if err != nil {
			return nil, err
		}
		l.accounts = append(l.accounts, a)
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Len())
	}

	return l, nil
}

// checkFieldSizes fails when a variable length field would not fit in a
// single TLV record.
func (l *Ledger) checkFieldSizes() error {
	check := func(what string, size int) error {
		if size > tlv.MaxRecordSize {
			return fmt.Errorf("%s is %d bytes, limit is %d", what,
				size, tlv.MaxRecordSize)
		}
		return nil
	}

	if err := check("token name", len(l.meta.Name)); err != nil {
		return err
	}
	if err := check("token symbol", len(l.meta.Symbol)); err != nil {
		return err
	}
	for i := range l.utxos {
		u := &l.utxos[i]
		if err := check("utxo owner", len(u.Owner)); err != nil {
			return err
		}
		if err := check("utxo data", len(u.Data)); err != nil {
			return err
		}
	}
	for i := range l.accounts {
		err := check("account owner", len(l.accounts[i].Owner))
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) headerStream() (*tlv.Stream, error) {
	var (
		name     = []byte(l.meta.Name)
		symbol   = []byte(l.meta.Symbol)
		decimals = l.meta.Decimals
		supply   = uint64(l.meta.TotalSupply)
	)

	var records []tlv.Record
	if len(name) > 0 {
		records = append(records, tlv.MakePrimitiveRecord(
			typeName, &name,
		))
	}
	if len(symbol) > 0 {
		records = append(records, tlv.MakePrimitiveRecord(
			typeSymbol, &symbol,
		))
	}
	records = append(records,
		tlv.MakePrimitiveRecord(typeDecimals, &decimals),
		tlv.MakePrimitiveRecord(typeTotalSupply, &supply),
	)

	return tlv.NewStream(records...)
}

func writeUtxo(w io.Writer, u *Utxo, buf *[8]byte) error {
	amount := uint64(u.Amount)
	owner := []byte(u.Owner)
	var spent uint8
	if u.Spent {
		spent = 1
	}

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(typeUtxoAmount, &amount),
		tlv.MakePrimitiveRecord(typeUtxoOwner, &owner),
	}
	if len(u.Data) > 0 {
		records = append(records, tlv.MakePrimitiveRecord(
			typeUtxoData, &u.Data,
		))
	}
	records = append(records, tlv.MakePrimitiveRecord(
		typeUtxoSpent, &spent,
	))

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}
	return writeSubRecord(w, stream, buf)
}

func readUtxo(r io.Reader, buf *[8]byte) (Utxo, error) {
	var (
		amount uint64
		owner  []byte
		data   []byte
		spent  uint8
	)

	err := readSubRecord(r, buf, func(r io.Reader) error {
		stream, err := tlv.NewStream(
			tlv.MakePrimitiveRecord(typeUtxoAmount, &amount),
			tlv.MakePrimitiveRecord(typeUtxoOwner, &owner),
			tlv.MakePrimitiveRecord(typeUtxoData, &data),
			tlv.MakePrimitiveRecord(typeUtxoSpent, &spent),
		)
		if err != nil {
			return err
		}
		return stream.Decode(r)
	})
	if err != nil {
		return Utxo{}, err
	}

	return Utxo{
		Amount: Amount(amount),
		Owner:  string(owner),
		Data:   cloneBytes(data),
		Spent:  spent != 0,
	}, nil
}

func writeAccount(w io.Writer, a *Account, buf *[8]byte) error {
	owner := []byte(a.Owner)
	balance := uint64(a.Balance)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(typeAccountOwner, &owner),
		tlv.MakePrimitiveRecord(typeAccountBalance, &balance),
	)
	if err != nil {
		return err
	}
	if err := writeSubRecord(w, stream, buf); err != nil {
		return err
	}

	err = tlv.WriteVarInt(w, uint64(len(a.Utxos)), buf)
	if err != nil {
		return err
	}
	for _, b := range a.Utxos {
		id := b.ID
		amount := uint64(b.Amount)
		if err := tlv.EUint32(w, &id, buf); err != nil {
			return err
		}
		if err := tlv.EUint64(w, &amount, buf); err != nil {
			return err
		}
	}
	return nil
}

func readAccount(r *bytes.Reader, buf *[8]byte) (Account, error) {
	var (
		owner   []byte
		balance uint64
	)

	err := readSubRecord(r, buf, func(r io.Reader) error {
		stream, err := tlv.NewStream(
			tlv.MakePrimitiveRecord(typeAccountOwner, &owner),
			tlv.MakePrimitiveRecord(typeAccountBalance, &balance),
		)
		if err != nil {
			return err
		}
		return stream.Decode(r)
	})
	if err != nil {
		return Account{}, err
	}

	n, err := readCount(r, buf)
	if err != nil {
		return Account{}, err
	}

	var briefs []UtxoBrief
	for i := uint64(0); i < n; i++ {
		var (
			id     uint32
			amount uint64
		)
		if err := tlv.DUint32(r, &id, buf, 4); err != nil {
			return Account{}, err
		}
		if err := tlv.DUint64(r, &amount, buf, 8); err != nil {
			return Account{}, err
		}
		briefs = append(briefs, UtxoBrief{
			ID:     id,
			Amount: Amount(amount),
		})
	}

	return Account{
		Owner:   string(owner),
		Balance: Amount(balance),
		Utxos:   briefs,
	}, nil
}

// readCount reads a varint entry count.  Every entry takes at least one
// byte, so a count beyond the unread input is rejected before any
// allocation.
func readCount(r *bytes.Reader, buf *[8]byte) (uint64, error) {
	n, err := tlv.ReadVarInt(r, buf)
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Len()) {
		return 0, io.ErrUnexpectedEOF
	}
	return n, nil
}

// writeSubRecord writes the encoded stream prefixed with its varint length.
func writeSubRecord(w io.Writer, stream *tlv.Stream, buf *[8]byte) error {
	var b bytes.Buffer
	if err := stream.Encode(&b); err != nil {
		return err
	}
	if err := tlv.WriteVarInt(w, uint64(b.Len()), buf); err != nil {
		return err
	}
	_, err := w.Write(b.Bytes())
	return err
}

// readSubRecord calls decode with a reader limited to the next length
// prefixed sub record of r.
func readSubRecord(r io.Reader, buf *[8]byte,
	decode func(io.Reader) error) error {

	size, err := tlv.ReadVarInt(r, buf)
	if err != nil {
		return err
	}

	inner := &io.LimitedReader{R: r, N: int64(size)}
	if err := decode(inner); err != nil {
		return err
	}
	if inner.N != 0 {
		return errors.New("trailing bytes in sub record")
	}
	return nil
}
