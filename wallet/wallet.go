// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/erc20utxo/ledgerdb"
	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet/coinselect"
)

// Signer produces spend signatures for the key registered as keyName.
type Signer interface {
	Sign(keyName string, msg []byte) ([]byte, error)
}

// Config holds the collaborators of a Wallet.
type Config struct {
	// Store persists the ledger record.  It is required.
	Store ledgerdb.RecordStore

	// Signer signs UTXO spends made on behalf of payers.  When nil,
	// payments carry empty signatures.
	Signer Signer

	// Verifier checks spend signatures.  When nil, signatures are not
	// checked.
	Verifier tokenmgr.Verifier

	// CoinSelector chooses the UTXOs funding a payment.  It defaults to
	// coinselect.InOrder.
	CoinSelector coinselect.Strategy
}

// Wallet exposes the token operations over a persisted ledger.  Each call
// loads the ledger record, runs a single operation and, if the operation
// changed the ledger and succeeded, stores the record again.  Calls are
// serialized.
type Wallet struct {
	mu  sync.Mutex
	cfg Config
}

// New returns a Wallet for cfg.
func New(cfg Config) (*Wallet, error) {
	if cfg.Store == nil {
		return nil, errors.New("wallet: no record store configured")
	}
	if cfg.CoinSelector == nil {
		cfg.CoinSelector = coinselect.InOrder{}
	}
	return &Wallet{cfg: cfg}, nil
}

// resolve returns addr, or sender when addr is empty.
func resolve(addr, sender string) string {
	if addr == "" {
		return sender
	}
	return addr
}

// loadLedger reads and decodes the stored ledger.  The returned bool is false
// when no record has been stored yet, in which case an empty ledger is
// returned.
func (w *Wallet) loadLedger(ctx context.Context,
	events tokenmgr.EventSink) (*tokenmgr.Ledger, bool, error) {

	record, err := w.cfg.Store.Load(ctx)
	if err != nil {
		return nil, false, tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrDatabase,
			Description: "failed to load ledger",
			Err:         err,
		}
	}

	opts := []tokenmgr.Option{tokenmgr.WithEventSink(events)}
	if w.cfg.Verifier != nil {
		opts = append(opts, tokenmgr.WithVerifier(w.cfg.Verifier))
	}

	l, err := tokenmgr.Decode(record, opts...)
	if err != nil {
		return nil, false, err
	}
	if err := l.CheckInvariants(); err != nil {
		return nil, false, err
	}

	return l, record != nil, nil
}

// storeLedger encodes and stores l.
func (w *Wallet) storeLedger(ctx context.Context, l *tokenmgr.Ledger) error {
	record, err := l.Encode()
	if err != nil {
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrCorrupt,
			Description: "failed to encode ledger",
			Err:         err,
		}
	}

	if err := w.cfg.Store.Store(ctx, record); err != nil {
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrDatabase,
			Description: "failed to store ledger",
			Err:         err,
		}
	}
	return nil
}

var errNotInitialized = tokenmgr.LedgerError{
	ErrorCode:   tokenmgr.ErrNotInitialized,
	Description: "token has not been created",
}

// view runs f against the stored ledger without storing it back.
func (w *Wallet) view(ctx context.Context,
	f func(l *tokenmgr.Ledger) error) error {

	w.mu.Lock()
	defer w.mu.Unlock()

	l, _, err := w.loadLedger(ctx, nil)
	if err != nil {
		return err
	}
	if l.IsEmpty() {
		return errNotInitialized
	}
	return f(l)
}

// update runs f against the stored ledger and stores the result if f
// succeeds.  Events produced by f are logged once the ledger is stored.
func (w *Wallet) update(ctx context.Context, op string,
	f func(l *tokenmgr.Ledger) error) error {

	w.mu.Lock()
	defer w.mu.Unlock()

	var events tokenmgr.EventLog
	l, _, err := w.loadLedger(ctx, &events)
	if err != nil {
		return err
	}
	if l.IsEmpty() {
		return errNotInitialized
	}

	if err := f(l); err != nil {
		log.Debugf("%s rejected: %v", op, err)
		return err
	}

	if err := w.storeLedger(ctx, l); err != nil {
		return err
	}

	n := len(events.Events)
	log.Debugf("%s committed with %d %s", op, n,
		pickNoun(n, "event", "events"))
	for _, e := range events.Events {
		log.Info(e)
	}
	log.Tracef("Accounts after %s: %v", op, dumpClosure(l.Accounts()))

	return nil
}

// CreateCoin creates the token.  A non-zero totalSupply is minted to sender as
// the first UTXO.  Creating a token when one already exists fails with
// ErrAlreadyExists and leaves the stored ledger untouched.
func (w *Wallet) CreateCoin(ctx context.Context, sender, name, symbol string,
	decimals uint8, totalSupply tokenmgr.Amount) error {

	w.mu.Lock()
	defer w.mu.Unlock()

	existing, _, err := w.loadLedger(ctx, nil)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		str := fmt.Sprintf("token %s (%s) already exists",
			existing.Name(), existing.Symbol())
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrAlreadyExists,
			Description: str,
		}
	}

	var events tokenmgr.EventLog
	opts := []tokenmgr.Option{tokenmgr.WithEventSink(&events)}
	if w.cfg.Verifier != nil {
		opts = append(opts, tokenmgr.WithVerifier(w.cfg.Verifier))
	}
	l := tokenmgr.New(name, symbol, decimals, opts...)

	if totalSupply > 0 {
		_, err := l.Mint(totalSupply, tokenmgr.TxOutput{
			Amount: totalSupply,
			Owner:  sender,
		}, nil)
		if err != nil {
			return err
		}
	}

	if err := w.storeLedger(ctx, l); err != nil {
		return err
	}

	log.Infof("Created token %s (%s) with %v decimals and supply %v",
		name, symbol, decimals, totalSupply.Format(decimals))
	for _, e := range events.Events {
		log.Info(e)
	}
	return nil
}

// Reset replaces the stored ledger with an empty one.  Resetting when nothing
// was ever stored does nothing.
func (w *Wallet) Reset(ctx context.Context, sender string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, exists, err := w.loadLedger(ctx, nil)
	if err != nil && !tokenmgr.IsError(err, tokenmgr.ErrCorrupt) {
		return err
	}
	if err == nil && !exists {
		log.Infof("Nothing to reset")
		return nil
	}

	if err := w.storeLedger(ctx, tokenmgr.New("", "", 0)); err != nil {
		return err
	}

	log.Infof("Ledger reset by %s", sender)
	return nil
}

// Name returns the token name.
func (w *Wallet) Name(ctx context.Context, sender string) (string, error) {
	var name string
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		name = l.Name()
		return nil
	})
	return name, err
}

// Symbol returns the token symbol.
func (w *Wallet) Symbol(ctx context.Context, sender string) (string, error) {
	var symbol string
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		symbol = l.Symbol()
		return nil
	})
	return symbol, err
}

// Decimals returns the number of decimals of the token.
func (w *Wallet) Decimals(ctx context.Context, sender string) (uint8, error) {
	var decimals uint8
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		decimals = l.Decimals()
		return nil
	})
	return decimals, err
}

// TotalSupply returns the amount of tokens in circulation.
func (w *Wallet) TotalSupply(ctx context.Context,
	sender string) (tokenmgr.Amount, error) {

	var supply tokenmgr.Amount
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		supply = l.TotalSupply()
		return nil
	})
	return supply, err
}

// BalanceOf returns the balance of owner, which defaults to sender.  Unknown
// owners have a zero balance.
func (w *Wallet) BalanceOf(ctx context.Context, sender,
	owner string) (tokenmgr.Amount, error) {

	var balance tokenmgr.Amount
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		balance = l.BalanceOf(resolve(owner, sender))
		return nil
	})
	return balance, err
}

// OpenAccount opens an account for owner, which defaults to sender.  Opening
// an existing account does nothing.
func (w *Wallet) OpenAccount(ctx context.Context, sender, owner string) error {
	return w.update(ctx, "open account", func(l *tokenmgr.Ledger) error {
		return l.CreateAccount(resolve(owner, sender))
	})
}

// unknownAccount returns the error reported for addresses without account.
func unknownAccount(addr string) error {
	return tokenmgr.LedgerError{
		ErrorCode:   tokenmgr.ErrUnknownAccount,
		Description: fmt.Sprintf("account for %s does not exist", addr),
	}
}

// Transfer spends the UTXO referenced by input, owned by sender, to output.
// The sender must already hold an account.  The output owner defaults to
// sender and is given an account when it has none.
func (w *Wallet) Transfer(ctx context.Context, sender string,
	value tokenmgr.Amount, input tokenmgr.TxInput,
	output tokenmgr.TxOutput) (bool, error) {

	output.Owner = resolve(output.Owner, sender)

	var ok bool
	err := w.update(ctx, "transfer", func(l *tokenmgr.Ledger) error {
		if !l.AccountHolder(sender) {
			return unknownAccount(sender)
		}

		var err error
		ok, err = l.Transfer(sender, value, input, output)
		return err
	})
	return ok, err
}

// Mint creates amount tokens for the output owner, which defaults to sender,
// and returns the id of the new UTXO.
func (w *Wallet) Mint(ctx context.Context, sender string,
	amount tokenmgr.Amount, output tokenmgr.TxOutput,
	data []byte) (uint32, error) {

	output.Owner = resolve(output.Owner, sender)

	var id uint32
	err := w.update(ctx, "mint", func(l *tokenmgr.Ledger) error {
		var err error
		id, err = l.Mint(amount, output, data)
		return err
	})
	return id, err
}

// Burn destroys amount tokens of the output owner, which defaults to sender,
// and returns the id of the burn receipt.
func (w *Wallet) Burn(ctx context.Context, sender string,
	amount tokenmgr.Amount, output tokenmgr.TxOutput,
	data []byte) (uint32, error) {

	output.Owner = resolve(output.Owner, sender)

	var id uint32
	err := w.update(ctx, "burn", func(l *tokenmgr.Ledger) error {
		var err error
		id, err = l.Burn(amount, output, data)
		return err
	})
	return id, err
}

// Fund mints amount tokens to payee, which defaults to sender.
func (w *Wallet) Fund(ctx context.Context, sender string,
	amount tokenmgr.Amount, payee string) (uint32, error) {

	payee = resolve(payee, sender)

	var id uint32
	err := w.update(ctx, "fund", func(l *tokenmgr.Ledger) error {
		if _, err := l.EnsureAccount(payee); err != nil {
			return err
		}

		var err error
		id, err = l.Mint(amount, tokenmgr.TxOutput{
			Amount: amount,
			Owner:  payee,
		}, nil)
		return err
	})
	return id, err
}

// Defund burns amount tokens of payer, which defaults to sender.
func (w *Wallet) Defund(ctx context.Context, sender string,
	amount tokenmgr.Amount, payer string) (uint32, error) {

	payer = resolve(payer, sender)

	var id uint32
	err := w.update(ctx, "defund", func(l *tokenmgr.Ledger) error {
		if _, err := l.EnsureAccount(payer); err != nil {
			return err
		}

		var err error
		id, err = l.Burn(amount, tokenmgr.TxOutput{
			Amount: amount,
			Owner:  payer,
		}, nil)
		return err
	})
	return id, err
}

// Utxo returns the UTXO id.
func (w *Wallet) Utxo(ctx context.Context, sender string,
	id uint32) (tokenmgr.Utxo, error) {

	var utxo tokenmgr.Utxo
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		var err error
		utxo, err = l.Utxo(id)
		return err
	})
	return utxo, err
}

// Account returns the account of owner, which defaults to sender.
func (w *Wallet) Account(ctx context.Context, sender,
	owner string) (tokenmgr.Account, error) {

	owner = resolve(owner, sender)

	var acct tokenmgr.Account
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		if !l.AccountHolder(owner) {
			return unknownAccount(owner)
		}
		acct = l.Account(owner)
		return nil
	})
	return acct, err
}

// Snapshot is a copy of the full ledger state.
type Snapshot struct {
	Meta     tokenmgr.TokenMeta
	Accounts []tokenmgr.Account
	Utxos    []tokenmgr.Utxo
}

// Snapshot returns a copy of the full ledger state.
func (w *Wallet) Snapshot(ctx context.Context, sender string) (*Snapshot,
	error) {

	var s *Snapshot
	err := w.view(ctx, func(l *tokenmgr.Ledger) error {
		s = &Snapshot{
			Meta:     l.Meta(),
			Accounts: l.Accounts(),
			Utxos:    l.Utxos(),
		}
		return nil
	})
	return s, err
}
