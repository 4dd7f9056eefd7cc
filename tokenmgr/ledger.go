// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import (
	"fmt"
	"math"

	"github.com/btcsuite/erc20utxo/wallet/coinselect"
)

// Verifier checks a signature made by the named key over msg.
type Verifier interface {
	Verify(keyName string, msg, sig []byte) bool
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(keyName string, msg, sig []byte) bool

// Verify implements Verifier.
func (f VerifierFunc) Verify(keyName string, msg, sig []byte) bool {
	return f(keyName, msg, sig)
}

// AcceptAllVerifier accepts every signature.  It is meant for trusted hosts
// and tests.
var AcceptAllVerifier Verifier = VerifierFunc(
	func(string, []byte, []byte) bool { return true },
)

// Option configures a Ledger.
type Option func(*Ledger)

// WithVerifier sets the verifier used to authorize spends.  Without one,
// spends are not signature checked.
func WithVerifier(v Verifier) Option {
	return func(l *Ledger) {
		l.verifier = v
	}
}

// WithEventSink sets where the ledger reports its events.
func WithEventSink(s EventSink) Option {
	return func(l *Ledger) {
		l.events = s
	}
}

// Ledger holds the token metadata together with every account and UTXO.
type Ledger struct {
	meta     TokenMeta
	utxos    []Utxo
	accounts []Account
	index    map[string]int

	verifier Verifier
	events   EventSink
}

// New returns an empty ledger for the described token.
func New(name, symbol string, decimals uint8, opts ...Option) *Ledger {
	l := &Ledger{
		meta: TokenMeta{
			Name:     name,
			Symbol:   symbol,
			Decimals: decimals,
		},
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsEmpty reports whether the ledger describes no token at all, which is the
// state before creation and after a reset.  A ledger holding a UTXO or an
// account is never empty, even with blank metadata and no supply.
func (l *Ledger) IsEmpty() bool {
	return l.meta == TokenMeta{} && len(l.utxos) == 0 &&
		len(l.accounts) == 0
}

// Meta returns the token metadata.
func (l *Ledger) Meta() TokenMeta { return l.meta }

// Name returns the token name.
func (l *Ledger) Name() string { return l.meta.Name }

// Symbol returns the token symbol.
func (l *Ledger) Symbol() string { return l.meta.Symbol }

// Decimals returns the number of decimals used to display amounts.
func (l *Ledger) Decimals() uint8 { return l.meta.Decimals }

// TotalSupply returns the amount of tokens in circulation.
func (l *Ledger) TotalSupply() Amount { return l.meta.TotalSupply }

// BalanceOf returns the balance of addr.  Unknown addresses have a zero
// balance.
func (l *Ledger) BalanceOf(addr string) Amount {
	return l.Account(addr).Balance
}

// UtxoLen returns the number of UTXOs ever created, spent or not.
func (l *Ledger) UtxoLen() int { return len(l.utxos) }

// Utxo returns a copy of the UTXO id.
func (l *Ledger) Utxo(id uint32) (Utxo, error) {
	if int64(id) >= int64(len(l.utxos)) {
		str := fmt.Sprintf("utxo id %d out of bounds (%d utxos)", id,
			len(l.utxos))
		return Utxo{}, ledgerError(ErrOutOfBounds, str, nil)
	}
	return l.utxos[id].clone(), nil
}

// Utxos returns a copy of the full UTXO set in id order.
func (l *Ledger) Utxos() []Utxo {
	utxos := make([]Utxo, len(l.utxos))
	for i := range l.utxos {
		utxos[i] = l.utxos[i].clone()
	}
	return utxos
}

// Accounts returns a copy of every account in creation order.
func (l *Ledger) Accounts() []Account {
	accounts := make([]Account, len(l.accounts))
	for i := range l.accounts {
		accounts[i] = l.accounts[i].clone()
	}
	return accounts
}

// FindAccount returns the position of the account of addr.
func (l *Ledger) FindAccount(addr string) (int, bool) {
	i, ok := l.index[addr]
	return i, ok
}

// AccountHolder reports whether addr has an account.
func (l *Ledger) AccountHolder(addr string) bool {
	_, ok := l.index[addr]
	return ok
}

// Account returns a copy of the account of addr.  When addr holds no account
// a zero Account with an empty owner is returned, so callers that care must
// check AccountHolder first.
func (l *Ledger) Account(addr string) Account {
	i, ok := l.index[addr]
	if !ok {
		return Account{}
	}
	return l.accounts[i].clone()
}

// CreateAccount opens an account for addr.  Opening an account that already
// exists does nothing.
func (l *Ledger) CreateAccount(addr string) error {
	_, err := l.EnsureAccount(addr)
	return err
}

// EnsureAccount opens an account for addr if it has none and reports whether
// one was created.  Queries never create accounts, only mutating operations
// call this.
func (l *Ledger) EnsureAccount(addr string) (bool, error) {
	if addr == "" {
		return false, ledgerError(ErrZeroAddress,
			"cannot open an account for the zero address", nil)
	}
	if _, ok := l.index[addr]; ok {
		return false, nil
	}

	l.index[addr] = len(l.accounts)
	l.accounts = append(l.accounts, Account{Owner: addr})
	log.Debugf("Opened account %s", addr)
	return true, nil
}

func (l *Ledger) account(addr string) *Account {
	i, ok := l.index[addr]
	if !ok {
		return nil
	}
	return &l.accounts[i]
}

func (l *Ledger) notify(e Event) {
	log.Tracef("%v", e)
	if l.events != nil {
		l.events.Notify(e)
	}
}

// checkOutput validates that amount is a usable amount for output.
func checkOutput(amount Amount, output TxOutput) error {
	if output.Amount != amount {
		str := fmt.Sprintf("declared amount %d does not match output "+
			"amount %d", amount, output.Amount)
		return ledgerError(ErrInvalidAmount, str, nil)
	}
	if amount == 0 {
		return ledgerError(ErrInvalidAmount, "amount must be positive",
			nil)
	}
	if output.Owner == "" {
		return ledgerError(ErrZeroAddress,
			"cannot create an output for the zero address", nil)
	}
	return nil
}

// Mint creates amount new tokens as a UTXO owned by output.Owner.  The id of
// the new UTXO is returned.
func (l *Ledger) Mint(amount Amount, output TxOutput, data []byte) (uint32,
	error) {

	if err := checkOutput(amount, output); err != nil {
		return 0, err
	}
	if l.meta.TotalSupply > math.MaxUint64-amount {
		str := fmt.Sprintf("minting %d overflows the total supply %d",
			amount, l.meta.TotalSupply)
		return 0, ledgerError(ErrInvalidAmount, str, nil)
	}
	if int64(len(l.utxos)) >= math.MaxUint32 {
		return 0, ledgerError(ErrOutOfBounds, "utxo set is full", nil)
	}

	if _, err := l.EnsureAccount(output.Owner); err != nil {
		return 0, err
	}
	l.meta.TotalSupply += amount
	l.account(output.Owner).Balance += amount

	return l.create(output, "", data), nil
}

// Burn destroys amount tokens held by output.Owner.  Unspent outputs of the
// owner are consumed in index order, any change is returned to the owner as a
// new UTXO, and a spent receipt UTXO for the burned amount carrying data is
// recorded.  The id of the receipt is returned.
func (l *Ledger) Burn(amount Amount, output TxOutput, data []byte) (uint32,
	error) {

	if err := checkOutput(amount, output); err != nil {
		return 0, err
	}
	if l.meta.TotalSupply < amount {
		str := fmt.Sprintf("burning %d exceeds the total supply %d",
			amount, l.meta.TotalSupply)
		return 0, ledgerError(ErrInsufficientSupply, str, nil)
	}

	balance := l.BalanceOf(output.Owner)
	if balance < amount {
		str := fmt.Sprintf("burning %d exceeds the balance %d of %s",
			amount, balance, output.Owner)
		return 0, ledgerError(ErrInsufficientBalance, str, nil)
	}

	acct := l.account(output.Owner)
	coins := make([]coinselect.Coin, len(acct.Utxos))
	for i, u := range acct.Utxos {
		coins[i] = coinselect.Coin{ID: u.ID, Amount: uint64(u.Amount)}
	}
	selected, err := coinselect.InOrder{}.SelectCoins(coins, uint64(amount))
	if err != nil {
		str := fmt.Sprintf("outputs of %s cannot cover %d",
			output.Owner, amount)
		return 0, ledgerError(ErrInsufficientBalance, str, err)
	}
	if int64(len(l.utxos))+2 > math.MaxUint32 {
		return 0, ledgerError(ErrOutOfBounds, "utxo set is full", nil)
	}

	for _, s := range selected.Selections {
		l.markSpent(s.ID, output.Owner)
	}
	selected.ChangeSelection().WhenSome(func(s coinselect.Selection) {
		change := TxOutput{Amount: Amount(s.Change), Owner: output.Owner}
		l.create(change, output.Owner, l.utxos[s.ID].Data)
	})

	l.meta.TotalSupply -= amount
	l.account(output.Owner).Balance -= amount

	id := uint32(len(l.utxos))
	l.utxos = append(l.utxos, Utxo{
		Amount: amount,
		Owner:  output.Owner,
		Data:   cloneBytes(data),
		Spent:  true,
	})
	l.notify(UtxoCreatedEvent(id, ""))

	return id, nil
}

// checkSpend validates that spender may consume the UTXO referenced by input.
func (l *Ledger) checkSpend(input TxInput, spender string) (*Utxo, error) {
	if int64(input.ID) >= int64(len(l.utxos)) {
		str := fmt.Sprintf("utxo id %d out of bounds (%d utxos)",
			input.ID, len(l.utxos))
		return nil, ledgerError(ErrOutOfBounds, str, nil)
	}

	utxo := &l.utxos[input.ID]
	if utxo.Spent {
		str := fmt.Sprintf("utxo %d has already been spent", input.ID)
		return nil, ledgerError(ErrAlreadySpent, str, nil)
	}
	if utxo.Owner != spender {
		str := fmt.Sprintf("utxo %d is owned by %s, not %s", input.ID,
			utxo.Owner, spender)
		return nil, ledgerError(ErrNotOwner, str, nil)
	}
	if l.verifier != nil && !l.verifier.Verify(
		utxo.Owner, SpendMessage(input.ID), input.Signature,
	) {

		str := fmt.Sprintf("invalid signature for utxo %d", input.ID)
		return nil, ledgerError(ErrBadSignature, str, nil)
	}

	return utxo, nil
}

// Transfer spends the UTXO referenced by input, owned by sender, and creates
// output from it.  When the spent UTXO is larger than the output, the
// remainder is returned to sender as a change UTXO.  The payload of the spent
// UTXO is carried to every UTXO created.
func (l *Ledger) Transfer(sender string, amount Amount, input TxInput,
	output TxOutput) (bool, error) {

	if err := checkOutput(amount, output); err != nil {
		return false, err
	}
	utxo, err := l.checkSpend(input, sender)
	if err != nil {
		return false, err
	}
	if output.Amount > utxo.Amount {
		str := fmt.Sprintf("transfer amount %d exceeds utxo %d amount "+
			"%d", output.Amount, input.ID, utxo.Amount)
		return false, ledgerError(ErrExceedsUtxoAmount, str, nil)
	}
	if int64(len(l.utxos))+2 > math.MaxUint32 {
		return false, ledgerError(ErrOutOfBounds, "utxo set is full",
			nil)
	}

	if _, err := l.EnsureAccount(output.Owner); err != nil {
		return false, err
	}

	data := utxo.Data
	change := utxo.Amount - output.Amount

	l.markSpent(input.ID, sender)
	l.account(sender).Balance -= amount
	l.account(output.Owner).Balance += amount

	l.create(output, sender, data)
	if change > 0 {
		l.create(TxOutput{Amount: change, Owner: sender}, sender, data)
	}

	l.notify(TransferEvent(sender, output.Owner, amount))
	return true, nil
}

// create appends a new unspent UTXO for output and indexes it in the owner's
// account, which must exist.
func (l *Ledger) create(output TxOutput, creator string, data []byte) uint32 {
	id := uint32(len(l.utxos))
	l.utxos = append(l.utxos, Utxo{
		Amount: output.Amount,
		Owner:  output.Owner,
		Data:   cloneBytes(data),
	})

	acct := l.account(output.Owner)
	acct.Utxos = append(acct.Utxos, UtxoBrief{ID: id, Amount: output.Amount})

	l.notify(UtxoCreatedEvent(id, creator))
	return id
}

// markSpent flags the UTXO id as spent and drops it from its owner's index.
func (l *Ledger) markSpent(id uint32, spender string) {
	utxo := &l.utxos[id]
	utxo.Spent = true

	acct := l.account(utxo.Owner)
	if i := acct.FindUtxo(id); i >= 0 {
		acct.Utxos = append(acct.Utxos[:i], acct.Utxos[i+1:]...)
	}
	if len(acct.Utxos) == 0 {
		acct.Utxos = nil
	}

	l.notify(UtxoSpentEvent(id, spender))
}

// CheckInvariants verifies that the total supply equals the sum of all
// balances and the sum of all unspent UTXOs, that every balance matches its
// index, and that the indexes hold exactly the unspent UTXOs.
func (l *Ledger) CheckInvariants() error {
	corrupt := func(format string, args ...interface{}) error {
		return ledgerError(ErrCorrupt, fmt.Sprintf(format, args...), nil)
	}

	if len(l.index) != len(l.accounts) {
		return corrupt("%d accounts but %d index entries",
			len(l.accounts), len(l.index))
	}

	var balances, unspent Amount
	indexed := make(map[uint32]string)
	for i := range l.accounts {
		acct := &l.accounts[i]
		if j, ok := l.index[acct.Owner]; !ok || j != i {
			return corrupt("account %s is not indexed", acct.Owner)
		}

		var sum Amount
		for _, u := range acct.Utxos {
			if owner, ok := indexed[u.ID]; ok {
				return corrupt("utxo %d indexed by both %s "+
					"and %s", u.ID, owner, acct.Owner)
			}
			indexed[u.ID] = acct.Owner

			if int64(u.ID) >= int64(len(l.utxos)) {
				return corrupt("account %s indexes unknown "+
					"utxo %d", acct.Owner, u.ID)
			}
			utxo := &l.utxos[u.ID]
			switch {
			case utxo.Spent:
				return corrupt("account %s indexes spent "+
					"utxo %d", acct.Owner, u.ID)
			case utxo.Owner != acct.Owner:
				return corrupt("account %s indexes utxo %d "+
					"owned by %s", acct.Owner, u.ID,
					utxo.Owner)
			case utxo.Amount != u.Amount:
				return corrupt("utxo %d amount %d indexed as "+
					"%d", u.ID, utxo.Amount, u.Amount)
			}
			sum += u.Amount
		}

		if sum != acct.Balance {
			return corrupt("account %s balance %d does not match "+
				"its utxos %d", acct.Owner, acct.Balance, sum)
		}
		balances += acct.Balance
	}

	for id := range l.utxos {
		utxo := &l.utxos[id]
		if utxo.Spent {
			continue
		}
		if _, ok := indexed[uint32(id)]; !ok {
			return corrupt("unspent utxo %d is not indexed", id)
		}
		unspent += utxo.Amount
	}

	if balances != l.meta.TotalSupply {
		return corrupt("total supply %d does not match balances %d",
			l.meta.TotalSupply, balances)
	}
	if unspent != l.meta.TotalSupply {
		return corrupt("total supply %d does not match unspent "+
			"utxos %d", l.meta.TotalSupply, unspent)
	}

	return nil
}
