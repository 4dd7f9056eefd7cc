// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet/coinselect"
)

// Payment moves value from payer to payee, both defaulting to sender.  The
// payer's UTXOs are selected by the configured coin selector and each one is
// spent with its own signature made with the payer's key.  Either every
// selected UTXO is transferred or the stored ledger is left untouched.
func (w *Wallet) Payment(ctx context.Context, sender string,
	value tokenmgr.Amount, payer, payee string) error {

	payer = resolve(payer, sender)
	payee = resolve(payee, sender)

	return w.update(ctx, "payment", func(l *tokenmgr.Ledger) error {
		return w.pay(l, value, payer, payee)
	})
}

// pay performs a payment against l.  On error l may be partially updated and
// must be discarded.
func (w *Wallet) pay(l *tokenmgr.Ledger, value tokenmgr.Amount, payer,
	payee string) error {

	for _, addr := range []string{payer, payee} {
		if !l.AccountHolder(addr) {
			return unknownAccount(addr)
		}
	}
	if value == 0 {
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrInvalidAmount,
			Description: "payment amount must be positive",
		}
	}

	acct := l.Account(payer)
	if acct.Balance < value {
		str := fmt.Sprintf("insufficient balance on payer's account "+
			"%s: %v < %v", payer, acct.Balance, value)
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrInsufficientBalance,
			Description: str,
		}
	}

	coins := make([]coinselect.Coin, 0, len(acct.Utxos))
	for _, u := range acct.Utxos {
		coins = append(coins, coinselect.Coin{
			ID:     u.ID,
			Amount: uint64(u.Amount),
		})
	}

	// A shortfall here means the UTXO index disagrees with the balance.
	selection, err := w.cfg.CoinSelector.SelectCoins(coins, uint64(value))
	if err != nil {
		str := fmt.Sprintf("utxos of %s cannot cover %v", payer, value)
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrInsufficientBalance,
			Description: str,
			Err:         err,
		}
	}
	if selection.Total != uint64(value) {
		str := fmt.Sprintf("coin selection covers %d instead of %v",
			selection.Total, value)
		return tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrInsufficientBalance,
			Description: str,
		}
	}

	n := len(selection.Selections)
	log.Debugf("Paying %v from %s to %s using %d %s", value, payer, payee,
		n, pickNoun(n, "utxo", "utxos"))

	for _, s := range selection.Selections {
		sig, err := w.sign(payer, s.ID)
		if err != nil {
			return err
		}

		amount := tokenmgr.Amount(s.Transfer)
		_, err = l.Transfer(
			payer, amount,
			tokenmgr.TxInput{ID: s.ID, Signature: sig},
			tokenmgr.TxOutput{Amount: amount, Owner: payee},
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// sign returns the signature of payer authorizing the spend of UTXO id.
func (w *Wallet) sign(payer string, id uint32) ([]byte, error) {
	if w.cfg.Signer == nil {
		return nil, nil
	}

	sig, err := w.cfg.Signer.Sign(payer, tokenmgr.SpendMessage(id))
	if err == nil && len(sig) == 0 {
		err = fmt.Errorf("empty signature")
	}
	if err != nil {
		str := fmt.Sprintf("failed to sign spend of utxo %d by %s", id,
			payer)
		return nil, tokenmgr.LedgerError{
			ErrorCode:   tokenmgr.ErrBadSignature,
			Description: str,
			Err:         err,
		}
	}
	return sig, nil
}
