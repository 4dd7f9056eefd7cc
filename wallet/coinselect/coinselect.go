// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package coinselect chooses which unspent outputs of an account to consume
// in order to cover a payment.
package coinselect

import (
	"errors"

	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	// ErrInsufficientFunds is returned when the offered coins do not add
	// up to the target amount.
	ErrInsufficientFunds = errors.New("not enough coins to cover target")

	// ErrZeroTarget is returned when asked to select coins for nothing.
	ErrZeroTarget = errors.New("target amount must be positive")
)

// Coin is a spendable output offered for selection.
type Coin struct {
	ID     uint32
	Amount uint64
}

// Selection describes how much of one consumed coin goes towards the
// target.  Change is what remains of the coin and goes back to its owner.
type Selection struct {
	ID         uint32
	UtxoAmount uint64
	Transfer   uint64
	Change     uint64
}

// Result is the outcome of a coin selection.
type Result struct {
	Selections []Selection
	Total      uint64
}

// ChangeSelection returns the selection that produces change, if any.  At most
// one selection of a result has change and it is always the last one.
func (r *Result) ChangeSelection() fn.Option[Selection] {
	if len(r.Selections) == 0 {
		return fn.None[Selection]()
	}

	last := r.Selections[len(r.Selections)-1]
	if last.Change == 0 {
		return fn.None[Selection]()
	}
	return fn.Some(last)
}

// IDs returns the ids of all consumed coins in selection order.
func (r *Result) IDs() []uint32 {
	ids := make([]uint32, 0, len(r.Selections))
	for _, s := range r.Selections {
		ids = append(ids, s.ID)
	}
	return ids
}

// Strategy selects coins covering target exactly.  The returned transfers
// sum to target.
type Strategy interface {
	SelectCoins(coins []Coin, target uint64) (*Result, error)
}

// InOrder is a greedy strategy that consumes coins in the order they are
// given until the target is reached.  Every coin but the last is consumed
// in full.
type InOrder struct{}

// A compile-time assertion to ensure InOrder meets the Strategy interface.
var _ Strategy = InOrder{}

// SelectCoins implements Strategy.
func (InOrder) SelectCoins(coins []Coin, target uint64) (*Result, error) {
	if target == 0 {
		return nil, ErrZeroTarget
	}

	result := &Result{}
	for _, c := range coins {
		if result.Total == target {
			break
		}
		if c.Amount == 0 {
			continue
		}

		transfer := min(c.Amount, target-result.Total)
		result.Selections = append(result.Selections, Selection{
			ID:         c.ID,
			UtxoAmount: c.Amount,
			Transfer:   transfer,
			Change:     c.Amount - transfer,
		})
		result.Total += transfer
	}

	if result.Total < target {
		return nil, ErrInsufficientFunds
	}

	return result, nil
}
