// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strconv"
	"strings"
)

// AmountFlag embeds a raw token amount and implements the flags.Marshaler and
// Unmarshaler interfaces so it can be used as a config struct field.  Values
// are given in base units.  An optional "units" suffix is accepted.
type AmountFlag struct {
	Amount uint64
}

// NewAmountFlag creates an AmountFlag with a default amount.
func NewAmountFlag(defaultValue uint64) *AmountFlag {
	return &AmountFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (a *AmountFlag) MarshalFlag() (string, error) {
	return strconv.FormatUint(a.Amount, 10), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (a *AmountFlag) UnmarshalFlag(value string) error {
	value = strings.TrimSpace(strings.TrimSuffix(value, " units"))
	amount, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", value, err)
	}
	a.Amount = amount
	return nil
}
