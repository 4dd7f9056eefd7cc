// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/erc20utxo/internal/cfgutil"
	"github.com/btcsuite/erc20utxo/internal/zero"
	"github.com/btcsuite/erc20utxo/keystore"
	"github.com/btcsuite/erc20utxo/tokenmgr"
	"github.com/btcsuite/erc20utxo/wallet"
	flags "github.com/jessevdk/go-flags"
)

// command describes a subcommand registered with the parser.
type command struct {
	name  string
	short string
	long  string
	data  interface{}
}

// registerCommands adds every subcommand to parser.  Commands run against
// cfg, which must be the parser's data.
func registerCommands(parser *flags.Parser, cfg *config) error {
	commands := []command{
		{"createkeystore", "Create the key store",
			"Create the encrypted key store holding signing keys.",
			&createKeyStoreCmd{cfg: cfg}},
		{"newkey", "Register a signing key",
			"Generate and register a signing key for an address.",
			&newKeyCmd{cfg: cfg}},
		{"listkeys", "List signing keys",
			"List the addresses holding a signing key.",
			&listKeysCmd{cfg: cfg}},
		{"createcoin", "Create the token",
			"Create the token and mint its initial supply to the sender.",
			&createCoinCmd{cfg: cfg}},
		{"reset", "Reset the ledger",
			"Replace the stored ledger with an empty one.",
			&resetCmd{cfg: cfg}},
		{"name", "Show the token name", "Show the token name.",
			&queryCmd{cfg: cfg, query: queryName}},
		{"symbol", "Show the token symbol", "Show the token symbol.",
			&queryCmd{cfg: cfg, query: querySymbol}},
		{"decimals", "Show the token decimals",
			"Show the number of decimals of the token.",
			&queryCmd{cfg: cfg, query: queryDecimals}},
		{"totalsupply", "Show the total supply",
			"Show the amount of tokens in circulation.",
			&queryCmd{cfg: cfg, query: queryTotalSupply}},
		{"utxolen", "Show the number of UTXOs",
			"Show the number of UTXOs ever created, spent or not.",
			&queryCmd{cfg: cfg, query: queryUtxoLen}},
		{"balanceof", "Show a balance",
			"Show the balance of an address, the sender by default.",
			&balanceOfCmd{cfg: cfg}},
		{"openaccount", "Open an account",
			"Open an account for an address, the sender by default.",
			&openAccountCmd{cfg: cfg}},
		{"transfer", "Spend a UTXO",
			"Spend a UTXO of the sender to an output, returning any "+
				"change to the sender.",
			&transferCmd{cfg: cfg}},
		{"payment", "Pay an amount",
			"Pay an amount from the payer's UTXOs to a payee.",
			&paymentCmd{cfg: cfg}},
		{"mint", "Mint tokens", "Mint tokens as a new UTXO.",
			&mintBurnCmd{cfg: cfg}},
		{"burn", "Burn tokens",
			"Burn tokens of an owner and record a spent receipt.",
			&mintBurnCmd{cfg: cfg, burn: true}},
		{"fund", "Fund an address", "Mint tokens to a payee.",
			&fundCmd{cfg: cfg}},
		{"defund", "Defund an address", "Burn tokens of a payer.",
			&fundCmd{cfg: cfg, defund: true}},
		{"utxo", "Show a UTXO", "Show a UTXO by id.",
			&utxoCmd{cfg: cfg}},
		{"account", "Show an account",
			"Show the balance and unspent UTXOs of an account.",
			&accountCmd{cfg: cfg}},
		{"snapshot", "Dump the ledger",
			"Dump the full ledger state as JSON.",
			&snapshotCmd{cfg: cfg}},
	}

	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			return fmt.Errorf("register %s: %w", c.name, err)
		}
	}
	return nil
}

// printf writes command output.
func (cfg *config) printf(format string, args ...interface{}) {
	fmt.Fprintf(cfg.out, format, args...)
}

type createKeyStoreCmd struct {
	FastScrypt bool `long:"fastscrypt" description:"Use weak scrypt parameters, for testing only"`

	cfg *config
}

func (c *createKeyStoreCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(_ context.Context, e *env) error {
		if e.keys != nil {
			return fmt.Errorf("a key store already exists in %s",
				e.loader.DBPath())
		}

		pass, err := c.cfg.passphrase(true)
		if err != nil {
			return err
		}

		opts := &keystore.DefaultScryptOptions
		if c.FastScrypt {
			opts = &keystore.FastScryptOptions
		}
		err = e.loader.CreateKeyStore(pass, opts)
		zero.Bytes(pass)
		if err != nil {
			return err
		}

		c.cfg.printf("Created key store in %s\n", e.loader.DBPath())
		return nil
	})
}

type newKeyCmd struct {
	Name string `long:"name" description:"Address the key is registered for, the sender by default"`

	cfg *config
}

func (c *newKeyCmd) Execute(_ []string) error {
	return c.cfg.run(true, func(_ context.Context, e *env) error {
		if err := e.requireKeys(); err != nil {
			return err
		}

		name := c.Name
		if name == "" {
			name = c.cfg.Sender
		}
		pub, err := e.keys.NewKey(name)
		if err != nil {
			return err
		}

		c.cfg.printf("%s %x\n", name, pub.SerializeCompressed())
		return nil
	})
}

type listKeysCmd struct {
	cfg *config
}

func (c *listKeysCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(_ context.Context, e *env) error {
		if err := e.requireKeys(); err != nil {
			return err
		}
		for _, name := range e.keys.KeyNames() {
			c.cfg.printf("%s\n", name)
		}
		return nil
	})
}

type createCoinCmd struct {
	Name     string             `long:"name" required:"true" description:"Token name"`
	Symbol   string             `long:"symbol" required:"true" description:"Token symbol"`
	Decimals uint8              `long:"decimals" description:"Number of decimals used to display amounts"`
	Supply   cfgutil.AmountFlag `long:"supply" description:"Initial supply in base units, minted to the sender"`

	cfg *config
}

func (c *createCoinCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		return e.wallet.CreateCoin(
			ctx, c.cfg.Sender, c.Name, c.Symbol, c.Decimals,
			tokenmgr.Amount(c.Supply.Amount),
		)
	})
}

type resetCmd struct {
	cfg *config
}

func (c *resetCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		return e.wallet.Reset(ctx, c.cfg.Sender)
	})
}

// queryFunc reads a single value from the wallet.
type queryFunc func(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error)

func queryName(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error) {

	return w.Name(ctx, sender)
}

func querySymbol(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error) {

	return w.Symbol(ctx, sender)
}

func queryDecimals(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error) {

	return w.Decimals(ctx, sender)
}

func queryTotalSupply(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error) {

	return w.TotalSupply(ctx, sender)
}

func queryUtxoLen(ctx context.Context, w *wallet.Wallet,
	sender string) (interface{}, error) {

	s, err := w.Snapshot(ctx, sender)
	if err != nil {
		return nil, err
	}
	return len(s.Utxos), nil
}

type queryCmd struct {
	cfg   *config
	query queryFunc
}

func (c *queryCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		v, err := c.query(ctx, e.wallet, c.cfg.Sender)
		if err != nil {
			return err
		}
		c.cfg.printf("%v\n", v)
		return nil
	})
}

type balanceOfCmd struct {
	Owner string `long:"owner" description:"Address to query, the sender by default"`

	cfg *config
}

func (c *balanceOfCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		balance, err := e.wallet.BalanceOf(ctx, c.cfg.Sender, c.Owner)
		if err != nil {
			return err
		}
		c.cfg.printf("%v\n", balance)
		return nil
	})
}

type openAccountCmd struct {
	Owner string `long:"owner" description:"Address to open an account for, the sender by default"`

	cfg *config
}

func (c *openAccountCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		return e.wallet.OpenAccount(ctx, c.cfg.Sender, c.Owner)
	})
}

type transferCmd struct {
	Utxo   uint32             `long:"utxo" required:"true" description:"Id of the UTXO to spend"`
	Amount cfgutil.AmountFlag `long:"amount" required:"true" description:"Amount sent to the output owner"`
	To     string             `long:"to" description:"Output owner, the sender by default"`

	cfg *config
}

func (c *transferCmd) Execute(_ []string) error {
	return c.cfg.run(true, func(ctx context.Context, e *env) error {
		input := tokenmgr.TxInput{ID: c.Utxo}
		if e.signing {
			sig, err := e.keys.Sign(
				c.cfg.Sender, tokenmgr.SpendMessage(c.Utxo),
			)
			if err != nil {
				return err
			}
			input.Signature = sig
		}

		amount := tokenmgr.Amount(c.Amount.Amount)
		ok, err := e.wallet.Transfer(
			ctx, c.cfg.Sender, amount, input,
			tokenmgr.TxOutput{Amount: amount, Owner: c.To},
		)
		if err != nil {
			return err
		}
		c.cfg.printf("%v\n", ok)
		return nil
	})
}

type paymentCmd struct {
	Amount cfgutil.AmountFlag `long:"amount" required:"true" description:"Amount to pay"`
	From   string             `long:"from" description:"Payer, the sender by default"`
	To     string             `long:"to" description:"Payee, the sender by default"`

	cfg *config
}

func (c *paymentCmd) Execute(_ []string) error {
	return c.cfg.run(true, func(ctx context.Context, e *env) error {
		return e.wallet.Payment(
			ctx, c.cfg.Sender, tokenmgr.Amount(c.Amount.Amount),
			c.From, c.To,
		)
	})
}

type mintBurnCmd struct {
	Amount cfgutil.AmountFlag `long:"amount" required:"true" description:"Amount in base units"`
	Owner  string             `long:"owner" description:"Output owner, the sender by default"`
	Data   string             `long:"data" description:"Hex encoded payload attached to the UTXO"`

	cfg  *config
	burn bool
}

func (c *mintBurnCmd) Execute(_ []string) error {
	data, err := hex.DecodeString(c.Data)
	if err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		amount := tokenmgr.Amount(c.Amount.Amount)
		output := tokenmgr.TxOutput{Amount: amount, Owner: c.Owner}

		op := e.wallet.Mint
		if c.burn {
			op = e.wallet.Burn
		}
		id, err := op(ctx, c.cfg.Sender, amount, output, data)
		if err != nil {
			return err
		}
		c.cfg.printf("%d\n", id)
		return nil
	})
}

type fundCmd struct {
	Amount  cfgutil.AmountFlag `long:"amount" required:"true" description:"Amount in base units"`
	Address string             `long:"address" description:"Payee or payer, the sender by default"`

	cfg    *config
	defund bool
}

func (c *fundCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		op := e.wallet.Fund
		if c.defund {
			op = e.wallet.Defund
		}
		id, err := op(
			ctx, c.cfg.Sender, tokenmgr.Amount(c.Amount.Amount),
			c.Address,
		)
		if err != nil {
			return err
		}
		c.cfg.printf("%d\n", id)
		return nil
	})
}

type utxoCmd struct {
	ID uint32 `long:"id" required:"true" description:"Id of the UTXO"`

	cfg *config
}

func (c *utxoCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		u, err := e.wallet.Utxo(ctx, c.cfg.Sender, c.ID)
		if err != nil {
			return err
		}
		c.cfg.printf("id=%d amount=%v owner=%s spent=%v data=%x\n",
			c.ID, u.Amount, u.Owner, u.Spent, u.Data)
		return nil
	})
}

type accountCmd struct {
	Owner string `long:"owner" description:"Account owner, the sender by default"`

	cfg *config
}

func (c *accountCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		acct, err := e.wallet.Account(ctx, c.cfg.Sender, c.Owner)
		if err != nil {
			return err
		}
		c.cfg.printf("owner=%s balance=%v\n", acct.Owner, acct.Balance)
		for _, u := range acct.Utxos {
			c.cfg.printf("  utxo %d: %v\n", u.ID, u.Amount)
		}
		return nil
	})
}

// jsonUtxo is the JSON form of a UTXO in a snapshot dump.
type jsonUtxo struct {
	ID     uint32 `json:"id"`
	Amount uint64 `json:"amount"`
	Owner  string `json:"owner"`
	Data   string `json:"data,omitempty"`
	Spent  bool   `json:"spent"`
}

// jsonAccount is the JSON form of an account in a snapshot dump.
type jsonAccount struct {
	Owner   string   `json:"owner"`
	Balance uint64   `json:"balance"`
	Utxos   []uint32 `json:"utxos"`
}

// jsonSnapshot is the JSON form of a snapshot dump.
type jsonSnapshot struct {
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	TotalSupply uint64        `json:"totalsupply"`
	Accounts    []jsonAccount `json:"accounts"`
	Utxos       []jsonUtxo    `json:"utxos"`
}

func newJSONSnapshot(s *wallet.Snapshot) *jsonSnapshot {
	out := &jsonSnapshot{
		Name:        s.Meta.Name,
		Symbol:      s.Meta.Symbol,
		Decimals:    s.Meta.Decimals,
		TotalSupply: uint64(s.Meta.TotalSupply),
		Accounts:    make([]jsonAccount, 0, len(s.Accounts)),
		Utxos:       make([]jsonUtxo, 0, len(s.Utxos)),
	}
	for _, a := range s.Accounts {
		ids := make([]uint32, 0, len(a.Utxos))
		for _, u := range a.Utxos {
			ids = append(ids, u.ID)
		}
		out.Accounts = append(out.Accounts, jsonAccount{
			Owner:   a.Owner,
			Balance: uint64(a.Balance),
			Utxos:   ids,
		})
	}
	for i, u := range s.Utxos {
		out.Utxos = append(out.Utxos, jsonUtxo{
			ID:     uint32(i),
			Amount: uint64(u.Amount),
			Owner:  u.Owner,
			Data:   hex.EncodeToString(u.Data),
			Spent:  u.Spent,
		})
	}
	return out
}

type snapshotCmd struct {
	cfg *config
}

func (c *snapshotCmd) Execute(_ []string) error {
	return c.cfg.run(false, func(ctx context.Context, e *env) error {
		s, err := e.wallet.Snapshot(ctx, c.cfg.Sender)
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(newJSONSnapshot(s), "", "  ")
		if err != nil {
			return err
		}
		c.cfg.printf("%s\n", b)
		return nil
	})
}
