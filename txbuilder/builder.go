// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txbuilder assembles sandbox transactions. Whatever the caller
// leaves unset (gas price, gas coins, gas budget and nonce) is resolved
// through an adapter.QueryClient when the transaction is built.
package txbuilder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/adapter"
	"github.com/ava-labs/movesandbox/memvm"
	"github.com/ava-labs/movesandbox/types"
)

const (
	// MaxGasBudget caps the budget used to estimate gas by dry run.
	MaxGasBudget uint64 = 50_000_000_000

	// budgetOverhead is added to the estimate, in gas units.
	budgetOverhead = 1_000
)

var (
	errNoSender        = errors.New("transaction has no sender")
	errNoCommands      = errors.New("transaction has no commands")
	errNoGasCoins      = errors.New("sender owns no coins usable for gas")
	errInsufficientGas = errors.New("sender's coins cannot cover the gas budget")
	errDryRunFailed    = errors.New("gas estimation dry run failed")

	_ adapter.TransactionBuilder = &Builder{}
)

// Builder accumulates the commands and gas settings of one transaction. It
// is not safe for concurrent use.
type Builder struct {
	sender     *types.Address
	gasPayment []types.ObjectID
	gasPrice   *uint64
	gasBudget  *uint64
	nonce      *uint64
	commands   []memvm.Command
	// gasSplits indexes the SplitCoin commands that split the gas coin.
	gasSplits []int
}

func New() *Builder { return &Builder{} }

func (b *Builder) SetSender(sender types.Address) *Builder {
	b.sender = &sender
	return b
}

func (b *Builder) SetSenderIfNotSet(sender types.Address) {
	if b.sender == nil {
		b.SetSender(sender)
	}
}

// SetGasPayment pays gas with [coins]; the first one becomes the gas coin.
func (b *Builder) SetGasPayment(coins ...types.ObjectID) *Builder {
	b.gasPayment = coins
	return b
}

func (b *Builder) SetGasPrice(price uint64) *Builder {
	b.gasPrice = &price
	return b
}

func (b *Builder) SetGasBudget(budget uint64) *Builder {
	b.gasBudget = &budget
	return b
}

// SetNonce overrides the nonce, which otherwise is the version of the gas
// coin.
func (b *Builder) SetNonce(nonce uint64) *Builder {
	b.nonce = &nonce
	return b
}

// Add appends arbitrary commands.
func (b *Builder) Add(cmds ...memvm.Command) *Builder {
	b.commands = append(b.commands, cmds...)
	return b
}

func (b *Builder) SplitCoin(coin types.ObjectID, recipient types.Address, amounts ...uint64) *Builder {
	return b.Add(&memvm.SplitCoin{Coin: coin, Amounts: amounts, Recipient: recipient})
}

// SplitGas splits [amounts] off the gas coin, whichever coin that turns out
// to be.
func (b *Builder) SplitGas(recipient types.Address, amounts ...uint64) *Builder {
	b.gasSplits = append(b.gasSplits, len(b.commands))
	return b.Add(&memvm.SplitCoin{Amounts: amounts, Recipient: recipient})
}

func (b *Builder) MergeCoins(destination types.ObjectID, sources ...types.ObjectID) *Builder {
	return b.Add(&memvm.MergeCoins{Destination: destination, Sources: sources})
}

func (b *Builder) TransferObjects(recipient types.Address, objects ...types.ObjectID) *Builder {
	return b.Add(&memvm.TransferObjects{Objects: objects, Recipient: recipient})
}

func (b *Builder) CreateObject(objectType string, fields json.RawMessage, shared bool) *Builder {
	return b.Add(&memvm.CreateObject{Type: objectType, Fields: fields, Shared: shared})
}

func (b *Builder) MoveCall(pkg types.ObjectID, module, function string, typeArgs []string, args ...types.ObjectID) *Builder {
	return b.Add(&memvm.MoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: typeArgs,
		Arguments:     args,
	})
}

func (b *Builder) Publish(modules [][]byte, dependencies ...types.ObjectID) *Builder {
	return b.Add(&memvm.Publish{Modules: modules, Dependencies: dependencies})
}

// Build resolves the unset gas settings through [client] and returns the
// transaction bytes.
func (b *Builder) Build(ctx context.Context, client adapter.QueryClient) ([]byte, error) {
	if b.sender == nil {
		return nil, errNoSender
	}
	if len(b.commands) == 0 {
		return nil, errNoCommands
	}

	tx := &memvm.TransactionData{
		Sender:   *b.sender,
		Commands: b.commands,
	}

	if b.gasPrice != nil {
		tx.GasPrice = *b.gasPrice
	} else {
		price, err := client.GetReferenceGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("couldn't get reference gas price: %w", err)
		}
		tx.GasPrice = price.Uint64()
	}

	var candidates []types.Coin
	if len(b.gasPayment) > 0 {
		tx.GasPayment = b.gasPayment
	} else {
		coins, err := b.gasCandidates(ctx, client)
		if err != nil {
			return nil, err
		}
		candidates = coins
		tx.GasPayment = coinIDs(coins)
	}

	if b.gasBudget != nil {
		tx.GasBudget = *b.gasBudget
	} else {
		budget, err := b.estimateBudget(ctx, client, tx, candidates)
		if err != nil {
			return nil, err
		}
		tx.GasBudget = budget
	}

	if candidates != nil {
		selected, err := selectCoins(candidates, tx.GasBudget+b.gasSplitTotal())
		if err != nil {
			return nil, err
		}
		candidates = selected
		tx.GasPayment = coinIDs(selected)
	}

	nonce, err := b.resolveNonce(ctx, client, tx.GasPayment[0], candidates)
	if err != nil {
		return nil, err
	}
	tx.Nonce = nonce
	tx.Commands = b.commandsWithGas(tx.GasPayment[0])

	log.Debug("built transaction",
		"sender", tx.Sender,
		"commands", len(tx.Commands),
		"gasPrice", tx.GasPrice,
		"gasBudget", tx.GasBudget,
	)
	return memvm.EncodeTransaction(tx)
}

// gasCandidates lists the sender's SUI coins that no command uses, largest
// first.
func (b *Builder) gasCandidates(ctx context.Context, client adapter.QueryClient) ([]types.Coin, error) {
	page, err := client.GetCoins(ctx, types.GetCoinsParams{Owner: *b.sender, CoinType: types.SuiCoinType})
	if err != nil {
		return nil, fmt.Errorf("couldn't list gas coins: %w", err)
	}
	used := b.commandObjects()
	coins := make([]types.Coin, 0, len(page.Data))
	for _, coin := range page.Data {
		if !used[coin.CoinObjectID] {
			coins = append(coins, coin)
		}
	}
	if len(coins) == 0 {
		return nil, errNoGasCoins
	}
	sort.SliceStable(coins, func(i, j int) bool { return coins[i].Balance > coins[j].Balance })
	return coins, nil
}

func (b *Builder) commandObjects() map[types.ObjectID]bool {
	used := make(map[types.ObjectID]bool)
	mark := func(ids ...types.ObjectID) {
		for _, id := range ids {
			used[id] = true
		}
	}
	gasSplit := make(map[int]bool, len(b.gasSplits))
	for _, i := range b.gasSplits {
		gasSplit[i] = true
	}
	for i, cmd := range b.commands {
		switch cmd := cmd.(type) {
		case *memvm.SplitCoin:
			if !gasSplit[i] {
				mark(cmd.Coin)
			}
		case *memvm.MergeCoins:
			mark(cmd.Destination)
			mark(cmd.Sources...)
		case *memvm.TransferObjects:
			mark(cmd.Objects...)
		case *memvm.MutateObject:
			mark(cmd.Object)
		case *memvm.DeleteObject:
			mark(cmd.Object)
		case *memvm.MoveCall:
			mark(cmd.Arguments...)
		}
	}
	return used
}

// estimateBudget dry runs [tx] with the largest affordable budget and
// returns the charged gas plus overhead. Amounts split off the gas coin are
// not available for gas.
func (b *Builder) estimateBudget(ctx context.Context, client adapter.QueryClient, tx *memvm.TransactionData, candidates []types.Coin) (uint64, error) {
	available := MaxGasBudget
	if candidates != nil {
		funds := total(candidates)
		split := b.gasSplitTotal()
		if split >= funds {
			return 0, fmt.Errorf("%w: splitting %d of %d", errInsufficientGas, split, funds)
		}
		if funds-split < available {
			available = funds - split
		}
	}

	dryRun := *tx
	dryRun.GasBudget = available
	dryRun.Commands = b.commandsWithGas(dryRun.GasPayment[0])
	txBytes, err := memvm.EncodeTransaction(&dryRun)
	if err != nil {
		return 0, err
	}
	dry, err := client.DryRunTransactionBlock(ctx, types.DryRunTransactionBlockParams{
		TransactionBlock: types.EncodedPayload(base64.StdEncoding.EncodeToString(txBytes)),
	})
	if err != nil {
		return 0, fmt.Errorf("couldn't estimate gas: %w", err)
	}
	if dry.Effects == nil {
		return 0, fmt.Errorf("%w: no effects", errDryRunFailed)
	}
	if dry.Effects.Status.Status != types.StatusSuccess {
		return 0, fmt.Errorf("%w: %s", errDryRunFailed, dry.Effects.Status.Error)
	}

	used := dry.Effects.GasUsed
	budget := uint64(used.ComputationCost) + uint64(used.StorageCost) + tx.GasPrice*budgetOverhead
	if budget > available {
		budget = available
	}
	return budget, nil
}

func (b *Builder) resolveNonce(ctx context.Context, client adapter.QueryClient, gas types.ObjectID, coins []types.Coin) (uint64, error) {
	if b.nonce != nil {
		return *b.nonce, nil
	}
	for _, coin := range coins {
		if coin.CoinObjectID == gas {
			return uint64(coin.Version), nil
		}
	}
	resp, err := client.GetObject(ctx, types.GetObjectParams{ID: gas})
	if err != nil {
		return 0, fmt.Errorf("couldn't get gas coin %s: %w", gas, err)
	}
	if resp.Data == nil {
		// execution reports the missing coin
		return 0, nil
	}
	return uint64(resp.Data.Version), nil
}

func (b *Builder) gasSplitTotal() uint64 {
	var sum uint64
	for _, i := range b.gasSplits {
		for _, amount := range b.commands[i].(*memvm.SplitCoin).Amounts {
			sum += amount
		}
	}
	return sum
}

// commandsWithGas returns a copy of the commands in which the gas splits
// draw on [gas]. The builder's own commands are left untouched so that it
// can be built again.
func (b *Builder) commandsWithGas(gas types.ObjectID) []memvm.Command {
	cmds := append([]memvm.Command{}, b.commands...)
	for _, i := range b.gasSplits {
		split := *b.commands[i].(*memvm.SplitCoin)
		split.Coin = gas
		cmds[i] = &split
	}
	return cmds
}

// selectCoins takes coins in order until they cover [budget].
func selectCoins(coins []types.Coin, budget uint64) ([]types.Coin, error) {
	var sum uint64
	for i, coin := range coins {
		sum += uint64(coin.Balance)
		if sum >= budget {
			return coins[:i+1], nil
		}
	}
	return nil, fmt.Errorf("%w: %d < %d", errInsufficientGas, sum, budget)
}

func total(coins []types.Coin) uint64 {
	var sum uint64
	for _, coin := range coins {
		sum += uint64(coin.Balance)
	}
	return sum
}

func coinIDs(coins []types.Coin) []types.ObjectID {
	ids := make([]types.ObjectID, len(coins))
	for i, coin := range coins {
		ids[i] = coin.CoinObjectID
	}
	return ids
}
