// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txbuilder

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/movesandbox/adapter"
	"github.com/ava-labs/movesandbox/keys"
	"github.com/ava-labs/movesandbox/memvm"
	"github.com/ava-labs/movesandbox/sandbox"
	"github.com/ava-labs/movesandbox/types"
)

func newTestAdapter(t *testing.T) *adapter.Adapter {
	sb, err := sandbox.New(memvm.NewFactory(memvm.DefaultConfig()).New)
	require.NoError(t, err)
	return adapter.New(sb)
}

func newTestSigner(t *testing.T) *keys.Signer {
	signer, err := keys.FromSeed(bytes.Repeat([]byte{4}, 32))
	require.NoError(t, err)
	return signer
}

func mint(t *testing.T, a *adapter.Adapter, owner types.Address, amount uint64) types.ObjectID {
	id, err := a.Sandbox().MintSui(owner, amount)
	require.NoError(t, err)
	return id
}

func TestBuildResolvesGas(t *testing.T) {
	assert := assert.New(t)
	a := newTestAdapter(t)
	ctx := context.Background()
	signer := newTestSigner(t)
	funded := mint(t, a, signer.Address(), 1_000_000)
	mint(t, a, signer.Address(), 500)

	b := New().CreateObject("0xabc::m::Thing", json.RawMessage(`{"n":1}`), false)
	b.SetSenderIfNotSet(signer.Address())
	txBytes, err := b.Build(ctx, a)
	require.NoError(t, err)

	tx, err := memvm.DecodeTransaction(txBytes)
	require.NoError(t, err)
	assert.Equal(signer.Address(), tx.Sender)
	assert.EqualValues(memvm.DefaultGasPrice, tx.GasPrice)
	assert.Equal([]types.ObjectID{funded}, tx.GasPayment)
	assert.Greater(tx.GasBudget, uint64(11_000))
	assert.Less(tx.GasBudget, uint64(1_000_000))

	coin, err := a.GetObject(ctx, types.GetObjectParams{ID: funded})
	require.NoError(t, err)
	assert.EqualValues(coin.Data.Version, tx.Nonce)

	resp, err := a.SignAndExecuteTransaction(ctx, adapter.SignAndExecuteRequest{
		Transaction: adapter.RawTransaction(txBytes),
		Signer:      signer,
	})
	require.NoError(t, err)
	assert.True(resp.Succeeded())

	// the gas coin moved to a new version, so the rebuilt transaction
	// differs
	again, err := b.Build(ctx, a)
	require.NoError(t, err)
	assert.NotEqual(txBytes, again)
}

func TestBuildExplicitSettingsOffline(t *testing.T) {
	assert := assert.New(t)
	sender := types.Address{1}
	gas := types.ObjectID{2}

	txBytes, err := New().
		SetSender(sender).
		SetGasPayment(gas).
		SetGasPrice(25).
		SetGasBudget(40_000).
		SetNonce(7).
		TransferObjects(types.Address{3}, types.ObjectID{4}).
		Build(context.Background(), nil)
	require.NoError(t, err)

	tx, err := memvm.DecodeTransaction(txBytes)
	require.NoError(t, err)
	assert.Equal(sender, tx.Sender)
	assert.Equal([]types.ObjectID{gas}, tx.GasPayment)
	assert.EqualValues(25, tx.GasPrice)
	assert.EqualValues(40_000, tx.GasBudget)
	assert.EqualValues(7, tx.Nonce)
	require.Len(t, tx.Commands, 1)
	assert.IsType(&memvm.TransferObjects{}, tx.Commands[0])
}

func TestSetSenderIfNotSetKeepsSender(t *testing.T) {
	b := New().SetSender(types.Address{1})
	b.SetSenderIfNotSet(types.Address{2})
	assert.Equal(t, types.Address{1}, *b.sender)
}

func TestSplitGas(t *testing.T) {
	assert := assert.New(t)
	a := newTestAdapter(t)
	ctx := context.Background()
	signer := newTestSigner(t)
	bob := types.Address{0xb0}
	gas := mint(t, a, signer.Address(), 1_000_000)

	resp, err := a.SignAndExecuteTransaction(ctx, adapter.SignAndExecuteRequest{
		Transaction: adapter.Unbuilt(New().SplitGas(bob, 300_000)),
		Signer:      signer,
	})
	require.NoError(t, err)
	require.True(t, resp.Succeeded())
	require.NotNil(t, resp.Effects.GasObject)
	assert.Equal(gas, resp.Effects.GasObject.Reference.ObjectID)

	balance, err := a.GetBalance(ctx, types.GetBalanceParams{Owner: bob})
	require.NoError(t, err)
	assert.EqualValues(300_000, balance.TotalBalance)
}

func TestSplitGasBuildsAgain(t *testing.T) {
	assert := assert.New(t)
	a := newTestAdapter(t)
	ctx := context.Background()
	signer := newTestSigner(t)
	gas := mint(t, a, signer.Address(), 1_000_000)

	b := New().SetSender(signer.Address()).SplitGas(types.Address{0xb0}, 300_000)
	for i := 0; i < 2; i++ {
		txBytes, err := b.Build(ctx, a)
		require.NoError(t, err)
		tx, err := memvm.DecodeTransaction(txBytes)
		require.NoError(t, err)
		assert.Equal([]types.ObjectID{gas}, tx.GasPayment)
		require.Len(t, tx.Commands, 1)
		assert.Equal(gas, tx.Commands[0].(*memvm.SplitCoin).Coin)
	}
	// the builder keeps the split unbound to any coin
	assert.True(b.commands[0].(*memvm.SplitCoin).Coin.IsZero())
}

func TestGasSkipsCommandCoins(t *testing.T) {
	assert := assert.New(t)
	a := newTestAdapter(t)
	ctx := context.Background()
	signer := newTestSigner(t)
	large := mint(t, a, signer.Address(), 2_000_000)
	small := mint(t, a, signer.Address(), 1_000_000)

	b := New().SetSender(signer.Address()).TransferObjects(types.Address{0xb0}, large)
	txBytes, err := b.Build(ctx, a)
	require.NoError(t, err)
	tx, err := memvm.DecodeTransaction(txBytes)
	require.NoError(t, err)
	assert.Equal([]types.ObjectID{small}, tx.GasPayment)
}

func TestBuildErrors(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	signer := newTestSigner(t)
	create := func() *Builder {
		return New().SetSender(signer.Address()).CreateObject("0xabc::m::Thing", json.RawMessage(`{}`), false)
	}

	_, err := New().CreateObject("0xabc::m::Thing", json.RawMessage(`{}`), false).Build(ctx, a)
	assert.ErrorIs(t, err, errNoSender)

	_, err = New().SetSender(signer.Address()).Build(ctx, a)
	assert.ErrorIs(t, err, errNoCommands)

	_, err = create().Build(ctx, a)
	assert.ErrorIs(t, err, errNoGasCoins)

	mint(t, a, signer.Address(), 500)
	_, err = create().Build(ctx, a)
	assert.ErrorIs(t, err, errDryRunFailed)

	_, err = New().SetSender(signer.Address()).SplitGas(types.Address{1}, 500).Build(ctx, a)
	assert.ErrorIs(t, err, errInsufficientGas)
}
