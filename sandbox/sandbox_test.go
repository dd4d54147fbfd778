// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/movesandbox/backend"
	"github.com/ava-labs/movesandbox/keys"
	"github.com/ava-labs/movesandbox/memvm"
	"github.com/ava-labs/movesandbox/types"
)

func newTestClient(t *testing.T) *Client {
	c, err := New(memvm.NewFactory(memvm.DefaultConfig()).New)
	require.NoError(t, err)
	return c
}

func newTestSigner(t *testing.T) *keys.Signer {
	signer, err := keys.FromSeed(bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)
	return signer
}

func TestCoinsAndBalance(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)
	owner := types.Address{1}

	id, err := c.MintSui(owner, 700)
	require.NoError(t, err)

	coins, err := c.GetCoins(owner, "")
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(id, coins[0].CoinObjectID)
	assert.Equal(types.SuiCoinType, coins[0].CoinType)

	long, err := c.GetBalance(owner, "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI")
	assert.NoError(err)
	assert.EqualValues(700, long)
}

func TestExecuteAndLookup(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)
	signer := newTestSigner(t)
	gas, err := c.MintSui(signer.Address(), 1_000_000)
	require.NoError(t, err)

	txBytes, err := memvm.EncodeTransaction(&memvm.TransactionData{
		Sender:     signer.Address(),
		GasPayment: []types.ObjectID{gas},
		GasPrice:   memvm.DefaultGasPrice,
		GasBudget:  100_000,
		Commands:   []memvm.Command{&memvm.CreateObject{Type: "0x1::m::T", Fields: json.RawMessage(`{}`)}},
	})
	require.NoError(t, err)

	dry, err := c.DryRunTransaction(types.RawPayload(txBytes))
	require.NoError(t, err)
	assert.Equal(types.StatusSuccess, dry.Effects.Status.Status)

	_, err = c.GetTransaction(memvm.TransactionDigest(txBytes))
	assert.ErrorIs(err, ErrTransactionNotFound)

	signed, err := signer.SignTransaction(context.Background(), txBytes)
	require.NoError(t, err)
	resp, err := c.ExecuteTransactionBlock(types.EncodedPayload(signed.Bytes), signed.Signature)
	require.NoError(t, err)
	assert.True(resp.Succeeded())

	got, err := c.GetTransaction(resp.Digest)
	require.NoError(t, err)
	assert.Equal(resp.Digest, got.Digest)

	page, err := c.QueryTransactionBlocks(types.QueryTransactionBlocksParams{
		Filter: &types.TransactionFilter{InputObject: &gas},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(resp.Digest, page.Data[0].Digest)

	obj, err := c.GetObject(gas)
	require.NoError(t, err)
	require.NotNil(t, obj.Data)
	read, err := c.TryGetPastObject(types.TryGetPastObjectParams{ID: gas, Version: 1})
	require.NoError(t, err)
	assert.Equal(types.VersionFound, read.Status)
}

func TestRejectAndSignatureChecks(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)
	signer := newTestSigner(t)
	gas, err := c.MintSui(signer.Address(), 1_000_000)
	require.NoError(t, err)

	txBytes, err := memvm.EncodeTransaction(&memvm.TransactionData{
		Sender:     signer.Address(),
		GasPayment: []types.ObjectID{gas},
		GasPrice:   memvm.DefaultGasPrice,
		GasBudget:  100_000,
		Commands:   []memvm.Command{&memvm.CreateObject{Type: "0x1::m::T", Fields: json.RawMessage(`{}`)}},
	})
	require.NoError(t, err)

	_, err = c.ExecuteTransactionBlock(types.RawPayload(txBytes))
	assert.Error(err)

	require.NoError(t, c.DisableSignatureChecks())
	require.NoError(t, c.RejectNextTransaction("busy"))
	resp, err := c.ExecuteTransactionBlock(types.RawPayload(txBytes))
	require.NoError(t, err)
	assert.Equal([]string{"busy"}, resp.Errors)

	resp, err = c.ExecuteTransactionBlock(types.RawPayload(txBytes))
	require.NoError(t, err)
	assert.Empty(resp.Errors)
	assert.True(resp.Succeeded())
	require.NoError(t, c.EnableSignatureChecks())
}

func TestClockCheckpointAndGasPrice(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)

	assert.NoError(c.AdvanceClockByMillis(5))
	assert.NoError(c.SetClockTimestampMillis(50))
	assert.Error(c.SetClockTimestampMillis(1))
	ms, err := c.ClockTimestampMillis()
	assert.NoError(err)
	assert.EqualValues(50, ms)

	assert.NoError(c.BumpCheckpoint())
	checkpoint, err := c.LatestCheckpoint()
	assert.NoError(err)
	assert.EqualValues(1, checkpoint)

	price, err := c.ReferenceGasPrice()
	assert.NoError(err)
	assert.EqualValues(memvm.DefaultGasPrice, price)
}

func TestPublishAndNormalizedFunction(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)
	sender := types.Address{4}

	resp, err := c.PublishPackage([][]byte{{1, 2}}, []types.ObjectID{types.StdlibPackageID, types.FrameworkPackageID}, sender)
	require.NoError(t, err)
	assert.True(resp.Succeeded())

	fn, err := c.GetNormalizedFunction(types.GetNormalizedMoveFunctionParams{
		Package:  types.FrameworkPackageID,
		Module:   "coin",
		Function: "split",
	})
	require.NoError(t, err)
	assert.Len(fn.Parameters, 3)
	assert.Len(fn.Return, 1)

	_, err = c.GetNormalizedFunction(types.GetNormalizedMoveFunctionParams{Package: types.FrameworkPackageID, Module: "coin", Function: "nope"})
	assert.Error(err)
}

func TestDynamicFieldsThroughFacade(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)

	page, err := c.GetDynamicFields(types.GetDynamicFieldsParams{ParentID: types.ObjectID{7}})
	require.NoError(t, err)
	assert.Empty(page.Data)
	assert.False(page.HasNextPage)

	resp, err := c.GetDynamicFieldObject(types.GetDynamicFieldObjectParams{
		ParentID: types.ObjectID{7},
		Name:     types.DynamicFieldName{Type: "u64", Value: json.RawMessage(`1`)},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(types.CodeDynamicFieldNotFound, resp.Error.Code)
}

func TestSnapshotAndReset(t *testing.T) {
	assert := assert.New(t)
	c := newTestClient(t)
	owner := types.Address{1}

	_, err := c.MintSui(owner, 10)
	require.NoError(t, err)
	snapshot, err := c.TakeSnapshot()
	require.NoError(t, err)

	require.NoError(t, c.Reset())
	balance, err := c.GetBalance(owner, "")
	assert.NoError(err)
	assert.Zero(balance)

	require.NoError(t, c.RestoreSnapshot(snapshot))
	balance, err = c.GetBalance(owner, "")
	assert.NoError(err)
	assert.EqualValues(10, balance)
}

func TestNewFactoryError(t *testing.T) {
	errBoom := errors.New("boom")
	_, err := New(func() (backend.Backend, error) { return nil, errBoom })
	assert.ErrorIs(t, err, errBoom)
}

func TestDecodeErrors(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeBackend{responses: map[string]string{}}
	c, err := New(func() (backend.Backend, error) { return fake, nil })
	require.NoError(t, err)

	fake.responses["getPast"] = `{"status":"Mystery","details":null}`
	_, err = c.TryGetPastObject(types.TryGetPastObjectParams{ID: types.ObjectID{1}, Version: 1})
	assert.ErrorIs(err, ErrDecode)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal("tryGetPastObject", decodeErr.Op)

	fake.responses["get"] = `not json`
	_, err = c.GetObject(types.ObjectID{1})
	assert.ErrorIs(err, ErrDecode)

	fake.responses["get"] = `null`
	_, err = c.GetObject(types.ObjectID{1})
	assert.ErrorIs(err, ErrDecode)

	fake.responses["mint"] = `zz`
	_, err = c.MintSui(types.Address{1}, 1)
	assert.ErrorIs(err, ErrDecode)

	fake.responses["getResponse"] = `null`
	_, err = c.GetTransaction(types.Digest{1})
	assert.ErrorIs(err, ErrTransactionNotFound)

	fake.err = errors.New("backend down")
	_, err = c.GetCoins(types.Address{1}, "")
	assert.ErrorIs(err, fake.err)
	assert.Contains(err.Error(), "getCoins")
	assert.NotErrorIs(err, ErrDecode)
}
