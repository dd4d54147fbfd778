// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/json"
	"math"
	"testing"

	tassert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/movesandbox/types"
)

func query(t *testing.T, vm *VM, params types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error) {
	b, err := json.Marshal(params)
	require.NoError(t, err)
	out, err := vm.Transaction().QueryBlocks(string(b))
	if err != nil {
		return nil, err
	}
	page := &types.TransactionBlocksPage{}
	decode(t, out, page)
	return page, nil
}

func digests(page *types.TransactionBlocksPage) []types.Digest {
	out := []types.Digest{}
	for _, resp := range page.Data {
		out = append(out, resp.Digest)
	}
	return out
}

func TestQueryTransactionBlocks(t *testing.T) {
	assert := tassert.New(t)
	vm := newTestVM(t)
	alice, bob := newTestSigner(t, 1), newTestSigner(t, 2)
	gas := mint(t, vm, alice.Address(), testFunds)

	tx1 := execute(t, vm, alice, newTx(alice, gas, &SplitCoin{Coin: gas, Amounts: []uint64{100}, Recipient: bob.Address()}))
	require.True(t, tx1.Succeeded())
	coins := created(tx1, types.CoinStructType(types.SuiCoinType))
	require.Len(t, coins, 1)
	tx2 := execute(t, vm, alice, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{}`)}))
	require.True(t, tx2.Succeeded())
	tx3 := execute(t, vm, alice, newTx(alice, gas, &MoveCall{Package: types.FrameworkPackageID, Module: "coin", Function: "value"}))
	require.True(t, tx3.Succeeded(), "%+v", tx3.Effects)

	// a rejected transaction is listed unfiltered but never indexed
	require.NoError(t, vm.Behavior().SetRejectNextTransaction("nope"))
	rejected := execute(t, vm, alice, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Other", Fields: json.RawMessage(`{}`)}))
	require.NotEmpty(t, rejected.Errors)

	all := []types.Digest{tx1.Digest, tx2.Digest, tx3.Digest}
	coin := coins[0]
	kind := types.KindProgrammableTransaction
	aliceAddr, bobAddr := alice.Address(), bob.Address()

	tests := []struct {
		name   string
		filter *types.TransactionFilter
		want   []types.Digest
	}{
		{"all", nil, append(append([]types.Digest{}, all...), rejected.Digest)},
		{"input gas", &types.TransactionFilter{InputObject: &gas}, all},
		{"changed coin", &types.TransactionFilter{ChangedObject: &coin}, all[:1]},
		{"affected coin", &types.TransactionFilter{AffectedObject: &coin}, all[:1]},
		{"from alice", &types.TransactionFilter{FromAddress: &aliceAddr}, all},
		{"to bob", &types.TransactionFilter{ToAddress: &bobAddr}, all[:1]},
		{"from or to bob", &types.TransactionFilter{FromOrToAddress: &types.AddressFilter{Addr: bobAddr}}, all[:1]},
		{"from bob", &types.TransactionFilter{FromAddress: &bobAddr}, []types.Digest{}},
		{"kind", &types.TransactionFilter{TransactionKind: &kind}, all},
		{"package", &types.TransactionFilter{MoveFunction: &types.MoveFunctionFilter{Package: types.FrameworkPackageID}}, all[2:]},
		{"module", &types.TransactionFilter{MoveFunction: &types.MoveFunctionFilter{Package: types.FrameworkPackageID, Module: "coin"}}, all[2:]},
		{"function", &types.TransactionFilter{MoveFunction: &types.MoveFunctionFilter{Package: types.FrameworkPackageID, Module: "coin", Function: "value"}}, all[2:]},
		{"other module", &types.TransactionFilter{MoveFunction: &types.MoveFunctionFilter{Package: types.FrameworkPackageID, Module: "transfer"}}, []types.Digest{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert := tassert.New(t)
			page, err := query(t, vm, types.QueryTransactionBlocksParams{Filter: test.filter})
			require.NoError(t, err)
			assert.Equal(test.want, digests(page))
			assert.False(page.HasNextPage)
		})
	}

	// every transaction that takes an object as input affects it
	for _, id := range []types.ObjectID{gas, coin, types.FrameworkPackageID} {
		id := id
		input, err := query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{InputObject: &id}})
		require.NoError(t, err)
		affected, err := query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{AffectedObject: &id}})
		require.NoError(t, err)
		assert.LessOrEqual(len(input.Data), len(affected.Data), id.String())
		assert.Subset(digests(affected), digests(input), id.String())
	}
	// the framework package is a read-only input of the Move call
	framework := types.FrameworkPackageID
	page, err := query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{InputObject: &framework}})
	require.NoError(t, err)
	assert.Equal(all[2:], digests(page))
	page, err = query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{ChangedObject: &framework}})
	require.NoError(t, err)
	assert.Empty(page.Data)

	// descending order
	page, err = query(t, vm, types.QueryTransactionBlocksParams{
		Filter: &types.TransactionFilter{InputObject: &gas},
		Order:  types.Descending,
	})
	require.NoError(t, err)
	assert.Equal([]types.Digest{tx3.Digest, tx2.Digest, tx1.Digest}, digests(page))

	// pagination
	limit := uint(2)
	page, err = query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{InputObject: &gas}, Limit: &limit})
	require.NoError(t, err)
	assert.Equal(all[:2], digests(page))
	assert.True(page.HasNextPage)
	require.NotNil(t, page.NextCursor)
	assert.Nil(page.Data[0].Effects)

	page, err = query(t, vm, types.QueryTransactionBlocksParams{
		Filter:  &types.TransactionFilter{InputObject: &gas},
		Cursor:  page.NextCursor,
		Limit:   &limit,
		Options: &types.TransactionBlockResponseOptions{ShowEffects: true},
	})
	require.NoError(t, err)
	assert.Equal(all[2:], digests(page))
	assert.False(page.HasNextPage)
	require.NotNil(t, page.Data[0].Effects)
	assert.Equal(tx3.Effects, page.Data[0].Effects)

	// limits past the remaining transactions select all of them
	for _, limit := range []uint{3, 4, math.MaxUint32, ^uint(0)} {
		limit := limit
		page, err = query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{InputObject: &gas}, Limit: &limit})
		require.NoError(t, err)
		assert.Equal(all, digests(page))
		assert.False(page.HasNextPage)
	}
	first := tx1.Digest
	huge := ^uint(0)
	page, err = query(t, vm, types.QueryTransactionBlocksParams{Cursor: &first, Limit: &huge})
	require.NoError(t, err)
	assert.Equal([]types.Digest{tx2.Digest, tx3.Digest, rejected.Digest}, digests(page))
	assert.False(page.HasNextPage)

	// malformed queries
	_, err = query(t, vm, types.QueryTransactionBlocksParams{Filter: &types.TransactionFilter{}})
	assert.Error(err)
	_, err = query(t, vm, types.QueryTransactionBlocksParams{
		Filter: &types.TransactionFilter{MoveFunction: &types.MoveFunctionFilter{Package: types.FrameworkPackageID, Function: "value"}},
	})
	assert.ErrorIs(err, errModuleRequired)
	unknown := types.Digest{1}
	_, err = query(t, vm, types.QueryTransactionBlocksParams{Cursor: &unknown})
	assert.ErrorIs(err, errCursorNotFound)
	_, err = vm.Transaction().QueryBlocks("not json")
	assert.Error(err)
}
