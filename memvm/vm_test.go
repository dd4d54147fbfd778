// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/movesandbox/keys"
	"github.com/ava-labs/movesandbox/types"
)

const (
	testBudget = 100_000
	testFunds  = 1_000_000
)

func newTestVM(t *testing.T) *VM {
	vm, err := New(DefaultConfig())
	require.NoError(t, err)
	return vm
}

func newTestSigner(t *testing.T, b byte) *keys.Signer {
	signer, err := keys.FromSeed(bytes.Repeat([]byte{b}, 32))
	require.NoError(t, err)
	return signer
}

func mint(t *testing.T, vm *VM, owner types.Address, amount uint64) types.ObjectID {
	idStr, err := vm.Coin().MintSui(owner.String(), amount)
	require.NoError(t, err)
	id, err := types.ParseObjectID(idStr)
	require.NoError(t, err)
	return id
}

func balance(t *testing.T, vm *VM, owner types.Address) uint64 {
	b, err := vm.Coin().GetBalance(owner.String(), "")
	require.NoError(t, err)
	return b
}

func decode(t *testing.T, s string, v interface{}) {
	require.NoError(t, json.Unmarshal([]byte(s), v))
}

// newTx returns a transaction of [signer] paying gas with [gas].
func newTx(signer *keys.Signer, gas types.ObjectID, cmds ...Command) *TransactionData {
	return &TransactionData{
		Sender:     signer.Address(),
		GasPayment: []types.ObjectID{gas},
		GasPrice:   DefaultGasPrice,
		GasBudget:  testBudget,
		Commands:   cmds,
	}
}

func encode(t *testing.T, tx *TransactionData) []byte {
	b, err := EncodeTransaction(tx)
	require.NoError(t, err)
	return b
}

func executeBytes(t *testing.T, vm *VM, txBytes []byte, sigs ...string) (*types.TransactionBlockResponse, error) {
	out, err := vm.Transaction().Execute(base64.StdEncoding.EncodeToString(txBytes), sigs)
	if err != nil {
		return nil, err
	}
	resp := &types.TransactionBlockResponse{}
	decode(t, out, resp)
	return resp, nil
}

func execute(t *testing.T, vm *VM, signer *keys.Signer, tx *TransactionData) *types.TransactionBlockResponse {
	txBytes := encode(t, tx)
	resp, err := executeBytes(t, vm, txBytes, signer.Sign(txBytes))
	require.NoError(t, err)
	return resp
}

// created returns the ids of the objects of [objectType] created by a
// transaction.
func created(resp *types.TransactionBlockResponse, objectType string) []types.ObjectID {
	var out []types.ObjectID
	for _, change := range resp.ObjectChanges {
		if change.Type == types.ChangeCreated && change.ObjectType == objectType {
			out = append(out, *change.ObjectID)
		}
	}
	return out
}

func TestGenesis(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)

	st := vm.newState()
	defer st.Abort()
	ok, err := st.IsInitialized()
	assert.NoError(err)
	assert.True(ok)

	for _, id := range []types.ObjectID{types.StdlibPackageID, types.FrameworkPackageID} {
		out, err := vm.Object().Get(id.String())
		require.NoError(t, err)
		resp := types.ObjectResponse{}
		decode(t, out, &resp)
		require.NotNil(t, resp.Data)
		assert.Equal(packageType, resp.Data.Type)
		assert.Equal(types.Immutable, resp.Data.Owner.Kind)
		assert.EqualValues(genesisVersion, resp.Data.Version)
	}

	out, err := vm.Object().Get(types.ClockObjectID.String())
	require.NoError(t, err)
	resp := types.ObjectResponse{}
	decode(t, out, &resp)
	require.NotNil(t, resp.Data)
	assert.Equal(types.SharedOwner, resp.Data.Owner.Kind)
	assert.Contains(string(resp.Data.Content), `"timestamp_ms":"0"`)

	price, err := vm.State().GetReferenceGasPrice()
	assert.NoError(err)
	assert.EqualValues(DefaultGasPrice, price)
}

func TestMintAndCoins(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)

	first := mint(t, vm, alice.Address(), 1000)
	second := mint(t, vm, alice.Address(), 500)
	assert.NotEqual(first, second)
	assert.EqualValues(1500, balance(t, vm, alice.Address()))

	out, err := vm.Coin().GetCoins(alice.Address().String(), types.SuiCoinType)
	require.NoError(t, err)
	var coins []types.Coin
	decode(t, out, &coins)
	assert.Len(coins, 2)
	for _, coin := range coins {
		assert.Equal(types.SuiCoinType, coin.CoinType)
		assert.EqualValues(genesisVersion, coin.Version)
		assert.Equal(types.EmptyDigest, coin.PreviousTransaction)
	}

	other, err := vm.Coin().GetBalance(alice.Address().String(), "0xabc::token::TOKEN")
	assert.NoError(err)
	assert.Zero(other)

	out, err = vm.Coin().GetCoins(newTestSigner(t, 2).Address().String(), "")
	assert.NoError(err)
	assert.Equal("[]", out)

	_, err = vm.Coin().MintSui("not an address", 1)
	assert.Error(err)
}

func TestSplitAndTransfer(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice, bob := newTestSigner(t, 1), newTestSigner(t, 2)
	gas := mint(t, vm, alice.Address(), testFunds)

	resp := execute(t, vm, alice, newTx(alice, gas, &SplitCoin{
		Coin:      gas,
		Amounts:   []uint64{100, 200},
		Recipient: bob.Address(),
	}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)

	// computation 10*(1000+100) plus storage of three written objects
	const charge = 11_000 + 3*100
	assert.EqualValues(300, balance(t, vm, bob.Address()))
	assert.EqualValues(testFunds-300-charge, balance(t, vm, alice.Address()))
	assert.EqualValues(charge, resp.Effects.GasUsed.Total())

	require.NotNil(t, resp.Effects.GasObject)
	assert.Equal(gas, resp.Effects.GasObject.Reference.ObjectID)
	assert.EqualValues(2, resp.Effects.GasObject.Reference.Version)
	assert.Len(resp.Effects.Created, 2)
	assert.Len(resp.Effects.Mutated, 1)

	require.Len(t, resp.BalanceChanges, 2)
	assert.Equal(types.NewAddressOwner(alice.Address()), resp.BalanceChanges[0].Owner)
	assert.Equal("-11600", resp.BalanceChanges[0].Amount)
	assert.Equal(types.NewAddressOwner(bob.Address()), resp.BalanceChanges[1].Owner)
	assert.Equal("300", resp.BalanceChanges[1].Amount)

	require.NotNil(t, resp.Transaction)
	assert.Equal(alice.Address(), resp.Transaction.Data.Sender)
	assert.Contains(string(resp.Transaction.Data.Transaction), `"SplitCoin"`)

	// the recorded response matches the returned one
	out, err := vm.Transaction().GetResponse(resp.Digest.String())
	require.NoError(t, err)
	recorded := types.TransactionBlockResponse{}
	decode(t, out, &recorded)
	assert.Equal(resp.Digest, recorded.Digest)
	assert.Equal(resp.Effects, recorded.Effects)

	// bob moves one of his coins back
	bobGas := mint(t, vm, bob.Address(), testFunds)
	coins := created(resp, types.CoinStructType(types.SuiCoinType))
	require.Len(t, coins, 2)
	resp = execute(t, vm, bob, newTx(bob, bobGas, &TransferObjects{
		Objects:   coins[:1],
		Recipient: alice.Address(),
	}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)
	var transferred bool
	for _, change := range resp.ObjectChanges {
		if change.Type == types.ChangeTransferred {
			transferred = true
			assert.Equal(coins[0], *change.ObjectID)
			assert.Equal(types.NewAddressOwner(alice.Address()), *change.Recipient)
		}
	}
	assert.True(transferred)
}

func TestMergeCoins(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)
	a := mint(t, vm, alice.Address(), 10)
	b := mint(t, vm, alice.Address(), 20)

	resp := execute(t, vm, alice, newTx(alice, gas, &MergeCoins{Destination: a, Sources: []types.ObjectID{b}}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)
	require.Len(t, resp.Effects.Deleted, 1)
	assert.Equal(b, resp.Effects.Deleted[0].ObjectID)

	out, err := vm.Object().Get(b.String())
	require.NoError(t, err)
	obj := types.ObjectResponse{}
	decode(t, out, &obj)
	require.NotNil(t, obj.Error)
	assert.Equal(types.CodeDeleted, obj.Error.Code)

	out, err = vm.Object().Get(a.String())
	require.NoError(t, err)
	obj = types.ObjectResponse{}
	decode(t, out, &obj)
	require.NotNil(t, obj.Data)
	assert.Contains(string(obj.Data.Content), `"balance":"30"`)

	resp = execute(t, vm, alice, newTx(alice, gas, &MergeCoins{Destination: a, Sources: []types.ObjectID{a}}))
	assert.False(resp.Succeeded())
}

func TestCommandFailureChargesGas(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice, bob := newTestSigner(t, 1), newTestSigner(t, 2)
	gas := mint(t, vm, alice.Address(), testFunds)

	// the budget stays reserved on the gas coin
	resp := execute(t, vm, alice, newTx(alice, gas, &SplitCoin{
		Coin:      gas,
		Amounts:   []uint64{testFunds - testBudget + 1},
		Recipient: bob.Address(),
	}))
	require.NotNil(t, resp.Effects)
	assert.Empty(resp.Errors)
	assert.Equal(types.StatusFailure, resp.Effects.Status.Status)
	assert.Contains(resp.Effects.Status.Error, errInsufficientBalance.Error())
	assert.Empty(resp.Effects.Created)
	assert.EqualValues(testFunds-11_000, balance(t, vm, alice.Address()))
	assert.Zero(balance(t, vm, bob.Address()))

	// a budget below the computation cost fails every command
	tx := newTx(alice, gas, &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{}`)})
	tx.GasBudget = 5_000
	resp = execute(t, vm, alice, tx)
	assert.Equal(types.StatusFailure, resp.Effects.Status.Status)
	assert.Equal(errInsufficientGas.Error(), resp.Effects.Status.Error)
	assert.EqualValues(testFunds-11_000-5_000, balance(t, vm, alice.Address()))
}

func TestGasValidation(t *testing.T) {
	vm := newTestVM(t)
	alice, bob := newTestSigner(t, 1), newTestSigner(t, 2)
	gas := mint(t, vm, alice.Address(), testFunds)
	bobGas := mint(t, vm, bob.Address(), testFunds)
	cmd := &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{}`)}

	tests := []struct {
		name   string
		modify func(tx *TransactionData)
		err    error
	}{
		{"no gas", func(tx *TransactionData) { tx.GasPayment = nil }, errNoGasPayment},
		{"low price", func(tx *TransactionData) { tx.GasPrice = 1 }, errGasPriceTooLow},
		{"duplicate gas", func(tx *TransactionData) { tx.GasPayment = append(tx.GasPayment, gas) }, errDuplicateGas},
		{"foreign gas", func(tx *TransactionData) { tx.GasPayment = []types.ObjectID{bobGas} }, errNotOwner},
		{"budget over balance", func(tx *TransactionData) { tx.GasBudget = testFunds + 1 }, errInsufficientGasBalance},
		{"missing gas", func(tx *TransactionData) { tx.GasPayment = []types.ObjectID{{1}} }, errObjectNotFound},
		{"gas is a package", func(tx *TransactionData) { tx.GasPayment = []types.ObjectID{types.FrameworkPackageID} }, errGasNotSui},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tx := newTx(alice, gas, cmd)
			test.modify(tx)
			txBytes := encode(t, tx)
			_, err := executeBytes(t, vm, txBytes, alice.Sign(txBytes))
			assert.ErrorIs(t, err, test.err)
		})
	}
	assert.EqualValues(t, testFunds, balance(t, vm, alice.Address()))
}

func TestRejectNextTransaction(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)

	require.NoError(t, vm.Behavior().SetRejectNextTransaction("maintenance"))

	txBytes := encode(t, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{}`)}))
	resp, err := executeBytes(t, vm, txBytes, alice.Sign(txBytes))
	require.NoError(t, err)
	assert.Equal([]string{"maintenance"}, resp.Errors)
	assert.Nil(resp.Effects)
	assert.False(resp.Succeeded())
	assert.EqualValues(testFunds, balance(t, vm, alice.Address()))

	out, err := vm.Transaction().GetResponse(resp.Digest.String())
	require.NoError(t, err)
	recorded := types.TransactionBlockResponse{}
	decode(t, out, &recorded)
	assert.Equal([]string{"maintenance"}, recorded.Errors)

	// the rejection is one-shot: resubmitting executes
	resp, err = executeBytes(t, vm, txBytes, alice.Sign(txBytes))
	require.NoError(t, err)
	assert.True(resp.Succeeded())
	charged := balance(t, vm, alice.Address())
	assert.Less(charged, uint64(testFunds))

	// and a second submission of an executed transaction is a lookup
	again, err := executeBytes(t, vm, txBytes, alice.Sign(txBytes))
	require.NoError(t, err)
	assert.Equal(resp.Digest, again.Digest)
	assert.Equal(resp.Effects, again.Effects)
	assert.Equal(charged, balance(t, vm, alice.Address()))

	// the rejected attempt and the execution share one record
	out, err = vm.Transaction().QueryBlocks(`{}`)
	require.NoError(t, err)
	page := types.TransactionBlocksPage{}
	decode(t, out, &page)
	assert.Len(page.Data, 1)
}

func TestSignatureChecks(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice, bob := newTestSigner(t, 1), newTestSigner(t, 2)
	gas := mint(t, vm, alice.Address(), testFunds)

	txBytes := encode(t, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{}`)}))
	_, err := executeBytes(t, vm, txBytes)
	assert.ErrorIs(err, errInvalidSignature)
	_, err = executeBytes(t, vm, txBytes, bob.Sign(txBytes))
	assert.ErrorIs(err, errInvalidSignature)

	require.NoError(t, vm.Behavior().DisableSignatureChecks())
	resp, err := executeBytes(t, vm, txBytes)
	require.NoError(t, err)
	assert.True(resp.Succeeded())

	require.NoError(t, vm.Behavior().EnableSignatureChecks())
	txBytes = encode(t, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Other", Fields: json.RawMessage(`{}`)}))
	_, err = executeBytes(t, vm, txBytes, bob.Sign(txBytes))
	assert.ErrorIs(err, errInvalidSignature)
}

func TestDryRun(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)
	require.NoError(t, vm.Behavior().SetRejectNextTransaction("armed"))

	txBytes := encode(t, newTx(alice, gas, &CreateObject{Type: "0xabc::m::Thing", Fields: json.RawMessage(`{"a":1}`)}))
	out, err := vm.Transaction().DryRun(base64.StdEncoding.EncodeToString(txBytes))
	require.NoError(t, err)
	dry := types.DryRunTransactionBlockResponse{}
	decode(t, out, &dry)
	require.NotNil(t, dry.Effects)
	assert.Equal(types.StatusSuccess, dry.Effects.Status.Status)
	assert.Len(dry.Effects.Created, 1)
	require.NotNil(t, dry.Input)
	assert.Equal(alice.Address(), dry.Input.Sender)

	// nothing was committed
	assert.EqualValues(testFunds, balance(t, vm, alice.Address()))
	out, err = vm.Transaction().GetResponse(TransactionDigest(txBytes).String())
	assert.NoError(err)
	assert.Equal("null", out)

	// the rejection is still armed
	resp, err := executeBytes(t, vm, txBytes, alice.Sign(txBytes))
	require.NoError(t, err)
	assert.Equal([]string{"armed"}, resp.Errors)

	_, err = vm.Transaction().DryRun("%%%")
	assert.Error(err)
}

func TestPastObjects(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)
	coin := mint(t, vm, alice.Address(), 10)
	target := mint(t, vm, alice.Address(), 10)

	// gas, coin and target move to version 2; coin is deleted there
	resp := execute(t, vm, alice, newTx(alice, gas, &MergeCoins{Destination: target, Sources: []types.ObjectID{coin}}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)

	past := func(id types.ObjectID, version uint64) types.PastObjectRead {
		out, err := vm.Object().GetPast(id.String(), version)
		require.NoError(t, err)
		read := types.PastObjectRead{}
		decode(t, out, &read)
		return read
	}

	read := past(gas, 1)
	assert.Equal(types.VersionFound, read.Status)
	require.NotNil(t, read.Object)
	assert.EqualValues(1, read.Object.Version)

	read = past(gas, 2)
	assert.Equal(types.VersionFound, read.Status)
	assert.EqualValues(2, read.Object.Version)

	read = past(gas, 3)
	assert.Equal(types.VersionTooHigh, read.Status)
	assert.EqualValues(3, read.AskedVersion)
	assert.EqualValues(2, read.LatestVersion)

	read = past(coin, 2)
	assert.Equal(types.VersionNotFound, read.Status)
	assert.Equal(coin, read.ObjectID)
	assert.EqualValues(2, read.AskedVersion)

	read = past(gas, 0)
	assert.Equal(types.VersionNotFound, read.Status)

	read = past(types.ObjectID{9}, 1)
	assert.Equal(types.ObjectNotExists, read.Status)
	assert.Equal(types.ObjectID{9}, read.ObjectID)

	_, err := vm.Object().GetPast("0xzz", 1)
	assert.Error(err)
}

func TestDynamicFields(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)

	resp := execute(t, vm, alice, newTx(alice, gas, &CreateObject{Type: "0xabc::bag::Bag", Fields: json.RawMessage(`{"size":3}`)}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)
	bags := created(resp, types.NormalizeTypeTag("0xabc::bag::Bag"))
	require.Len(t, bags, 1)
	bag := bags[0]

	var cmds []Command
	for _, name := range []string{"1", "2", "3"} {
		cmds = append(cmds, &AddDynamicField{
			Parent:    bag,
			NameType:  "u64",
			Name:      json.RawMessage(name),
			ValueType: "u64",
			Value:     json.RawMessage(name + "0"),
		})
	}
	resp = execute(t, vm, alice, newTx(alice, gas, cmds...))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)

	fields := func(params string) types.DynamicFieldPage {
		out, err := vm.Object().GetDynamicFields(params)
		require.NoError(t, err)
		page := types.DynamicFieldPage{}
		decode(t, out, &page)
		return page
	}

	page := fields(`{"parentId":"` + bag.String() + `","limit":2}`)
	require.Len(t, page.Data, 2)
	assert.True(page.HasNextPage)
	require.NotNil(t, page.NextCursor)
	assert.Equal(page.Data[1].ObjectID, *page.NextCursor)
	assert.Equal(types.DynamicFieldKind, page.Data[0].Type)
	assert.Equal("u64", page.Data[0].Name.Type)
	assert.Equal("u64", page.Data[0].ObjectType)

	rest := fields(`{"parentId":"` + bag.String() + `","cursor":"` + page.NextCursor.String() + `"}`)
	require.Len(t, rest.Data, 1)
	assert.False(rest.HasNextPage)

	// limits past the remaining fields select all of them
	for _, limit := range []string{"3", "4", "18446744073709551615"} {
		all := fields(`{"parentId":"` + bag.String() + `","limit":` + limit + `}`)
		assert.Len(all.Data, 3, limit)
		assert.False(all.HasNextPage, limit)
	}
	rest = fields(`{"parentId":"` + bag.String() + `","cursor":"` + page.NextCursor.String() + `","limit":18446744073709551615}`)
	assert.Len(rest.Data, 1)
	assert.False(rest.HasNextPage)

	out, err := vm.Object().GetDynamicFieldObject(bag.String(), `{"type":"u64","value": 2}`)
	require.NoError(t, err)
	obj := types.ObjectResponse{}
	decode(t, out, &obj)
	require.NotNil(t, obj.Data)
	assert.Equal(types.NewObjectOwner(bag), *obj.Data.Owner)
	assert.Contains(string(obj.Data.Content), `"value":20`)

	out, err = vm.Object().GetDynamicFieldObject(bag.String(), `{"type":"u64","value":7}`)
	require.NoError(t, err)
	obj = types.ObjectResponse{}
	decode(t, out, &obj)
	require.NotNil(t, obj.Error)
	assert.Equal(types.CodeDynamicFieldNotFound, obj.Error.Code)
	assert.Equal(bag, *obj.Error.ParentObjectID)

	// a parent with fields cannot be deleted
	resp = execute(t, vm, alice, newTx(alice, gas, &DeleteObject{Object: bag}))
	assert.Equal(types.StatusFailure, resp.Effects.Status.Status)

	resp = execute(t, vm, alice, newTx(alice, gas, &RemoveDynamicField{Parent: bag, NameType: "u64", Name: json.RawMessage("2")}))
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)
	assert.Len(fields(`{"parentId":"`+bag.String()+`"}`).Data, 2)

	resp = execute(t, vm, alice, newTx(alice, gas, &AddDynamicField{
		Parent: bag, NameType: "u64", Name: json.RawMessage("1"), ValueType: "u64", Value: json.RawMessage("1"),
	}))
	assert.Equal(types.StatusFailure, resp.Effects.Status.Status)
	assert.Contains(resp.Effects.Status.Error, errFieldExists.Error())
}

func TestPublishAndMoveCall(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	gas := mint(t, vm, alice.Address(), testFunds)

	module := base64.StdEncoding.EncodeToString([]byte{0xa1, 0x1c, 0xeb, 0x0b})
	out, err := vm.Package().Publish(
		[]string{module},
		[]string{types.StdlibPackageID.String(), types.FrameworkPackageID.String()},
		alice.Address().String(),
	)
	require.NoError(t, err)
	resp := types.TransactionBlockResponse{}
	decode(t, out, &resp)
	require.True(t, resp.Succeeded(), "%+v", resp.Effects)

	var pkg *types.ObjectID
	for _, change := range resp.ObjectChanges {
		if change.Type == types.ChangePublished {
			pkg = change.PackageID
		}
	}
	require.NotNil(t, pkg)
	assert.Len(created(&resp, upgradeCapType), 1)

	out, err = vm.Object().Get(pkg.String())
	require.NoError(t, err)
	obj := types.ObjectResponse{}
	decode(t, out, &obj)
	require.NotNil(t, obj.Data)
	assert.Equal(types.Immutable, obj.Data.Owner.Kind)
	assert.Contains(string(obj.Data.Content), module)

	// published functions are not disassembled
	_, err = vm.Package().GetNormalizedMoveFunction(pkg.String(), "m", "f")
	assert.ErrorIs(err, errFunctionNotFound)
	_, err = vm.Package().GetNormalizedMoveFunction("0xdead", "m", "f")
	assert.ErrorIs(err, errPackageNotFound)
	fn, err := vm.Package().GetNormalizedMoveFunction("0x2", "coin", "value")
	require.NoError(t, err)
	normalized := types.NormalizedMoveFunction{}
	decode(t, fn, &normalized)
	assert.Equal(types.VisibilityPublic, normalized.Visibility)
	assert.Len(normalized.Parameters, 1)

	call := execute(t, vm, alice, newTx(alice, gas, &MoveCall{Package: *pkg, Module: "m", Function: "f"}))
	assert.True(call.Succeeded(), "%+v", call.Effects)

	call = execute(t, vm, alice, newTx(alice, gas, &MoveCall{Package: types.FrameworkPackageID, Module: "coin", Function: "mint"}))
	assert.Equal(types.StatusFailure, call.Effects.Status.Status)

	_, err = vm.Package().Publish([]string{"***"}, nil, alice.Address().String())
	assert.Error(err)

	out, err = vm.Package().Publish(nil, nil, alice.Address().String())
	require.NoError(t, err)
	resp = types.TransactionBlockResponse{}
	decode(t, out, &resp)
	assert.Equal(types.StatusFailure, resp.Effects.Status.Status)
}

func TestClock(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	clock := vm.Clock()

	now, err := clock.GetTimeMs()
	assert.NoError(err)
	assert.Zero(now)

	assert.NoError(clock.AdvanceByMillis(10))
	assert.NoError(clock.SetTimeMs(100))
	assert.ErrorIs(clock.SetTimeMs(5), errClockBackwards)
	assert.ErrorIs(clock.AdvanceByMillis(^uint64(0)), errClockOverflow)

	now, err = clock.GetTimeMs()
	assert.NoError(err)
	assert.EqualValues(100, now)

	out, err := vm.Object().Get(types.ClockObjectID.String())
	require.NoError(t, err)
	assert.Contains(out, `"timestamp_ms":"100"`)
}

func TestCheckpoint(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)

	checkpoint, err := vm.State().GetLatestCheckpoint()
	assert.NoError(err)
	assert.Zero(checkpoint)

	assert.NoError(vm.Behavior().BumpCheckpoint())
	assert.NoError(vm.Behavior().BumpCheckpoint())
	checkpoint, err = vm.State().GetLatestCheckpoint()
	assert.NoError(err)
	assert.EqualValues(2, checkpoint)
}

func TestSnapshotRoundTrip(t *testing.T) {
	assert := assert.New(t)
	vm := newTestVM(t)
	alice := newTestSigner(t, 1)
	mint(t, vm, alice.Address(), 4242)
	require.NoError(t, vm.Clock().SetTimeMs(77))

	snap, err := vm.Storage().TakeSnapshot()
	require.NoError(t, err)

	fresh := newTestVM(t)
	assert.Zero(balance(t, fresh, alice.Address()))
	require.NoError(t, fresh.Storage().RestoreFromSnapshot(snap))
	assert.EqualValues(4242, balance(t, fresh, alice.Address()))
	now, err := fresh.Clock().GetTimeMs()
	assert.NoError(err)
	assert.EqualValues(77, now)

	// later writes do not leak into the snapshot
	mint(t, vm, alice.Address(), 1)
	require.NoError(t, vm.Storage().RestoreFromSnapshot(snap))
	assert.EqualValues(4242, balance(t, vm, alice.Address()))

	assert.Error(vm.Storage().RestoreFromSnapshot([]byte("garbage")))
}

func TestFactory(t *testing.T) {
	assert := assert.New(t)
	config := DefaultConfig()
	config.InitialTimeMs = 1000
	factory := NewFactory(config)

	first, err := factory.New()
	require.NoError(t, err)
	second, err := factory.New()
	require.NoError(t, err)

	_, err = first.Coin().MintSui(types.Address{1}.String(), 5)
	assert.NoError(err)
	b, err := second.Coin().GetBalance(types.Address{1}.String(), "")
	assert.NoError(err)
	assert.Zero(b)

	now, err := second.Clock().GetTimeMs()
	assert.NoError(err)
	assert.EqualValues(1000, now)
}
