// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/movesandbox/types"
)

func TestTransactionCodec(t *testing.T) {
	assert := assert.New(t)

	tx := &TransactionData{
		Sender:     types.Address{1},
		GasPayment: []types.ObjectID{{2}},
		GasPrice:   10,
		GasBudget:  1000,
		Nonce:      3,
		Commands: []Command{
			&SplitCoin{Coin: types.ObjectID{2}, Amounts: []uint64{1, 2}},
			&MergeCoins{Destination: types.ObjectID{2}, Sources: []types.ObjectID{{3}}},
			&TransferObjects{Objects: []types.ObjectID{{4}}, Recipient: types.Address{5}},
			&CreateObject{Type: "0x1::m::T", Fields: json.RawMessage(`{"a":1}`), Shared: true},
			&MutateObject{Object: types.ObjectID{6}, Fields: json.RawMessage(`[]`)},
			&DeleteObject{Object: types.ObjectID{7}},
			&AddDynamicField{Parent: types.ObjectID{8}, NameType: "u64", Name: json.RawMessage(`1`), ValueType: "bool", Value: json.RawMessage(`true`)},
			&RemoveDynamicField{Parent: types.ObjectID{8}, NameType: "u64", Name: json.RawMessage(`1`)},
			&MoveCall{Package: types.FrameworkPackageID, Module: "coin", Function: "value", TypeArguments: []string{types.SuiCoinType}, Arguments: []types.ObjectID{{9}}},
			&Publish{Modules: [][]byte{{1, 2, 3}}, Dependencies: []types.ObjectID{types.StdlibPackageID}},
		},
	}
	b, err := EncodeTransaction(tx)
	require.NoError(t, err)

	decoded, err := DecodeTransaction(b)
	require.NoError(t, err)
	assert.Equal(tx, decoded)
	assert.Equal(TransactionDigest(b), TransactionDigest(append([]byte{}, b...)))

	raw, err := commandsJSON(decoded)
	require.NoError(t, err)
	assert.Contains(string(raw), `"kind":"ProgrammableTransaction"`)
	assert.Contains(string(raw), `{"Publish":`)

	// each command is tagged by its name and keeps its own fields
	var rendered struct {
		Commands []map[string]json.RawMessage `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(raw, &rendered))
	require.Len(t, rendered.Commands, len(tx.Commands))
	for i, cmd := range tx.Commands {
		assert.Contains(rendered.Commands[i], cmd.CommandName())
	}
	assert.Contains(string(raw), `{"AddDynamicField":{"parent":"`+types.ObjectID{8}.String()+`","nameType":"u64","name":1,`)
	assert.Contains(string(raw), `{"RemoveDynamicField":{"parent":"`+types.ObjectID{8}.String()+`","nameType":"u64","name":1}}`)

	tx.Nonce++
	other, err := EncodeTransaction(tx)
	require.NoError(t, err)
	assert.NotEqual(TransactionDigest(b), TransactionDigest(other))
}

func TestDecodeTransactionInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := EncodeTransaction(&TransactionData{})
	assert.ErrorIs(err, errNoCommands)

	_, err = DecodeTransaction([]byte{0, 0, 1})
	assert.Error(err)

	b, err := EncodeTransaction(&TransactionData{Commands: []Command{
		&CreateObject{Type: "0x1::m::T", Fields: json.RawMessage(`{"a":`)},
	}})
	require.NoError(t, err)
	_, err = DecodeTransaction(b)
	assert.ErrorIs(err, errInvalidJSON)

	b, err = EncodeTransaction(&TransactionData{Commands: []Command{
		&AddDynamicField{Parent: types.ObjectID{1}, NameType: "u64", Name: json.RawMessage(`{`), ValueType: "u64", Value: json.RawMessage(`1`)},
	}})
	require.NoError(t, err)
	_, err = DecodeTransaction(b)
	assert.ErrorIs(err, errInvalidJSON)
	assert.Contains(err.Error(), "AddDynamicField")
}
