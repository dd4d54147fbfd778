// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ava-labs/movesandbox/types"
)

var (
	errWrongCodecVersion = errors.New("wrong codec version")
	errNoCommands        = errors.New("transaction has no commands")
	errInvalidJSON       = errors.New("command carries invalid JSON")

	transactionDigestPrefix = []byte("TransactionData::")
)

// TransactionData is the signed content of a transaction. GasPayment may be
// empty only for transactions submitted by the backend itself. Nonce
// distinguishes otherwise identical transactions.
type TransactionData struct {
	Sender     types.Address    `serialize:"true" json:"sender"`
	GasPayment []types.ObjectID `serialize:"true" json:"gasPayment"`
	GasPrice   uint64           `serialize:"true" json:"gasPrice"`
	GasBudget  uint64           `serialize:"true" json:"gasBudget"`
	Nonce      uint64           `serialize:"true" json:"nonce"`
	Commands   []Command        `serialize:"true" json:"commands"`
}

// Command is one step of a transaction. Commands run in order; the first
// failing command aborts every effect of the transaction except the gas
// charge.
type Command interface {
	// CommandName is the externally tagged JSON name of the command.
	CommandName() string

	// inputs lists the objects the command reads or writes.
	inputs() []types.ObjectID
	execute(e *executor) error
}

// SplitCoin splits [Amounts] off [Coin] into new coins owned by [Recipient],
// or by the sender when Recipient is zero.
type SplitCoin struct {
	Coin      types.ObjectID `serialize:"true" json:"coin"`
	Amounts   []uint64       `serialize:"true" json:"amounts"`
	Recipient types.Address  `serialize:"true" json:"recipient"`
}

// MergeCoins merges [Sources] into [Destination]. Sources are deleted.
type MergeCoins struct {
	Destination types.ObjectID   `serialize:"true" json:"destination"`
	Sources     []types.ObjectID `serialize:"true" json:"sources"`
}

// TransferObjects hands [Objects] to [Recipient].
type TransferObjects struct {
	Objects   []types.ObjectID `serialize:"true" json:"objects"`
	Recipient types.Address    `serialize:"true" json:"recipient"`
}

// CreateObject creates an object of [Type] holding the JSON [Fields].
type CreateObject struct {
	Type   string          `serialize:"true" json:"type"`
	Fields json.RawMessage `serialize:"true" json:"fields"`
	Shared bool            `serialize:"true" json:"shared"`
}

// MutateObject replaces the JSON fields of [Object].
type MutateObject struct {
	Object types.ObjectID  `serialize:"true" json:"object"`
	Fields json.RawMessage `serialize:"true" json:"fields"`
}

// DeleteObject deletes [Object]. Coins must be empty to be deleted.
type DeleteObject struct {
	Object types.ObjectID `serialize:"true" json:"object"`
}

// AddDynamicField attaches a field named ([NameType], [Name]) to [Parent].
// Name and Value are JSON.
type AddDynamicField struct {
	Parent    types.ObjectID  `serialize:"true" json:"parent"`
	NameType  string          `serialize:"true" json:"nameType"`
	Name      json.RawMessage `serialize:"true" json:"name"`
	ValueType string          `serialize:"true" json:"valueType"`
	Value     json.RawMessage `serialize:"true" json:"value"`
}

// RemoveDynamicField deletes the field named ([NameType], [Name]) of
// [Parent].
type RemoveDynamicField struct {
	Parent   types.ObjectID  `serialize:"true" json:"parent"`
	NameType string          `serialize:"true" json:"nameType"`
	Name     json.RawMessage `serialize:"true" json:"name"`
}

// MoveCall records a call to a Move function. Bytecode is not executed:
// the call checks the function exists and bumps the versions of the mutable
// objects passed as [Arguments].
type MoveCall struct {
	Package       types.ObjectID   `serialize:"true" json:"package"`
	Module        string           `serialize:"true" json:"module"`
	Function      string           `serialize:"true" json:"function"`
	TypeArguments []string         `serialize:"true" json:"typeArguments"`
	Arguments     []types.ObjectID `serialize:"true" json:"arguments"`
}

// Publish creates an immutable package from [Modules] and an upgrade
// capability owned by the sender.
type Publish struct {
	Modules      [][]byte         `serialize:"true" json:"modules"`
	Dependencies []types.ObjectID `serialize:"true" json:"dependencies"`
}

func (*SplitCoin) CommandName() string          { return "SplitCoin" }
func (*MergeCoins) CommandName() string         { return "MergeCoins" }
func (*TransferObjects) CommandName() string    { return "TransferObjects" }
func (*CreateObject) CommandName() string       { return "CreateObject" }
func (*MutateObject) CommandName() string       { return "MutateObject" }
func (*DeleteObject) CommandName() string       { return "DeleteObject" }
func (*AddDynamicField) CommandName() string    { return "AddDynamicField" }
func (*RemoveDynamicField) CommandName() string { return "RemoveDynamicField" }
func (*MoveCall) CommandName() string           { return "MoveCall" }
func (*Publish) CommandName() string            { return "Publish" }

// EncodeTransaction returns the wire bytes of [tx].
func EncodeTransaction(tx *TransactionData) ([]byte, error) {
	if len(tx.Commands) == 0 {
		return nil, errNoCommands
	}
	return Codec.Marshal(CodecVersion, tx)
}

// DecodeTransaction parses wire bytes produced by EncodeTransaction.
func DecodeTransaction(b []byte) (*TransactionData, error) {
	tx := &TransactionData{}
	version, err := Codec.Unmarshal(b, tx)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode transaction: %w", err)
	}
	if version != CodecVersion {
		return nil, errWrongCodecVersion
	}
	if len(tx.Commands) == 0 {
		return nil, errNoCommands
	}
	for i, cmd := range tx.Commands {
		if !validJSON(cmd) {
			return nil, fmt.Errorf("%w: command %d (%s)", errInvalidJSON, i, cmd.CommandName())
		}
	}
	return tx, nil
}

func validJSON(cmd Command) bool {
	switch cmd := cmd.(type) {
	case *CreateObject:
		return json.Valid(cmd.Fields)
	case *MutateObject:
		return json.Valid(cmd.Fields)
	case *AddDynamicField:
		return json.Valid(cmd.Name) && json.Valid(cmd.Value)
	case *RemoveDynamicField:
		return json.Valid(cmd.Name)
	default:
		return true
	}
}

// TransactionDigest is blake2b-256("TransactionData::" || txBytes).
func TransactionDigest(txBytes []byte) types.Digest {
	msg := make([]byte, 0, len(transactionDigestPrefix)+len(txBytes))
	msg = append(msg, transactionDigestPrefix...)
	msg = append(msg, txBytes...)
	return types.Digest(blake2b.Sum256(msg))
}

type programmableJSON struct {
	Kind     string                       `json:"kind"`
	Commands []map[string]json.RawMessage `json:"commands"`
}

// commandsJSON renders the commands in their externally tagged JSON form.
func commandsJSON(tx *TransactionData) (json.RawMessage, error) {
	out := programmableJSON{
		Kind:     types.KindProgrammableTransaction,
		Commands: make([]map[string]json.RawMessage, 0, len(tx.Commands)),
	}
	for _, cmd := range tx.Commands {
		b, err := json.Marshal(cmd)
		if err != nil {
			return nil, err
		}
		out.Commands = append(out.Commands, map[string]json.RawMessage{cmd.CommandName(): b})
	}
	return json.Marshal(out)
}
