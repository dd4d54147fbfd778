// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

// Execution statuses reported in transaction effects.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Object change kinds.
const (
	ChangePublished   = "published"
	ChangeTransferred = "transferred"
	ChangeMutated     = "mutated"
	ChangeDeleted     = "deleted"
	ChangeWrapped     = "wrapped"
	ChangeCreated     = "created"
)

// TransactionPayload is a transaction's bytes, supplied either raw or as
// base64 text. On the wire it is always base64.
type TransactionPayload struct {
	Bytes  []byte
	Base64 string
}

// RawPayload wraps raw transaction bytes.
func RawPayload(b []byte) TransactionPayload { return TransactionPayload{Bytes: b} }

// EncodedPayload wraps base64 encoded transaction bytes.
func EncodedPayload(s string) TransactionPayload { return TransactionPayload{Base64: s} }

// Encode returns the base64 form of the payload.
func (p TransactionPayload) Encode() string {
	if p.Base64 != "" || p.Bytes == nil {
		return p.Base64
	}
	return base64.StdEncoding.EncodeToString(p.Bytes)
}

func (p TransactionPayload) MarshalJSON() ([]byte, error) { return json.Marshal(p.Encode()) }

func (p *TransactionPayload) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*p = EncodedPayload(s)
	return nil
}

// Signatures accepts either one serialized signature or a list of them and
// always holds a list.
type Signatures []string

func (s *Signatures) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var single string
		if err := json.Unmarshal(b, &single); err != nil {
			return err
		}
		*s = Signatures{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// SignedTransaction is the output of a signer: the (possibly re-encoded)
// transaction bytes and the serialized signature, both base64.
type SignedTransaction struct {
	Bytes     string `json:"bytes"`
	Signature string `json:"signature"`
}

// TransactionBlockResponseOptions selects the fields of transaction
// responses. The local backend always fills every field.
type TransactionBlockResponseOptions struct {
	ShowInput          bool `json:"showInput,omitempty"`
	ShowRawInput       bool `json:"showRawInput,omitempty"`
	ShowEffects        bool `json:"showEffects,omitempty"`
	ShowEvents         bool `json:"showEvents,omitempty"`
	ShowObjectChanges  bool `json:"showObjectChanges,omitempty"`
	ShowBalanceChanges bool `json:"showBalanceChanges,omitempty"`
	ShowRawEffects     bool `json:"showRawEffects,omitempty"`
}

// GasData is the gas configuration of a transaction.
type GasData struct {
	Payment []ObjectRef  `json:"payment"`
	Owner   Address      `json:"owner"`
	Price   cjson.Uint64 `json:"price"`
	Budget  cjson.Uint64 `json:"budget"`
}

// TransactionBlockData is the decoded input of a transaction.
type TransactionBlockData struct {
	MessageVersion string          `json:"messageVersion"`
	Transaction    json.RawMessage `json:"transaction"`
	Sender         Address         `json:"sender"`
	GasData        GasData         `json:"gasData"`
}

// TransactionBlock is a transaction together with its signatures.
type TransactionBlock struct {
	Data         TransactionBlockData `json:"data"`
	TxSignatures []string             `json:"txSignatures"`
}

// ExecutionStatus is the outcome recorded in transaction effects.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GasCostSummary breaks down the gas charged to a transaction.
type GasCostSummary struct {
	ComputationCost         cjson.Uint64 `json:"computationCost"`
	StorageCost             cjson.Uint64 `json:"storageCost"`
	StorageRebate           cjson.Uint64 `json:"storageRebate"`
	NonRefundableStorageFee cjson.Uint64 `json:"nonRefundableStorageFee"`
}

// Total returns the net gas charge.
func (g GasCostSummary) Total() uint64 {
	total := uint64(g.ComputationCost) + uint64(g.StorageCost)
	if rebate := uint64(g.StorageRebate); rebate < total {
		return total - rebate
	}
	return 0
}

// OwnedObjectRef is an object reference together with its new owner.
type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// TransactionEffects summarize the state changes of a transaction.
type TransactionEffects struct {
	MessageVersion    string           `json:"messageVersion"`
	Status            ExecutionStatus  `json:"status"`
	ExecutedEpoch     cjson.Uint64     `json:"executedEpoch"`
	GasUsed           GasCostSummary   `json:"gasUsed"`
	TransactionDigest Digest           `json:"transactionDigest"`
	Created           []OwnedObjectRef `json:"created,omitempty"`
	Mutated           []OwnedObjectRef `json:"mutated,omitempty"`
	Deleted           []ObjectRef      `json:"deleted,omitempty"`
	GasObject         *OwnedObjectRef  `json:"gasObject,omitempty"`
	Dependencies      []Digest         `json:"dependencies,omitempty"`
}

// ObjectChange describes a change to one object. Fields are set according
// to Type.
type ObjectChange struct {
	Type            string        `json:"type"`
	Sender          *Address      `json:"sender,omitempty"`
	Owner           *Owner        `json:"owner,omitempty"`
	Recipient       *Owner        `json:"recipient,omitempty"`
	ObjectType      string        `json:"objectType,omitempty"`
	ObjectID        *ObjectID     `json:"objectId,omitempty"`
	PackageID       *ObjectID     `json:"packageId,omitempty"`
	Version         cjson.Uint64  `json:"version"`
	PreviousVersion *cjson.Uint64 `json:"previousVersion,omitempty"`
	Digest          *Digest       `json:"digest,omitempty"`
	Modules         []string      `json:"modules,omitempty"`
}

// BalanceChange is the net change of one owner's balance of one coin type.
// Amount is a signed decimal string.
type BalanceChange struct {
	Owner    Owner  `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   string `json:"amount"`
}

// TransactionBlockResponse is the reply of transaction execution and
// lookup. A non-empty Errors marks a transaction that was processed but
// rejected; that is not a call failure.
type TransactionBlockResponse struct {
	Digest                  Digest              `json:"digest"`
	Transaction             *TransactionBlock   `json:"transaction,omitempty"`
	RawTransaction          string              `json:"rawTransaction,omitempty"`
	Effects                 *TransactionEffects `json:"effects,omitempty"`
	Events                  []json.RawMessage   `json:"events,omitempty"`
	ObjectChanges           []ObjectChange      `json:"objectChanges,omitempty"`
	BalanceChanges          []BalanceChange     `json:"balanceChanges,omitempty"`
	TimestampMs             *cjson.Uint64       `json:"timestampMs,omitempty"`
	ConfirmedLocalExecution *bool               `json:"confirmedLocalExecution,omitempty"`
	Checkpoint              *cjson.Uint64       `json:"checkpoint,omitempty"`
	Errors                  []string            `json:"errors,omitempty"`
}

// Succeeded reports whether the transaction executed without errors.
func (r *TransactionBlockResponse) Succeeded() bool {
	if len(r.Errors) > 0 {
		return false
	}
	return r.Effects != nil && r.Effects.Status.Status == StatusSuccess
}

// DryRunTransactionBlockResponse is the simulated outcome of a transaction.
type DryRunTransactionBlockResponse struct {
	Effects              *TransactionEffects   `json:"effects,omitempty"`
	Events               []json.RawMessage     `json:"events"`
	ObjectChanges        []ObjectChange        `json:"objectChanges"`
	BalanceChanges       []BalanceChange       `json:"balanceChanges"`
	Input                *TransactionBlockData `json:"input,omitempty"`
	ExecutionErrorSource *string               `json:"executionErrorSource,omitempty"`
	SuggestedGasPrice    *cjson.Uint64         `json:"suggestedGasPrice,omitempty"`
}

// ExecuteTransactionBlockParams are the arguments of executeTransactionBlock.
type ExecuteTransactionBlockParams struct {
	TransactionBlock TransactionPayload               `json:"transactionBlock"`
	Signature        Signatures                       `json:"signature"`
	Options          *TransactionBlockResponseOptions `json:"options,omitempty"`
	RequestType      string                           `json:"requestType,omitempty"`
}

// DryRunTransactionBlockParams are the arguments of dryRunTransactionBlock.
type DryRunTransactionBlockParams struct {
	TransactionBlock TransactionPayload `json:"transactionBlock"`
}

// GetTransactionBlockParams are the arguments of getTransactionBlock and
// waitForTransaction.
type GetTransactionBlockParams struct {
	Digest  Digest                           `json:"digest"`
	Options *TransactionBlockResponseOptions `json:"options,omitempty"`
}
