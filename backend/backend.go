// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package backend defines the execution backend consumed by the sandbox.
//
// A Backend owns all ledger state and exposes it through capability groups.
// Most operations answer with JSON text in the Sui JSON-RPC shapes of the
// types package; decoding that text is the caller's job.
package backend

// Backend is one live session of an execution backend. Capability group
// accessors return views of the same session state on every call.
type Backend interface {
	Coin() CoinAPI
	Transaction() TransactionAPI
	Object() ObjectAPI
	Clock() ClockAPI
	Behavior() BehaviorAPI
	Package() PackageAPI
	State() StateAPI
	Storage() StorageAPI
}

// Factory creates a fresh backend session at genesis state.
type Factory func() (Backend, error)

// CoinAPI answers coin and balance queries. An empty coin type means the
// native coin.
type CoinAPI interface {
	GetBalance(owner, coinType string) (uint64, error)
	// GetCoins returns a JSON array of coins.
	GetCoins(owner, coinType string) (string, error)
	// MintSui creates a native coin of [amount] owned by [owner] and returns
	// its object id.
	MintSui(owner string, amount uint64) (string, error)
}

// TransactionAPI executes and looks up transactions. Transactions are
// base64 text.
type TransactionAPI interface {
	// Execute returns a transaction response. A rejected transaction is
	// reported in the response's errors, not as an error.
	Execute(tx string, signatures []string) (string, error)
	DryRun(tx string) (string, error)
	// GetResponse returns "null" for unknown digests.
	GetResponse(digest string) (string, error)
	// QueryBlocks takes query parameters as JSON and returns a page.
	QueryBlocks(query string) (string, error)
}

// ObjectAPI looks up objects, their history and their dynamic fields.
type ObjectAPI interface {
	Get(id string) (string, error)
	GetPast(id string, version uint64) (string, error)
	// GetDynamicFields takes page parameters as JSON.
	GetDynamicFields(params string) (string, error)
	// GetDynamicFieldObject takes the field name as JSON.
	GetDynamicFieldObject(parentID, name string) (string, error)
}

// ClockAPI controls the simulated clock. The clock never moves backwards.
type ClockAPI interface {
	GetTimeMs() (uint64, error)
	AdvanceByMillis(ms uint64) error
	SetTimeMs(ms uint64) error
}

// BehaviorAPI injects test behavior into transaction processing.
type BehaviorAPI interface {
	// SetRejectNextTransaction arms a one-shot rejection consumed by the next
	// executed transaction.
	SetRejectNextTransaction(reason string) error
	EnableSignatureChecks() error
	DisableSignatureChecks() error
	BumpCheckpoint() error
}

// PackageAPI publishes packages and introspects Move functions.
type PackageAPI interface {
	// Publish takes base64 modules and hex dependency ids and returns a
	// transaction response.
	Publish(modules []string, dependencies []string, sender string) (string, error)
	GetNormalizedMoveFunction(pkg, module, function string) (string, error)
}

// StateAPI reports chain-wide values.
type StateAPI interface {
	GetReferenceGasPrice() (uint64, error)
	GetLatestCheckpoint() (uint64, error)
}

// StorageAPI snapshots and restores the whole ledger.
type StorageAPI interface {
	TakeSnapshot() ([]byte, error)
	RestoreFromSnapshot(snapshot []byte) error
}
