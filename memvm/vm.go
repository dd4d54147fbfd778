// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/backend"
	"github.com/ava-labs/movesandbox/keys"
	"github.com/ava-labs/movesandbox/types"
)

const (
	Name = "memvm"

	// DefaultGasPrice is the reference gas price of a fresh ledger.
	DefaultGasPrice = 10

	genesisVersion = 1
)

var (
	errInvalidSignature = errors.New("invalid transaction signature")

	_ backend.Backend = &VM{}
)

// Config tunes a fresh ledger.
type Config struct {
	// GasPrice is the reference gas price. Transactions must offer at least
	// this price.
	GasPrice uint64 `json:"gasPrice"`
	// SignatureChecks enables signature verification at start.
	SignatureChecks bool `json:"signatureChecks"`
	// InitialTimeMs is the clock value at genesis.
	InitialTimeMs uint64 `json:"initialTimeMs"`
}

// DefaultConfig returns the configuration of a default ledger.
func DefaultConfig() Config {
	return Config{
		GasPrice:        DefaultGasPrice,
		SignatureChecks: true,
	}
}

// VM is an in-memory execution backend. It models objects, coins, versions,
// transactions and their indices over a versioned key-value store. All
// access is serialized.
type VM struct {
	lock sync.Mutex

	config   Config
	db       database.Database
	objCache cache.Cacher

	// rejectReason is the armed one-shot rejection, if any.
	rejectReason    *string
	signatureChecks bool
}

// New returns a VM at genesis state.
func New(config Config) (*VM, error) {
	vm := &VM{
		config:          config,
		db:              memdb.New(),
		objCache:        &cache.LRU{Size: objectCacheSize},
		signatureChecks: config.SignatureChecks,
	}
	if err := vm.initialize(); err != nil {
		return nil, err
	}
	return vm, nil
}

// initialize writes the genesis objects if the database is empty.
func (vm *VM) initialize() error {
	st := vm.newState()
	defer st.Abort()

	initialized, err := st.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}
	log.Info("initializing ledger", "gasPrice", vm.config.GasPrice, "timeMs", vm.config.InitialTimeMs)

	for _, obj := range genesisObjects(vm.config.GasPrice) {
		if err := obj.seal(genesisVersion, types.EmptyDigest); err != nil {
			return err
		}
		if err := st.PutObject(obj); err != nil {
			return fmt.Errorf("error while saving genesis object %s: %w", obj.ID, err)
		}
	}
	if err := st.SetTimeMs(vm.config.InitialTimeMs); err != nil {
		return err
	}
	if err := st.SetInitialized(); err != nil {
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}
	return st.Commit()
}

func genesisObjects(gasPrice uint64) []*object {
	stdlib := &object{ID: types.StdlibPackageID, Type: packageType}
	stdlib.setOwner(types.Owner{Kind: types.Immutable})

	framework := &object{ID: types.FrameworkPackageID, Type: packageType}
	framework.setOwner(types.Owner{Kind: types.Immutable})

	systemFields, _ := json.Marshal(map[string]interface{}{
		"epoch":               cjson.Uint64(0),
		"reference_gas_price": cjson.Uint64(gasPrice),
	})
	system := &object{ID: types.SystemStateObjectID, Type: systemStateType, Fields: systemFields}
	system.setOwner(types.NewSharedOwner(genesisVersion))

	clock := &object{ID: types.ClockObjectID, Type: clockType}
	clock.setOwner(types.NewSharedOwner(genesisVersion))

	return []*object{stdlib, framework, system, clock}
}

func (vm *VM) newState() State { return NewState(vm.db, vm.objCache) }

func (vm *VM) Coin() backend.CoinAPI               { return coinAPI{vm} }
func (vm *VM) Transaction() backend.TransactionAPI { return transactionAPI{vm} }
func (vm *VM) Object() backend.ObjectAPI           { return objectAPI{vm} }
func (vm *VM) Clock() backend.ClockAPI             { return clockAPI{vm} }
func (vm *VM) Behavior() backend.BehaviorAPI       { return behaviorAPI{vm} }
func (vm *VM) Package() backend.PackageAPI         { return packageAPI{vm} }
func (vm *VM) State() backend.StateAPI             { return stateAPI{vm} }
func (vm *VM) Storage() backend.StorageAPI         { return storageAPI{vm} }

// execute processes a signed transaction.
func (vm *VM) execute(encoded string, signatures []string) (*types.TransactionBlockResponse, error) {
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode transaction bytes: %w", err)
	}
	tx, err := DecodeTransaction(txBytes)
	if err != nil {
		return nil, err
	}
	if vm.signatureChecks {
		if err := keys.VerifySender(txBytes, signatures, tx.Sender); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidSignature, err)
		}
	}
	return vm.process(txBytes, tx, signatures, false)
}

// process records and executes a decoded transaction. An already executed
// digest returns its recorded response. An armed rejection is consumed
// here, before execution.
func (vm *VM) process(txBytes []byte, tx *TransactionData, signatures []string, system bool) (*types.TransactionBlockResponse, error) {
	digest := TransactionDigest(txBytes)

	st := vm.newState()
	defer st.Abort()

	var seq uint64
	recorded, err := st.GetTransaction(digest)
	switch {
	case err == nil && recorded.Executed:
		resp := &types.TransactionBlockResponse{}
		if err := json.Unmarshal(recorded.Response, resp); err != nil {
			return nil, err
		}
		return resp, nil
	case err == nil:
		seq = recorded.Seq
	case errors.Is(err, database.ErrNotFound):
		if seq, err = st.NextTransactionSeq(); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	now, err := st.GetTimeMs()
	if err != nil {
		return nil, err
	}
	checkpoint, err := st.GetCheckpoint()
	if err != nil {
		return nil, err
	}
	input, err := inputData(st, tx)
	if err != nil {
		return nil, err
	}
	if signatures == nil {
		signatures = []string{}
	}
	timestamp := cjson.Uint64(now)
	checkpointSeq := cjson.Uint64(checkpoint)
	resp := &types.TransactionBlockResponse{
		Digest:         digest,
		Transaction:    &types.TransactionBlock{Data: *input, TxSignatures: signatures},
		RawTransaction: base64.StdEncoding.EncodeToString(txBytes),
		TimestampMs:    &timestamp,
		Checkpoint:     &checkpointSeq,
	}

	if vm.rejectReason != nil {
		reason := *vm.rejectReason
		vm.rejectReason = nil
		resp.Errors = []string{reason}
		log.Info("rejected transaction", "digest", digest, "reason", reason)
		if err := vm.record(st, digest, seq, false, resp, nil); err != nil {
			return nil, err
		}
		return resp, nil
	}

	out, err := newExecutor(st, tx, digest, now).run(system, vm.config.GasPrice)
	if err != nil {
		return nil, err
	}
	confirmed := true
	resp.Effects = out.effects
	resp.ObjectChanges = out.objectChanges
	resp.BalanceChanges = out.balanceChanges
	resp.ConfirmedLocalExecution = &confirmed
	log.Debug("executed transaction",
		"digest", digest,
		"status", out.effects.Status.Status,
		"gas", out.effects.GasUsed.Total(),
	)
	if err := vm.record(st, digest, seq, true, resp, out.keys); err != nil {
		return nil, err
	}
	return resp, nil
}

func (vm *VM) record(st State, digest types.Digest, seq uint64, executed bool, resp *types.TransactionBlockResponse, keys []indexKey) error {
	respBytes, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	tx := &transaction{Seq: seq, Executed: executed, Response: respBytes}
	if err := st.PutTransaction(digest, tx, keys); err != nil {
		return fmt.Errorf("couldn't record transaction %s: %w", digest, err)
	}
	return st.Commit()
}

// dryRun executes a transaction without committing it. Signatures are not
// checked and an armed rejection is left armed.
func (vm *VM) dryRun(encoded string) (*types.DryRunTransactionBlockResponse, error) {
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("couldn't decode transaction bytes: %w", err)
	}
	tx, err := DecodeTransaction(txBytes)
	if err != nil {
		return nil, err
	}

	st := vm.newState()
	defer st.Abort()

	now, err := st.GetTimeMs()
	if err != nil {
		return nil, err
	}
	input, err := inputData(st, tx)
	if err != nil {
		return nil, err
	}
	out, err := newExecutor(st, tx, TransactionDigest(txBytes), now).run(false, vm.config.GasPrice)
	if err != nil {
		return nil, err
	}
	return &types.DryRunTransactionBlockResponse{
		Effects:        out.effects,
		Events:         []json.RawMessage{},
		ObjectChanges:  out.objectChanges,
		BalanceChanges: out.balanceChanges,
		Input:          input,
	}, nil
}

// publish submits a package on behalf of [sender] without gas or
// signatures.
func (vm *VM) publish(modules [][]byte, dependencies []types.ObjectID, sender types.Address) (*types.TransactionBlockResponse, error) {
	st := vm.newState()
	nonce, err := st.NextNonce()
	if err != nil {
		st.Abort()
		return nil, err
	}
	if err := st.Commit(); err != nil {
		return nil, err
	}

	tx := &TransactionData{
		Sender:   sender,
		Nonce:    nonce,
		Commands: []Command{&Publish{Modules: modules, Dependencies: dependencies}},
	}
	txBytes, err := EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}
	return vm.process(txBytes, tx, nil, true)
}

// inputData renders the input of a transaction. Gas payment references are
// those of the coins before execution.
func inputData(st State, tx *TransactionData) (*types.TransactionBlockData, error) {
	commands, err := commandsJSON(tx)
	if err != nil {
		return nil, err
	}
	payment := make([]types.ObjectRef, 0, len(tx.GasPayment))
	for _, id := range tx.GasPayment {
		obj, err := st.GetObject(id)
		switch {
		case err == nil && !obj.Deleted:
			payment = append(payment, obj.ref())
		case err != nil && !errors.Is(err, database.ErrNotFound):
			return nil, err
		}
	}
	return &types.TransactionBlockData{
		MessageVersion: messageVersion,
		Transaction:    commands,
		Sender:         tx.Sender,
		GasData: types.GasData{
			Payment: payment,
			Owner:   tx.Sender,
			Price:   cjson.Uint64(tx.GasPrice),
			Budget:  cjson.Uint64(tx.GasBudget),
		},
	}, nil
}
