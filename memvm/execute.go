// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/types"
)

const (
	computationBaseUnits    = 1000
	computationCommandUnits = 100
	storageUnits            = 10

	messageVersion = "v1"
)

var (
	errObjectNotFound         = errors.New("object not found")
	errObjectDeleted          = errors.New("object was deleted")
	errNotOwner               = errors.New("object is not owned by the sender")
	errImmutable              = errors.New("object is immutable")
	errNoGasPayment           = errors.New("transaction has no gas payment")
	errDuplicateGas           = errors.New("gas payment lists a coin twice")
	errGasNotSui              = errors.New("gas payment must be SUI coins")
	errGasPriceTooLow         = errors.New("gas price is below the reference gas price")
	errInsufficientGasBalance = errors.New("gas balance is below the gas budget")
	errInsufficientGas        = errors.New("InsufficientGas")
)

// executor runs the commands of one transaction against a unit of work.
// Objects are copied into a working set; nothing reaches the state before
// write.
type executor struct {
	st     State
	tx     *TransactionData
	digest types.Digest
	now    uint64

	version      uint64
	gas          types.ObjectID
	hasGas       bool
	createdCount uint64

	before  map[types.ObjectID]*object
	working map[types.ObjectID]*object
	mutable map[types.ObjectID]bool
	created map[types.ObjectID]bool
	order   []types.ObjectID
	inputs  []types.ObjectID

	moveCalls []*MoveCall
}

// outcome is the result of a processed transaction.
type outcome struct {
	effects        *types.TransactionEffects
	objectChanges  []types.ObjectChange
	balanceChanges []types.BalanceChange
	keys           []indexKey
}

func newExecutor(st State, tx *TransactionData, digest types.Digest, now uint64) *executor {
	return &executor{
		st:      st,
		tx:      tx,
		digest:  digest,
		now:     now,
		before:  make(map[types.ObjectID]*object),
		working: make(map[types.ObjectID]*object),
		mutable: make(map[types.ObjectID]bool),
		created: make(map[types.ObjectID]bool),
	}
}

// run executes the transaction and writes its effects. An error means the
// transaction could not be processed at all; command failures are reported
// in the effects status. Backend submitted transactions ([system]) carry no
// gas.
func (e *executor) run(system bool, referenceGasPrice uint64) (*outcome, error) {
	version, err := e.preload()
	if err != nil {
		return nil, err
	}
	e.version = version

	if !system {
		if err := e.prepareGas(referenceGasPrice); err != nil {
			return nil, err
		}
	}
	saved := e.save()

	var (
		failure     error
		computation uint64
		storage     uint64
		rebate      uint64
	)
	if !system {
		computation = e.tx.GasPrice * (computationBaseUnits + computationCommandUnits*uint64(len(e.tx.Commands)))
		if computation > e.tx.GasBudget {
			failure = errInsufficientGas
		}
	}
	if failure == nil {
		for i, cmd := range e.tx.Commands {
			if err := cmd.execute(e); err != nil {
				failure = fmt.Errorf("command %d (%s): %w", i, cmd.CommandName(), err)
				break
			}
		}
	}
	if failure == nil && !system {
		storage, rebate = e.storageCost()
		if computation+storage > e.tx.GasBudget+rebate {
			failure = errInsufficientGas
		}
	}
	if failure != nil {
		e.restore(saved)
		storage, rebate = 0, 0
	}

	gasUsed := types.GasCostSummary{
		ComputationCost: cjson.Uint64(computation),
		StorageCost:     cjson.Uint64(storage),
		StorageRebate:   cjson.Uint64(rebate),
	}
	if !system {
		charge := gasUsed.Total()
		if charge > e.tx.GasBudget {
			charge = e.tx.GasBudget
		}
		e.working[e.gas].Balance -= charge
	}
	return e.write(failure, gasUsed)
}

// preload loads every declared input and returns the version of the
// objects written by the transaction: one more than the highest input
// version.
func (e *executor) preload() (uint64, error) {
	declared := append([]types.ObjectID{}, e.tx.GasPayment...)
	for _, cmd := range e.tx.Commands {
		declared = append(declared, cmd.inputs()...)
	}

	var maxVersion uint64
	seen := make(map[types.ObjectID]bool, len(declared))
	for _, id := range declared {
		if seen[id] {
			continue
		}
		seen[id] = true
		obj, err := e.get(id)
		if err != nil {
			return 0, fmt.Errorf("couldn't load input object: %w", err)
		}
		e.inputs = append(e.inputs, id)
		if obj.Version > maxVersion {
			maxVersion = obj.Version
		}
	}
	return maxVersion + 1, nil
}

// prepareGas validates the gas payment and merges every gas coin into the
// first one.
func (e *executor) prepareGas(referenceGasPrice uint64) error {
	if len(e.tx.GasPayment) == 0 {
		return errNoGasPayment
	}
	if e.tx.GasPrice < referenceGasPrice {
		return fmt.Errorf("%w: %d < %d", errGasPriceTooLow, e.tx.GasPrice, referenceGasPrice)
	}

	var total uint64
	seen := make(map[types.ObjectID]bool, len(e.tx.GasPayment))
	for _, id := range e.tx.GasPayment {
		if seen[id] {
			return fmt.Errorf("%w: %s", errDuplicateGas, id)
		}
		seen[id] = true
		coin := e.working[id]
		if !coin.isSui() {
			return fmt.Errorf("%w: %s is %s", errGasNotSui, id, coin.Type)
		}
		if !coin.ownedBy(e.tx.Sender) {
			return fmt.Errorf("%w: gas coin %s", errNotOwner, id)
		}
		total += coin.Balance
	}
	if total < e.tx.GasBudget {
		return fmt.Errorf("%w: %d < %d", errInsufficientGasBalance, total, e.tx.GasBudget)
	}

	e.gas = e.tx.GasPayment[0]
	e.hasGas = true
	gas := e.working[e.gas]
	e.mutable[e.gas] = true
	for _, id := range e.tx.GasPayment[1:] {
		coin := e.working[id]
		gas.Balance += coin.Balance
		coin.Balance = 0
		e.remove(coin)
	}
	return nil
}

// get returns the working copy of an object, loading it on first use.
func (e *executor) get(id types.ObjectID) (*object, error) {
	if obj, ok := e.working[id]; ok {
		if obj.Deleted {
			return nil, fmt.Errorf("%w: %s", errObjectDeleted, id)
		}
		return obj, nil
	}
	obj, err := e.st.GetObject(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", errObjectNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if obj.Deleted {
		return nil, fmt.Errorf("%w: %s", errObjectDeleted, id)
	}
	e.before[id] = obj.clone()
	e.working[id] = obj
	e.order = append(e.order, id)
	return obj, nil
}

// mut returns an object the sender may modify and marks it written.
// Child objects are only reachable through their parent.
func (e *executor) mut(id types.ObjectID) (*object, error) {
	obj, err := e.get(id)
	if err != nil {
		return nil, err
	}
	switch types.OwnerKind(obj.OwnerKind) {
	case types.Immutable:
		return nil, fmt.Errorf("%w: %s", errImmutable, id)
	case types.ObjectOwner:
		return nil, fmt.Errorf("%w: %s is a child object", errNotOwner, id)
	case types.AddressOwner:
		if obj.Owner != e.tx.Sender {
			return nil, fmt.Errorf("%w: %s", errNotOwner, id)
		}
	}
	e.mutable[id] = true
	return obj, nil
}

// create adds a new object to the working set, deriving its id unless one
// is set.
func (e *executor) create(obj *object) {
	if obj.ID.IsZero() {
		obj.ID = e.newID()
	}
	e.working[obj.ID] = obj
	e.created[obj.ID] = true
	e.mutable[obj.ID] = true
	e.order = append(e.order, obj.ID)
}

func (e *executor) remove(obj *object) {
	obj.Deleted = true
	e.mutable[obj.ID] = true
}

// newID derives the id of the next object created by the transaction.
func (e *executor) newID() types.ObjectID {
	id := ids.ID(e.digest).Prefix(e.createdCount)
	e.createdCount++
	return types.ObjectID(id)
}

// spendable is the balance commands may move out of a coin. The gas coin
// keeps the budget in reserve.
func (e *executor) spendable(coin *object) uint64 {
	if !e.hasGas || coin.ID != e.gas {
		return coin.Balance
	}
	if coin.Balance < e.tx.GasBudget {
		return 0
	}
	return coin.Balance - e.tx.GasBudget
}

type savedState struct {
	working      map[types.ObjectID]*object
	mutable      map[types.ObjectID]bool
	created      map[types.ObjectID]bool
	order        int
	createdCount uint64
	moveCalls    int
}

func (e *executor) save() *savedState {
	s := &savedState{
		working:      make(map[types.ObjectID]*object, len(e.working)),
		mutable:      make(map[types.ObjectID]bool, len(e.mutable)),
		created:      make(map[types.ObjectID]bool, len(e.created)),
		order:        len(e.order),
		createdCount: e.createdCount,
		moveCalls:    len(e.moveCalls),
	}
	for id, obj := range e.working {
		s.working[id] = obj.clone()
	}
	for id := range e.mutable {
		s.mutable[id] = true
	}
	for id := range e.created {
		s.created[id] = true
	}
	return s
}

// restore rolls the working set back to [s]. Objects first loaded after
// the save are dropped from the working set.
func (e *executor) restore(s *savedState) {
	e.working = s.working
	e.mutable = s.mutable
	e.created = s.created
	e.order = e.order[:s.order]
	e.createdCount = s.createdCount
	e.moveCalls = e.moveCalls[:s.moveCalls]
}

// storageCost prices the objects the transaction writes and refunds the
// ones it deletes.
func (e *executor) storageCost() (uint64, uint64) {
	var written, deleted uint64
	for id := range e.mutable {
		obj := e.working[id]
		switch {
		case obj.Deleted && e.created[id]:
		case obj.Deleted:
			deleted++
		default:
			written++
		}
	}
	unit := e.tx.GasPrice * storageUnits
	return written * unit, deleted * unit
}

// write stamps every written object with the transaction version, stores it
// and reports the effects.
func (e *executor) write(failure error, gasUsed types.GasCostSummary) (*outcome, error) {
	sender := e.tx.Sender
	effects := &types.TransactionEffects{
		MessageVersion:    messageVersion,
		Status:            types.ExecutionStatus{Status: types.StatusSuccess},
		GasUsed:           gasUsed,
		TransactionDigest: e.digest,
	}
	if failure != nil {
		effects.Status = types.ExecutionStatus{Status: types.StatusFailure, Error: failure.Error()}
	}

	var (
		changes    []types.ObjectChange
		recipients []types.Address
		balances   = newBalanceTracker()
		changed    []types.ObjectID
	)
	for _, id := range e.order {
		if !e.mutable[id] {
			continue
		}
		obj := e.working[id]
		created := e.created[id]
		if created && obj.Deleted {
			continue
		}
		before := e.before[id]

		if obj.Deleted {
			obj.Version = e.version
			obj.Digest = types.Digest{}
			obj.PreviousTransaction = e.digest
		} else if err := obj.seal(e.version, e.digest); err != nil {
			return nil, err
		}
		if err := e.st.PutObject(obj); err != nil {
			return nil, fmt.Errorf("couldn't write object %s: %w", id, err)
		}
		changed = append(changed, id)

		if !created {
			balances.add(before, false)
		}
		if !obj.Deleted {
			balances.add(obj, true)
		}

		objID := obj.ID
		version := cjson.Uint64(obj.Version)
		digest := obj.Digest
		owner := obj.owner()
		ownedRef := types.OwnedObjectRef{Owner: owner, Reference: obj.ref()}
		switch {
		case obj.Deleted:
			effects.Deleted = append(effects.Deleted, obj.ref())
			changes = append(changes, types.ObjectChange{
				Type:       types.ChangeDeleted,
				Sender:     &sender,
				ObjectType: before.Type,
				ObjectID:   &objID,
				Version:    version,
			})
		case created:
			effects.Created = append(effects.Created, ownedRef)
			if obj.isPackage() {
				changes = append(changes, types.ObjectChange{
					Type:      types.ChangePublished,
					PackageID: &objID,
					Version:   version,
					Digest:    &digest,
				})
				break
			}
			changes = append(changes, types.ObjectChange{
				Type:       types.ChangeCreated,
				Sender:     &sender,
				Owner:      &owner,
				ObjectType: obj.Type,
				ObjectID:   &objID,
				Version:    version,
				Digest:     &digest,
			})
			if owner.Kind == types.AddressOwner {
				recipients = append(recipients, owner.Address)
			}
		default:
			effects.Mutated = append(effects.Mutated, ownedRef)
			if before.owner() != owner {
				changes = append(changes, types.ObjectChange{
					Type:       types.ChangeTransferred,
					Sender:     &sender,
					Recipient:  &owner,
					ObjectType: obj.Type,
					ObjectID:   &objID,
					Version:    version,
					Digest:     &digest,
				})
				if owner.Kind == types.AddressOwner {
					recipients = append(recipients, owner.Address)
				}
				break
			}
			previous := cjson.Uint64(before.Version)
			changes = append(changes, types.ObjectChange{
				Type:            types.ChangeMutated,
				Sender:          &sender,
				Owner:           &owner,
				ObjectType:      obj.Type,
				ObjectID:        &objID,
				Version:         version,
				PreviousVersion: &previous,
				Digest:          &digest,
			})
		}
		if e.hasGas && id == e.gas {
			gasRef := ownedRef
			effects.GasObject = &gasRef
		}
	}
	effects.Dependencies = e.dependencies()

	return &outcome{
		effects:        effects,
		objectChanges:  changes,
		balanceChanges: balances.changes(),
		keys:           e.indexKeys(changed, recipients),
	}, nil
}

// dependencies lists the transactions that last wrote the inputs.
func (e *executor) dependencies() []types.Digest {
	var (
		out  []types.Digest
		seen = make(map[types.Digest]bool)
	)
	for _, id := range e.inputs {
		prev := e.before[id].PreviousTransaction
		if prev.IsZero() || prev == e.digest || seen[prev] {
			continue
		}
		seen[prev] = true
		out = append(out, prev)
	}
	return out
}

// indexKeys lists the filter index entries of the transaction.
func (e *executor) indexKeys(changed []types.ObjectID, recipients []types.Address) []indexKey {
	var (
		keys []indexKey
		seen = make(map[indexKey]bool)
	)
	add := func(kind byte, key [types.IDLen]byte) {
		k := indexKey{kind: kind, key: key}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	add(fromAddressIndex, e.tx.Sender)
	add(fromOrToAddressIndex, e.tx.Sender)
	add(transactionKindIndex, hashKey(types.KindProgrammableTransaction))
	for _, id := range e.inputs {
		add(inputObjectIndex, id)
		add(affectedObjectIndex, id)
	}
	for _, id := range changed {
		add(changedObjectIndex, id)
		add(affectedObjectIndex, id)
	}
	for _, addr := range recipients {
		add(toAddressIndex, addr)
		add(fromOrToAddressIndex, addr)
	}
	for _, call := range e.moveCalls {
		for _, key := range moveFunctionKeys(call.Package, call.Module, call.Function) {
			add(moveFunctionIndex, key)
		}
	}
	return keys
}
