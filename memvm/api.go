// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/movesandbox/backend"
	"github.com/ava-labs/movesandbox/types"
)

var (
	errClockBackwards = errors.New("clock cannot move backwards")
	errClockOverflow  = errors.New("clock overflow")

	_ backend.CoinAPI        = coinAPI{}
	_ backend.TransactionAPI = transactionAPI{}
	_ backend.ObjectAPI      = objectAPI{}
	_ backend.ClockAPI       = clockAPI{}
	_ backend.BehaviorAPI    = behaviorAPI{}
	_ backend.PackageAPI     = packageAPI{}
	_ backend.StateAPI       = stateAPI{}
	_ backend.StorageAPI     = storageAPI{}
)

type (
	coinAPI        struct{ vm *VM }
	transactionAPI struct{ vm *VM }
	objectAPI      struct{ vm *VM }
	clockAPI       struct{ vm *VM }
	behaviorAPI    struct{ vm *VM }
	packageAPI     struct{ vm *VM }
	stateAPI       struct{ vm *VM }
	storageAPI     struct{ vm *VM }
)

func marshalString(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (a coinAPI) GetBalance(owner, coinType string) (uint64, error) {
	coins, err := a.coins(owner, coinType)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, coin := range coins {
		total += uint64(coin.Balance)
	}
	return total, nil
}

func (a coinAPI) GetCoins(owner, coinType string) (string, error) {
	coins, err := a.coins(owner, coinType)
	if err != nil {
		return "", err
	}
	return marshalString(coins)
}

func (a coinAPI) coins(owner, coinType string) ([]types.Coin, error) {
	addr, err := types.ParseAddress(owner)
	if err != nil {
		return nil, err
	}
	coinType = types.CoinTypeOrDefault(coinType)

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	owned, err := st.OwnedObjects(addr)
	if err != nil {
		return nil, err
	}
	coins := []types.Coin{}
	for _, id := range owned {
		obj, err := st.GetObject(id)
		if err != nil {
			return nil, err
		}
		if ct, ok := obj.coinType(); ok && ct == coinType {
			coins = append(coins, obj.coin(coinType))
		}
	}
	return coins, nil
}

func (a coinAPI) MintSui(owner string, amount uint64) (string, error) {
	addr, err := types.ParseAddress(owner)
	if err != nil {
		return "", err
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	nonce, err := st.NextNonce()
	if err != nil {
		return "", err
	}
	coin := &object{
		ID:      types.ObjectID(mintSeed.Prefix(nonce)),
		Type:    types.CoinStructType(types.SuiCoinType),
		Balance: amount,
	}
	coin.setOwner(types.NewAddressOwner(addr))
	if err := coin.seal(genesisVersion, types.EmptyDigest); err != nil {
		return "", err
	}
	if err := st.PutObject(coin); err != nil {
		return "", err
	}
	if err := st.Commit(); err != nil {
		return "", err
	}
	return coin.ID.String(), nil
}

func (a transactionAPI) Execute(tx string, signatures []string) (string, error) {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	resp, err := a.vm.execute(tx, signatures)
	if err != nil {
		return "", err
	}
	return marshalString(resp)
}

func (a transactionAPI) DryRun(tx string) (string, error) {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	resp, err := a.vm.dryRun(tx)
	if err != nil {
		return "", err
	}
	return marshalString(resp)
}

func (a transactionAPI) GetResponse(digest string) (string, error) {
	d, err := types.ParseDigest(digest)
	if err != nil {
		return "", err
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	tx, err := st.GetTransaction(d)
	if errors.Is(err, database.ErrNotFound) {
		return "null", nil
	}
	if err != nil {
		return "", err
	}
	return string(tx.Response), nil
}

func (a transactionAPI) QueryBlocks(query string) (string, error) {
	params := types.QueryTransactionBlocksParams{}
	if err := json.Unmarshal([]byte(query), &params); err != nil {
		return "", fmt.Errorf("couldn't parse query: %w", err)
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	page, err := a.vm.queryTransactions(&params)
	if err != nil {
		return "", err
	}
	return marshalString(page)
}

func (a objectAPI) Get(id string) (string, error) {
	objID, err := types.ParseObjectID(id)
	if err != nil {
		return "", err
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	resp, err := a.vm.getObject(objID)
	if err != nil {
		return "", err
	}
	return marshalString(resp)
}

func (a objectAPI) GetPast(id string, version uint64) (string, error) {
	objID, err := types.ParseObjectID(id)
	if err != nil {
		return "", err
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	read, err := a.vm.getPastObject(objID, version)
	if err != nil {
		return "", err
	}
	return marshalString(read)
}

func (a objectAPI) GetDynamicFields(params string) (string, error) {
	p := types.GetDynamicFieldsParams{}
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		return "", fmt.Errorf("couldn't parse dynamic field query: %w", err)
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	page, err := a.vm.dynamicFields(&p)
	if err != nil {
		return "", err
	}
	return marshalString(page)
}

func (a objectAPI) GetDynamicFieldObject(parentID, name string) (string, error) {
	parent, err := types.ParseObjectID(parentID)
	if err != nil {
		return "", err
	}
	fieldName := types.DynamicFieldName{}
	if err := json.Unmarshal([]byte(name), &fieldName); err != nil {
		return "", fmt.Errorf("couldn't parse dynamic field name: %w", err)
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	resp, err := a.vm.dynamicFieldObject(parent, fieldName)
	if err != nil {
		return "", err
	}
	return marshalString(resp)
}

func (a clockAPI) GetTimeMs() (uint64, error) {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()
	return st.GetTimeMs()
}

func (a clockAPI) AdvanceByMillis(ms uint64) error {
	return a.update(func(now uint64) (uint64, error) {
		if now+ms < now {
			return 0, errClockOverflow
		}
		return now + ms, nil
	})
}

func (a clockAPI) SetTimeMs(ms uint64) error {
	return a.update(func(now uint64) (uint64, error) {
		if ms < now {
			return 0, fmt.Errorf("%w: %d < %d", errClockBackwards, ms, now)
		}
		return ms, nil
	})
}

func (a clockAPI) update(next func(now uint64) (uint64, error)) error {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	now, err := st.GetTimeMs()
	if err != nil {
		return err
	}
	ms, err := next(now)
	if err != nil {
		return err
	}
	if err := st.SetTimeMs(ms); err != nil {
		return err
	}
	return st.Commit()
}

func (a behaviorAPI) SetRejectNextTransaction(reason string) error {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	a.vm.rejectReason = &reason
	return nil
}

func (a behaviorAPI) EnableSignatureChecks() error  { return a.setSignatureChecks(true) }
func (a behaviorAPI) DisableSignatureChecks() error { return a.setSignatureChecks(false) }

func (a behaviorAPI) setSignatureChecks(enabled bool) error {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	a.vm.signatureChecks = enabled
	return nil
}

func (a behaviorAPI) BumpCheckpoint() error {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	checkpoint, err := st.GetCheckpoint()
	if err != nil {
		return err
	}
	if err := st.SetCheckpoint(checkpoint + 1); err != nil {
		return err
	}
	return st.Commit()
}

func (a packageAPI) Publish(modules []string, dependencies []string, sender string) (string, error) {
	addr, err := types.ParseAddress(sender)
	if err != nil {
		return "", err
	}
	moduleBytes := make([][]byte, len(modules))
	for i, m := range modules {
		if moduleBytes[i], err = base64.StdEncoding.DecodeString(m); err != nil {
			return "", fmt.Errorf("couldn't decode module %d: %w", i, err)
		}
	}
	deps := make([]types.ObjectID, len(dependencies))
	for i, d := range dependencies {
		if deps[i], err = types.ParseObjectID(d); err != nil {
			return "", err
		}
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	resp, err := a.vm.publish(moduleBytes, deps, addr)
	if err != nil {
		return "", err
	}
	return marshalString(resp)
}

func (a packageAPI) GetNormalizedMoveFunction(pkg, module, function string) (string, error) {
	pkgID, err := types.ParseObjectID(pkg)
	if err != nil {
		return "", err
	}

	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()

	obj, err := st.GetObject(pkgID)
	switch {
	case errors.Is(err, database.ErrNotFound) || (err == nil && !obj.isPackage()):
		return "", fmt.Errorf("%w: %s", errPackageNotFound, pkgID)
	case err != nil:
		return "", err
	}
	fn, ok := lookupFunction(pkgID, module, function)
	if !ok {
		return "", fmt.Errorf("%w: %s", errFunctionNotFound, functionKey(pkgID, module, function))
	}
	return fn, nil
}

func (a stateAPI) GetReferenceGasPrice() (uint64, error) {
	return a.vm.config.GasPrice, nil
}

func (a stateAPI) GetLatestCheckpoint() (uint64, error) {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	st := a.vm.newState()
	defer st.Abort()
	return st.GetCheckpoint()
}

func (a storageAPI) TakeSnapshot() ([]byte, error) {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	return a.vm.snapshot()
}

func (a storageAPI) RestoreFromSnapshot(snapshot []byte) error {
	a.vm.lock.Lock()
	defer a.vm.lock.Unlock()

	return a.vm.restore(snapshot)
}
