// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/movesandbox/types"
)

var (
	errNotCoin             = errors.New("object is not a coin")
	errCoinTypeMismatch    = errors.New("coin types differ")
	errInsufficientBalance = errors.New("insufficient coin balance")
	errGasCoin             = errors.New("the gas coin cannot be used here")
	errSelfMerge           = errors.New("cannot merge a coin into itself")
	errCoinFields          = errors.New("coin balances change only through coin commands")
	errNonEmptyCoin        = errors.New("cannot delete a coin with a balance")
	errHasChildren         = errors.New("object still has dynamic fields")
	errEmptyType           = errors.New("object type is empty")
	errFieldExists         = errors.New("dynamic field already exists")
	errFieldNotFound       = errors.New("dynamic field not found")
	errPackageNotFound     = errors.New("package not found")
	errFunctionNotFound    = errors.New("function not found")
	errNoModules           = errors.New("package has no modules")
)

func (c *SplitCoin) inputs() []types.ObjectID { return []types.ObjectID{c.Coin} }

func (c *SplitCoin) execute(e *executor) error {
	coin, coinType, err := e.coin(c.Coin)
	if err != nil {
		return err
	}
	var total uint64
	for _, amount := range c.Amounts {
		total += amount
		if total < amount {
			return errInsufficientBalance
		}
	}
	if available := e.spendable(coin); total > available {
		return fmt.Errorf("%w: %s can spend %d, splitting %d", errInsufficientBalance, c.Coin, available, total)
	}
	coin.Balance -= total

	recipient := c.Recipient
	if recipient.IsZero() {
		recipient = e.tx.Sender
	}
	for _, amount := range c.Amounts {
		split := &object{Type: types.CoinStructType(coinType), Balance: amount}
		split.setOwner(types.NewAddressOwner(recipient))
		e.create(split)
	}
	return nil
}

func (c *MergeCoins) inputs() []types.ObjectID {
	return append([]types.ObjectID{c.Destination}, c.Sources...)
}

func (c *MergeCoins) execute(e *executor) error {
	dst, dstType, err := e.coin(c.Destination)
	if err != nil {
		return err
	}
	for _, id := range c.Sources {
		if id == c.Destination {
			return fmt.Errorf("%w: %s", errSelfMerge, id)
		}
		if e.hasGas && id == e.gas {
			return fmt.Errorf("%w: merging %s away", errGasCoin, id)
		}
		src, srcType, err := e.coin(id)
		if err != nil {
			return err
		}
		if srcType != dstType {
			return fmt.Errorf("%w: %s and %s", errCoinTypeMismatch, dstType, srcType)
		}
		dst.Balance += src.Balance
		src.Balance = 0
		e.remove(src)
	}
	return nil
}

func (c *TransferObjects) inputs() []types.ObjectID { return c.Objects }

func (c *TransferObjects) execute(e *executor) error {
	for _, id := range c.Objects {
		obj, err := e.mut(id)
		if err != nil {
			return err
		}
		obj.setOwner(types.NewAddressOwner(c.Recipient))
	}
	return nil
}

func (*CreateObject) inputs() []types.ObjectID { return nil }

func (c *CreateObject) execute(e *executor) error {
	if c.Type == "" {
		return errEmptyType
	}
	obj := &object{
		Type:   types.NormalizeTypeTag(c.Type),
		Fields: compactJSON(c.Fields),
	}
	if c.Shared {
		obj.setOwner(types.NewSharedOwner(e.version))
	} else {
		obj.setOwner(types.NewAddressOwner(e.tx.Sender))
	}
	e.create(obj)
	return nil
}

func (c *MutateObject) inputs() []types.ObjectID { return []types.ObjectID{c.Object} }

func (c *MutateObject) execute(e *executor) error {
	obj, err := e.mut(c.Object)
	if err != nil {
		return err
	}
	if obj.isCoin() {
		return fmt.Errorf("%w: %s", errCoinFields, c.Object)
	}
	obj.Fields = compactJSON(c.Fields)
	return nil
}

func (c *DeleteObject) inputs() []types.ObjectID { return []types.ObjectID{c.Object} }

func (c *DeleteObject) execute(e *executor) error {
	obj, err := e.mut(c.Object)
	if err != nil {
		return err
	}
	switch {
	case e.hasGas && c.Object == e.gas:
		return fmt.Errorf("%w: deleting %s", errGasCoin, c.Object)
	case obj.isCoin() && obj.Balance > 0:
		return fmt.Errorf("%w: %s holds %d", errNonEmptyCoin, c.Object, obj.Balance)
	}
	children, err := e.children(c.Object)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %s", errHasChildren, c.Object)
	}
	e.remove(obj)
	return nil
}

func (c *AddDynamicField) inputs() []types.ObjectID { return []types.ObjectID{c.Parent} }

func (c *AddDynamicField) execute(e *executor) error {
	if _, err := e.mut(c.Parent); err != nil {
		return err
	}
	nameType := types.NormalizeTypeTag(c.NameType)
	name := compactJSON(c.Name)
	id := dynamicFieldID(c.Parent, nameType, name)
	if _, err := e.field(c.Parent, id); err == nil {
		return fmt.Errorf("%w: %s", errFieldExists, id)
	} else if !errors.Is(err, errFieldNotFound) {
		return err
	}

	field := &object{
		ID:       id,
		Type:     dynamicFieldType(nameType, types.NormalizeTypeTag(c.ValueType)),
		Fields:   compactJSON(c.Value),
		NameType: nameType,
		Name:     name,
	}
	field.setOwner(types.NewObjectOwner(c.Parent))
	e.create(field)
	return nil
}

func (c *RemoveDynamicField) inputs() []types.ObjectID { return []types.ObjectID{c.Parent} }

func (c *RemoveDynamicField) execute(e *executor) error {
	if _, err := e.mut(c.Parent); err != nil {
		return err
	}
	id := dynamicFieldID(c.Parent, types.NormalizeTypeTag(c.NameType), compactJSON(c.Name))
	field, err := e.field(c.Parent, id)
	if err != nil {
		return err
	}
	e.remove(field)
	return nil
}

func (c *MoveCall) inputs() []types.ObjectID {
	return append([]types.ObjectID{c.Package}, c.Arguments...)
}

func (c *MoveCall) execute(e *executor) error {
	pkg, err := e.get(c.Package)
	if err != nil {
		return err
	}
	if !pkg.isPackage() {
		return fmt.Errorf("%w: %s", errPackageNotFound, c.Package)
	}
	if isFrameworkPackage(c.Package) {
		if _, ok := lookupFunction(c.Package, c.Module, c.Function); !ok {
			return fmt.Errorf("%w: %s", errFunctionNotFound, functionKey(c.Package, c.Module, c.Function))
		}
	}
	for _, id := range c.Arguments {
		arg, err := e.get(id)
		if err != nil {
			return err
		}
		if arg.immutable() {
			continue
		}
		if _, err := e.mut(id); err != nil {
			return err
		}
	}
	e.moveCalls = append(e.moveCalls, c)
	return nil
}

func (c *Publish) inputs() []types.ObjectID { return c.Dependencies }

func (c *Publish) execute(e *executor) error {
	if len(c.Modules) == 0 {
		return errNoModules
	}
	for _, id := range c.Dependencies {
		dep, err := e.get(id)
		if err != nil {
			return err
		}
		if !dep.isPackage() {
			return fmt.Errorf("%w: dependency %s", errPackageNotFound, id)
		}
	}

	pkg := &object{
		ID:      e.newID(),
		Type:    packageType,
		Modules: c.Modules,
	}
	pkg.setOwner(types.Owner{Kind: types.Immutable})
	e.create(pkg)

	capID := e.newID()
	fields, err := json.Marshal(map[string]interface{}{
		"id":      uidJSON{ID: capID},
		"package": pkg.ID,
		"version": "1",
		"policy":  0,
	})
	if err != nil {
		return err
	}
	upgradeCap := &object{
		ID:     capID,
		Type:   upgradeCapType,
		Fields: fields,
	}
	upgradeCap.setOwner(types.NewAddressOwner(e.tx.Sender))
	e.create(upgradeCap)
	return nil
}

// coin returns a mutable coin and its coin type.
func (e *executor) coin(id types.ObjectID) (*object, string, error) {
	obj, err := e.mut(id)
	if err != nil {
		return nil, "", err
	}
	coinType, ok := obj.coinType()
	if !ok {
		return nil, "", fmt.Errorf("%w: %s is %s", errNotCoin, id, obj.Type)
	}
	return obj, coinType, nil
}

// field returns the dynamic field [id] of [parent] and marks it written.
func (e *executor) field(parent, id types.ObjectID) (*object, error) {
	obj, err := e.get(id)
	if errors.Is(err, errObjectNotFound) || errors.Is(err, errObjectDeleted) {
		return nil, fmt.Errorf("%w: %s", errFieldNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if types.OwnerKind(obj.OwnerKind) != types.ObjectOwner || obj.Owner != types.Address(parent) {
		return nil, fmt.Errorf("%w: %s is not a field of %s", errFieldNotFound, id, parent)
	}
	e.mutable[id] = true
	return obj, nil
}

// children lists the live dynamic fields of [parent] as seen by the
// transaction so far.
func (e *executor) children(parent types.ObjectID) ([]types.ObjectID, error) {
	stored, err := e.st.ChildObjects(parent)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	var out []types.ObjectID
	for _, id := range stored {
		if obj, ok := e.working[id]; ok && (obj.Deleted || obj.Owner != types.Address(parent)) {
			continue
		}
		out = append(out, id)
	}
	for id := range e.created {
		obj := e.working[id]
		if !obj.Deleted && types.OwnerKind(obj.OwnerKind) == types.ObjectOwner && obj.Owner == types.Address(parent) {
			out = append(out, id)
		}
	}
	return out, nil
}

// dynamicFieldID derives the id of a dynamic field from its parent and
// name.
func dynamicFieldID(parent types.ObjectID, nameType string, name []byte) types.ObjectID {
	h, _ := blake2b.New256(nil)
	_, _ = h.Write(parent[:])
	_, _ = h.Write([]byte(nameType))
	_, _ = h.Write(name)
	var id types.ObjectID
	copy(id[:], h.Sum(nil))
	return id
}

// compactJSON strips insignificant whitespace so that equal JSON values
// compare equal as bytes. Input is validated when the transaction is
// decoded.
func compactJSON(b []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}

func hashKey(s string) [types.IDLen]byte {
	return blake2b.Sum256([]byte(s))
}

// moveFunctionKeys lists the index keys of a call: the package, the module
// and the function.
func moveFunctionKeys(pkg types.ObjectID, module, function string) [][types.IDLen]byte {
	return [][types.IDLen]byte{
		hashKey(pkg.String()),
		hashKey(pkg.String() + "::" + module),
		hashKey(functionKey(pkg, module, function)),
	}
}
