// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/movesandbox/types"
)

var (
	errCursorNotFound = errors.New("cursor not found")
	errModuleRequired = errors.New("a function filter requires a module")

	mintSeed = ids.ID(blake2b.Sum256([]byte("mint")))
)

func (vm *VM) getObject(id types.ObjectID) (*types.ObjectResponse, error) {
	st := vm.newState()
	defer st.Abort()

	obj, err := st.GetObject(id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return &types.ObjectResponse{Error: &types.ObjectResponseError{Code: types.CodeNotExists, ObjectID: &id}}, nil
	case err != nil:
		return nil, err
	case obj.Deleted:
		return &types.ObjectResponse{Error: &types.ObjectResponseError{Code: types.CodeDeleted, ObjectID: &id}}, nil
	}
	return vm.objectResponse(st, obj)
}

func (vm *VM) objectResponse(st State, obj *object) (*types.ObjectResponse, error) {
	now, err := st.GetTimeMs()
	if err != nil {
		return nil, err
	}
	data, err := obj.data(now)
	if err != nil {
		return nil, err
	}
	return &types.ObjectResponse{Data: data}, nil
}

// getPastObject looks up one version of an object. Versions at which the
// object was deleted, and versions it never had, are VersionNotFound.
func (vm *VM) getPastObject(id types.ObjectID, version uint64) (*types.PastObjectRead, error) {
	st := vm.newState()
	defer st.Abort()

	latest, err := st.GetObject(id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return &types.PastObjectRead{Status: types.ObjectNotExists, ObjectID: id}, nil
	case err != nil:
		return nil, err
	}
	if version > latest.Version {
		return &types.PastObjectRead{
			Status:        types.VersionTooHigh,
			ObjectID:      id,
			AskedVersion:  version,
			LatestVersion: latest.Version,
		}, nil
	}

	obj, err := st.GetObjectVersion(id, version)
	switch {
	case errors.Is(err, database.ErrNotFound) || (err == nil && obj.Deleted):
		return &types.PastObjectRead{Status: types.VersionNotFound, ObjectID: id, AskedVersion: version}, nil
	case err != nil:
		return nil, err
	}
	now, err := st.GetTimeMs()
	if err != nil {
		return nil, err
	}
	data, err := obj.data(now)
	if err != nil {
		return nil, err
	}
	return &types.PastObjectRead{Status: types.VersionFound, ObjectID: id, Object: data}, nil
}

// dynamicFields pages through the fields of a parent in id order. The
// cursor is the last field of the previous page.
func (vm *VM) dynamicFields(p *types.GetDynamicFieldsParams) (*types.DynamicFieldPage, error) {
	st := vm.newState()
	defer st.Abort()

	children, err := st.ChildObjects(p.ParentID)
	if err != nil {
		return nil, err
	}
	start := 0
	if p.Cursor != nil {
		start = -1
		for i, id := range children {
			if id == *p.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("%w: %s", errCursorNotFound, *p.Cursor)
		}
	}
	end := pageEnd(start, len(children), p.Limit)

	page := &types.DynamicFieldPage{
		Data:        []types.DynamicFieldInfo{},
		HasNextPage: end < len(children),
	}
	for _, id := range children[start:end] {
		obj, err := st.GetObject(id)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, types.DynamicFieldInfo{
			Name:       types.DynamicFieldName{Type: obj.NameType, Value: json.RawMessage(obj.Name)},
			BcsName:    base58.Encode(obj.Name),
			Type:       types.DynamicFieldKind,
			ObjectType: fieldValueType(obj),
			ObjectID:   obj.ID,
			Version:    obj.Version,
			Digest:     obj.Digest,
		})
	}
	if n := len(page.Data); n > 0 {
		last := page.Data[n-1].ObjectID
		page.NextCursor = &last
	}
	return page, nil
}

// pageEnd returns the end of the page starting at [start] out of [total]
// entries. Limits beyond the remaining entries select all of them.
func pageEnd(start, total int, limit *uint) int {
	if limit != nil && uint64(*limit) < uint64(total-start) {
		return start + int(*limit)
	}
	return total
}

// fieldValueType recovers the value type of a dynamic field from its
// Field<Name, Value> type.
func fieldValueType(obj *object) string {
	t := strings.TrimPrefix(obj.Type, dynamicFieldTypePrefix+obj.NameType+", ")
	return strings.TrimSuffix(t, ">")
}

func (vm *VM) dynamicFieldObject(parent types.ObjectID, name types.DynamicFieldName) (*types.ObjectResponse, error) {
	st := vm.newState()
	defer st.Abort()

	notFound := &types.ObjectResponse{Error: &types.ObjectResponseError{
		Code:           types.CodeDynamicFieldNotFound,
		ParentObjectID: &parent,
	}}
	id := dynamicFieldID(parent, types.NormalizeTypeTag(name.Type), compactJSON(name.Value))
	obj, err := st.GetObject(id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFound, nil
	case err != nil:
		return nil, err
	case obj.Deleted || types.OwnerKind(obj.OwnerKind) != types.ObjectOwner || obj.Owner != types.Address(parent):
		return notFound, nil
	}
	return vm.objectResponse(st, obj)
}

// filterKey maps a transaction filter onto its index. A nil filter maps to
// nil, which lists every recorded transaction.
func filterKey(f *types.TransactionFilter) (*indexKey, error) {
	if f == nil {
		return nil, nil
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	switch {
	case f.ChangedObject != nil:
		return &indexKey{kind: changedObjectIndex, key: *f.ChangedObject}, nil
	case f.InputObject != nil:
		return &indexKey{kind: inputObjectIndex, key: *f.InputObject}, nil
	case f.AffectedObject != nil:
		return &indexKey{kind: affectedObjectIndex, key: *f.AffectedObject}, nil
	case f.FromAddress != nil:
		return &indexKey{kind: fromAddressIndex, key: *f.FromAddress}, nil
	case f.ToAddress != nil:
		return &indexKey{kind: toAddressIndex, key: *f.ToAddress}, nil
	case f.FromOrToAddress != nil:
		return &indexKey{kind: fromOrToAddressIndex, key: f.FromOrToAddress.Addr}, nil
	case f.MoveFunction != nil:
		fn := f.MoveFunction
		keys := moveFunctionKeys(fn.Package, fn.Module, fn.Function)
		switch {
		case fn.Module == "" && fn.Function != "":
			return nil, errModuleRequired
		case fn.Module == "":
			return &indexKey{kind: moveFunctionIndex, key: keys[0]}, nil
		case fn.Function == "":
			return &indexKey{kind: moveFunctionIndex, key: keys[1]}, nil
		default:
			return &indexKey{kind: moveFunctionIndex, key: keys[2]}, nil
		}
	default:
		return &indexKey{kind: transactionKindIndex, key: hashKey(*f.TransactionKind)}, nil
	}
}

// queryTransactions pages through recorded transactions in execution
// order, or the reverse. The cursor is the last digest of the previous
// page; a nil limit returns every remaining transaction.
func (vm *VM) queryTransactions(p *types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error) {
	key, err := filterKey(p.Filter)
	if err != nil {
		return nil, err
	}

	st := vm.newState()
	defer st.Abort()

	digests, err := st.Transactions(key)
	if err != nil {
		return nil, err
	}
	if p.IsDescending() {
		for i, j := 0, len(digests)-1; i < j; i, j = i+1, j-1 {
			digests[i], digests[j] = digests[j], digests[i]
		}
	}

	start := 0
	if p.Cursor != nil {
		start = -1
		for i, d := range digests {
			if d == *p.Cursor {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("%w: %s", errCursorNotFound, *p.Cursor)
		}
	}
	end := pageEnd(start, len(digests), p.Limit)

	page := &types.TransactionBlocksPage{
		Data:        []types.TransactionBlockResponse{},
		HasNextPage: end < len(digests),
	}
	for _, digest := range digests[start:end] {
		if p.Options == nil {
			page.Data = append(page.Data, types.TransactionBlockResponse{Digest: digest})
			continue
		}
		tx, err := st.GetTransaction(digest)
		if err != nil {
			return nil, fmt.Errorf("couldn't load transaction %s: %w", digest, err)
		}
		resp := types.TransactionBlockResponse{}
		if err := json.Unmarshal(tx.Response, &resp); err != nil {
			return nil, err
		}
		page.Data = append(page.Data, resp)
	}
	if n := len(page.Data); n > 0 {
		last := page.Data[n-1].Digest
		page.NextCursor = &last
	}
	return page, nil
}
