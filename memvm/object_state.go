// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/movesandbox/types"
)

const (
	objectCacheSize = 8192
)

var (
	errObjectWrongVersion = errors.New("wrong version")

	_ ObjectState = &objectState{}
)

// ObjectState stores the latest version of every object, the full version
// history and the owner and parent indices.
type ObjectState interface {
	// GetObject returns the latest version of an object, which may be a
	// deletion record. Unknown objects return database.ErrNotFound.
	GetObject(id types.ObjectID) (*object, error)
	GetObjectVersion(id types.ObjectID, version uint64) (*object, error)
	PutObject(obj *object) error

	// OwnedObjects lists the live objects owned by an address in id order.
	OwnedObjects(owner types.Address) ([]types.ObjectID, error)
	// ChildObjects lists the live children of a parent object in id order.
	ChildObjects(parent types.ObjectID) ([]types.ObjectID, error)
}

type objectState struct {
	objCache  cache.Cacher
	objectDB  database.Database
	versionDB database.Database
	ownerDB   database.Database
	childDB   database.Database

	// pending holds objects written since the last commit. They reach the
	// shared cache only once committed.
	pending map[types.ObjectID]*object
}

func newObjectState(objCache cache.Cacher, objectDB, versionDB, ownerDB, childDB database.Database) *objectState {
	return &objectState{
		objCache:  objCache,
		objectDB:  objectDB,
		versionDB: versionDB,
		ownerDB:   ownerDB,
		childDB:   childDB,
		pending:   make(map[types.ObjectID]*object),
	}
}

func (s *objectState) GetObject(id types.ObjectID) (*object, error) {
	if obj, ok := s.pending[id]; ok {
		return obj.clone(), nil
	}
	if objIntf, ok := s.objCache.Get(id); ok {
		return objIntf.(*object).clone(), nil
	}

	objBytes, err := s.objectDB.Get(id[:])
	if err != nil {
		return nil, err
	}
	obj, err := parseObject(objBytes)
	if err != nil {
		return nil, err
	}

	s.objCache.Put(id, obj)
	return obj.clone(), nil
}

func (s *objectState) GetObjectVersion(id types.ObjectID, version uint64) (*object, error) {
	objBytes, err := s.versionDB.Get(versionKey(id, version))
	if err != nil {
		return nil, err
	}
	return parseObject(objBytes)
}

func (s *objectState) PutObject(obj *object) error {
	prev, err := s.GetObject(obj.ID)
	switch {
	case err == nil:
		if err := s.unindex(prev); err != nil {
			return err
		}
	case !errors.Is(err, database.ErrNotFound):
		return err
	}

	bytes, err := Codec.Marshal(CodecVersion, obj)
	if err != nil {
		return err
	}
	if err := s.objectDB.Put(obj.ID[:], bytes); err != nil {
		return err
	}
	if err := s.versionDB.Put(versionKey(obj.ID, obj.Version), bytes); err != nil {
		return err
	}
	s.pending[obj.ID] = obj.clone()
	return s.index(obj)
}

func (s *objectState) index(obj *object) error {
	if obj.Deleted {
		return nil
	}
	switch types.OwnerKind(obj.OwnerKind) {
	case types.AddressOwner:
		return s.ownerDB.Put(pairKey(obj.Owner, obj.ID), nil)
	case types.ObjectOwner:
		return s.childDB.Put(pairKey(obj.Owner, obj.ID), nil)
	default:
		return nil
	}
}

func (s *objectState) unindex(obj *object) error {
	switch types.OwnerKind(obj.OwnerKind) {
	case types.AddressOwner:
		return s.ownerDB.Delete(pairKey(obj.Owner, obj.ID))
	case types.ObjectOwner:
		return s.childDB.Delete(pairKey(obj.Owner, obj.ID))
	default:
		return nil
	}
}

func (s *objectState) OwnedObjects(owner types.Address) ([]types.ObjectID, error) {
	return listPairs(s.ownerDB, owner[:])
}

func (s *objectState) ChildObjects(parent types.ObjectID) ([]types.ObjectID, error) {
	return listPairs(s.childDB, parent[:])
}

// commit publishes pending writes to the shared cache.
func (s *objectState) commit() {
	for id, obj := range s.pending {
		s.objCache.Put(id, obj)
	}
	s.pending = make(map[types.ObjectID]*object)
}

// abort drops pending writes.
func (s *objectState) abort() {
	s.pending = make(map[types.ObjectID]*object)
}

func parseObject(b []byte) (*object, error) {
	obj := &object{}
	parsedVersion, err := Codec.Unmarshal(b, obj)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errObjectWrongVersion
	}
	return obj, nil
}

func versionKey(id types.ObjectID, version uint64) []byte {
	key := make([]byte, types.IDLen+8)
	copy(key, id[:])
	binary.BigEndian.PutUint64(key[types.IDLen:], version)
	return key
}

func pairKey(first [types.IDLen]byte, second types.ObjectID) []byte {
	key := make([]byte, 2*types.IDLen)
	copy(key, first[:])
	copy(key[types.IDLen:], second[:])
	return key
}

// listPairs returns the second halves of the pair keys starting with
// [first].
func listPairs(db database.Iteratee, first []byte) ([]types.ObjectID, error) {
	it := db.NewIteratorWithPrefix(first)
	defer it.Release()

	var out []types.ObjectID
	for it.Next() {
		var id types.ObjectID
		copy(id[:], it.Key()[types.IDLen:])
		out = append(out, id)
	}
	return out, it.Error()
}
