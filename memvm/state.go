// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
)

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	objectStatePrefix    = []byte("object")
	versionStatePrefix   = []byte("version")
	ownerIndexPrefix     = []byte("owner")
	childIndexPrefix     = []byte("child")
	txStatePrefix        = []byte("tx")
	txSeqPrefix          = []byte("txseq")
	txIndexPrefix        = []byte("txindex")

	_ State = &state{}
)

// State is one unit of work over the ledger database. Writes stay pending
// until Commit and are discarded by Abort.
type State interface {
	SingletonState
	ObjectState
	TransactionState

	Commit() error
	Abort()
}

type state struct {
	SingletonState
	*objectState
	TransactionState

	baseDB *versiondb.Database
}

// NewState opens a unit of work over [db]. [objCache] is shared by every
// unit of work over the same database.
func NewState(db database.Database, objCache cache.Cacher) State {
	// create a new baseDB
	baseDB := versiondb.New(db)

	return &state{
		SingletonState: NewSingletonState(prefixdb.New(singletonStatePrefix, baseDB)),
		objectState: newObjectState(
			objCache,
			prefixdb.New(objectStatePrefix, baseDB),
			prefixdb.New(versionStatePrefix, baseDB),
			prefixdb.New(ownerIndexPrefix, baseDB),
			prefixdb.New(childIndexPrefix, baseDB),
		),
		TransactionState: NewTransactionState(
			prefixdb.New(txStatePrefix, baseDB),
			prefixdb.New(txSeqPrefix, baseDB),
			prefixdb.New(txIndexPrefix, baseDB),
		),
		baseDB: baseDB,
	}
}

// Commit writes pending operations to the underlying database
func (s *state) Commit() error {
	if err := s.baseDB.Commit(); err != nil {
		return err
	}
	s.objectState.commit()
	return nil
}

// Abort discards pending operations
func (s *state) Abort() {
	s.baseDB.Abort()
	s.objectState.abort()
}
