// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

const (
	IsInitializedKey byte = iota
	TimeMsKey
	CheckpointKey
	TransactionCountKey
	NonceKey
)

var (
	isInitializedKey    = []byte{IsInitializedKey}
	timeMsKey           = []byte{TimeMsKey}
	checkpointKey       = []byte{CheckpointKey}
	transactionCountKey = []byte{TransactionCountKey}
	nonceKey            = []byte{NonceKey}

	_ SingletonState = (*singletonState)(nil)
)

// SingletonState is a thin wrapper around a database holding the chain-wide
// counters: initialization status, clock, checkpoint, transaction count and
// nonce.
type SingletonState interface {
	IsInitialized() (bool, error)
	SetInitialized() error

	GetTimeMs() (uint64, error)
	SetTimeMs(uint64) error

	GetCheckpoint() (uint64, error)
	SetCheckpoint(uint64) error

	// NextTransactionSeq returns the sequence number of the next recorded
	// transaction and advances the counter.
	NextTransactionSeq() (uint64, error)
	// NextNonce returns a fresh nonce for minted coins and backend
	// submitted transactions.
	NextNonce() (uint64, error)
}

type singletonState struct {
	singletonDB database.Database
}

func NewSingletonState(db database.Database) SingletonState {
	return &singletonState{
		singletonDB: db,
	}
}

func (s *singletonState) IsInitialized() (bool, error) {
	return s.singletonDB.Has(isInitializedKey)
}

func (s *singletonState) SetInitialized() error {
	return s.singletonDB.Put(isInitializedKey, nil)
}

func (s *singletonState) GetTimeMs() (uint64, error)     { return s.get(timeMsKey) }
func (s *singletonState) SetTimeMs(ms uint64) error      { return database.PutUInt64(s.singletonDB, timeMsKey, ms) }
func (s *singletonState) GetCheckpoint() (uint64, error) { return s.get(checkpointKey) }

func (s *singletonState) SetCheckpoint(seq uint64) error {
	return database.PutUInt64(s.singletonDB, checkpointKey, seq)
}

func (s *singletonState) NextTransactionSeq() (uint64, error) { return s.next(transactionCountKey) }
func (s *singletonState) NextNonce() (uint64, error)          { return s.next(nonceKey) }

// get reads a counter. A missing counter is zero.
func (s *singletonState) get(key []byte) (uint64, error) {
	val, err := database.GetUInt64(s.singletonDB, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}

func (s *singletonState) next(key []byte) (uint64, error) {
	val, err := s.get(key)
	if err != nil {
		return 0, err
	}
	return val, database.PutUInt64(s.singletonDB, key, val+1)
}
