// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/binary"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/movesandbox/types"
)

// Index kinds of the transaction filter index.
const (
	changedObjectIndex byte = iota + 1
	inputObjectIndex
	affectedObjectIndex
	fromAddressIndex
	toAddressIndex
	fromOrToAddressIndex
	moveFunctionIndex
	transactionKindIndex
)

var (
	errTransactionWrongVersion = errors.New("wrong version")

	_ TransactionState = &transactionState{}
)

// indexKey addresses one filter index entry: a kind and a 32 byte key.
type indexKey struct {
	kind byte
	key  [types.IDLen]byte
}

func (k indexKey) prefix() []byte {
	out := make([]byte, 1+types.IDLen)
	out[0] = k.kind
	copy(out[1:], k.key[:])
	return out
}

// transaction is a recorded transaction. Rejected transactions are recorded
// with Executed unset and are never indexed.
type transaction struct {
	Seq      uint64 `serialize:"true"`
	Executed bool   `serialize:"true"`
	Response []byte `serialize:"true"`
}

// TransactionState stores transaction responses in execution order along
// with the filter indices.
type TransactionState interface {
	// GetTransaction returns a recorded transaction or database.ErrNotFound.
	GetTransaction(digest types.Digest) (*transaction, error)
	// PutTransaction records [tx] at its sequence number and indexes it
	// under [keys]. Recording a digest again replaces the earlier record
	// and keeps its sequence number.
	PutTransaction(digest types.Digest, tx *transaction, keys []indexKey) error

	// Transactions lists digests in execution order. A nil key lists every
	// recorded transaction.
	Transactions(key *indexKey) ([]types.Digest, error)
}

type transactionState struct {
	txDB    database.Database
	seqDB   database.Database
	indexDB database.Database
}

func NewTransactionState(txDB, seqDB, indexDB database.Database) TransactionState {
	return &transactionState{
		txDB:    txDB,
		seqDB:   seqDB,
		indexDB: indexDB,
	}
}

func (s *transactionState) GetTransaction(digest types.Digest) (*transaction, error) {
	txBytes, err := s.txDB.Get(digest[:])
	if err != nil {
		return nil, err
	}
	tx := &transaction{}
	parsedVersion, err := Codec.Unmarshal(txBytes, tx)
	if err != nil {
		return nil, err
	}
	if parsedVersion != CodecVersion {
		return nil, errTransactionWrongVersion
	}
	return tx, nil
}

func (s *transactionState) PutTransaction(digest types.Digest, tx *transaction, keys []indexKey) error {
	txBytes, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return err
	}
	if err := s.txDB.Put(digest[:], txBytes); err != nil {
		return err
	}
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, tx.Seq)
	if err := s.seqDB.Put(seqBytes, digest[:]); err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.indexDB.Put(append(k.prefix(), seqBytes...), digest[:]); err != nil {
			return err
		}
	}
	return nil
}

func (s *transactionState) Transactions(key *indexKey) ([]types.Digest, error) {
	var it database.Iterator
	if key == nil {
		it = s.seqDB.NewIterator()
	} else {
		it = s.indexDB.NewIteratorWithPrefix(key.prefix())
	}
	defer it.Release()

	var out []types.Digest
	for it.Next() {
		var digest types.Digest
		copy(digest[:], it.Value())
		out = append(out, digest)
	}
	return out, it.Error()
}
