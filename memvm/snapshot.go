// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/memdb"
)

var errSnapshotWrongVersion = errors.New("wrong snapshot version")

type snapshotEntry struct {
	Key   []byte `serialize:"true"`
	Value []byte `serialize:"true"`
}

// snapshot is every key of the ledger database, in key order.
type snapshot struct {
	Entries []snapshotEntry `serialize:"true"`
}

// snapshot serializes the whole ledger database and compresses it.
func (vm *VM) snapshot() ([]byte, error) {
	it := vm.db.NewIterator()
	defer it.Release()

	snap := snapshot{}
	for it.Next() {
		snap.Entries = append(snap.Entries, snapshotEntry{
			Key:   append([]byte(nil), it.Key()...),
			Value: append([]byte(nil), it.Value()...),
		})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	b, err := Codec.Marshal(CodecVersion, &snap)
	if err != nil {
		return nil, fmt.Errorf("couldn't serialize snapshot: %w", err)
	}
	log.Debug("took snapshot", "entries", len(snap.Entries), "bytes", len(b))
	return snappy.Encode(nil, b), nil
}

// restore replaces the ledger database with the content of a snapshot.
// The armed rejection is dropped; signature checking is left as is.
func (vm *VM) restore(compressed []byte) error {
	b, err := snappy.Decode(nil, compressed)
	if err != nil {
		return fmt.Errorf("couldn't decompress snapshot: %w", err)
	}
	snap := snapshot{}
	parsedVersion, err := Codec.Unmarshal(b, &snap)
	if err != nil {
		return fmt.Errorf("couldn't parse snapshot: %w", err)
	}
	if parsedVersion != CodecVersion {
		return errSnapshotWrongVersion
	}

	db := memdb.New()
	for _, entry := range snap.Entries {
		if err := db.Put(entry.Key, entry.Value); err != nil {
			return err
		}
	}
	vm.db = db
	vm.objCache.Flush()
	vm.rejectReason = nil
	log.Info("restored snapshot", "entries", len(snap.Entries))
	return nil
}
