// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"errors"
	"fmt"
)

// Query orders.
const (
	Ascending  = "ascending"
	Descending = "descending"
)

// KindProgrammableTransaction is the kind of every user transaction.
const KindProgrammableTransaction = "ProgrammableTransaction"

var errAmbiguousFilter = errors.New("transaction filter must set exactly one variant")

// AddressFilter is the payload of the FromOrToAddress filter.
type AddressFilter struct {
	Addr Address `json:"addr"`
}

// MoveFunctionFilter matches calls into a package, optionally narrowed to a
// module and function.
type MoveFunctionFilter struct {
	Package  ObjectID `json:"package"`
	Module   string   `json:"module,omitempty"`
	Function string   `json:"function,omitempty"`
}

// TransactionFilter selects transactions in queryTransactionBlocks. It is
// externally tagged: at most one field is set. A nil filter matches every
// transaction.
type TransactionFilter struct {
	ChangedObject   *ObjectID           `json:"ChangedObject,omitempty"`
	InputObject     *ObjectID           `json:"InputObject,omitempty"`
	AffectedObject  *ObjectID           `json:"AffectedObject,omitempty"`
	FromAddress     *Address            `json:"FromAddress,omitempty"`
	ToAddress       *Address            `json:"ToAddress,omitempty"`
	FromOrToAddress *AddressFilter      `json:"FromOrToAddress,omitempty"`
	MoveFunction    *MoveFunctionFilter `json:"MoveFunction,omitempty"`
	TransactionKind *string             `json:"TransactionKind,omitempty"`
}

// Validate checks that exactly one variant is set.
func (f *TransactionFilter) Validate() error {
	set := 0
	for _, ok := range []bool{
		f.ChangedObject != nil,
		f.InputObject != nil,
		f.AffectedObject != nil,
		f.FromAddress != nil,
		f.ToAddress != nil,
		f.FromOrToAddress != nil,
		f.MoveFunction != nil,
		f.TransactionKind != nil,
	} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d set", errAmbiguousFilter, set)
	}
	return nil
}

// QueryTransactionBlocksParams are the arguments of queryTransactionBlocks.
// Without options the page holds digests only.
type QueryTransactionBlocksParams struct {
	Filter  *TransactionFilter               `json:"filter,omitempty"`
	Options *TransactionBlockResponseOptions `json:"options,omitempty"`
	Cursor  *Digest                          `json:"cursor,omitempty"`
	Limit   *uint                            `json:"limit,omitempty"`
	Order   string                           `json:"order,omitempty"`
}

// IsDescending reports whether newest transactions come first.
func (p *QueryTransactionBlocksParams) IsDescending() bool { return p.Order == Descending }

// TransactionBlocksPage is one page of queryTransactionBlocks.
type TransactionBlocksPage struct {
	Data        []TransactionBlockResponse `json:"data"`
	NextCursor  *Digest                    `json:"nextCursor"`
	HasNextPage bool                       `json:"hasNextPage"`
}
