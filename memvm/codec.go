// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"math"

	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// CodecVersion is the current default codec version
	CodecVersion = 0
)

// Codec serializes transactions, stored records and snapshots.
var Codec codec.Manager

func init() {
	c := linearcodec.NewCustomMaxLength(math.MaxUint32)
	Codec = codec.NewManager(math.MaxInt32)

	errs := wrappers.Errs{}
	errs.Add(
		c.RegisterType(&SplitCoin{}),
		c.RegisterType(&MergeCoins{}),
		c.RegisterType(&TransferObjects{}),
		c.RegisterType(&CreateObject{}),
		c.RegisterType(&MutateObject{}),
		c.RegisterType(&DeleteObject{}),
		c.RegisterType(&AddDynamicField{}),
		c.RegisterType(&RemoveDynamicField{}),
		c.RegisterType(&MoveCall{}),
		c.RegisterType(&Publish{}),
	)
	errs.Add(
		Codec.RegisterCodec(CodecVersion, c),
	)
	if errs.Errored() {
		panic(errs.Err)
	}
}
