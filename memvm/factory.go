// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"github.com/ava-labs/movesandbox/backend"
)

var _ backend.Factory = (&Factory{}).New

// Factory builds fresh ledgers sharing one configuration. Its New method is
// a backend.Factory.
type Factory struct {
	Config Config
}

// NewFactory returns a factory of ledgers configured with [config].
func NewFactory(config Config) *Factory { return &Factory{Config: config} }

// New returns a ledger at genesis.
func (f *Factory) New() (backend.Backend, error) { return New(f.Config) }
