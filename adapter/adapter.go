// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package adapter presents a sandbox session as a Sui client.
//
// Adapter implements RPCClient. The subset of methods that Move test
// harnesses rely on is served from the sandbox; every other method fails
// with an UnsupportedError naming the method and its arguments. Call
// dispatches methods by their JSON-RPC name and is what the HTTP service
// exposes.
package adapter

import (
	"context"
	"math/big"

	log "github.com/inconshreveable/log15"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/metrics"
	"github.com/ava-labs/movesandbox/sandbox"
	"github.com/ava-labs/movesandbox/types"
)

// LatestCheckpointSequenceNumber is reported by
// GetLatestCheckpointSequenceNumber. The sandbox does not produce
// checkpoints for clients to follow, so the value never changes.
const LatestCheckpointSequenceNumber = "10"

var _ RPCClient = &Adapter{}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMetrics records calls and transaction outcomes in [m].
func WithMetrics(m metrics.Metrics) Option {
	return func(a *Adapter) { a.metrics = m }
}

// Adapter serves the Sui client surface from a sandbox session.
type Adapter struct {
	sandbox  *sandbox.Client
	metrics  metrics.Metrics
	handlers map[string]handler
}

// New returns an adapter over [sb].
func New(sb *sandbox.Client, opts ...Option) *Adapter {
	a := &Adapter{
		sandbox: sb,
		metrics: metrics.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.handlers = a.newRegistry()
	return a
}

// Sandbox returns the session the adapter serves.
func (a *Adapter) Sandbox() *sandbox.Client { return a.sandbox }

// GetBalance reports the total balance of one coin type as a single coin
// count with nothing locked.
func (a *Adapter) GetBalance(_ context.Context, params types.GetBalanceParams) (*types.Balance, error) {
	coinType := types.CoinTypeOrDefault(params.CoinType)
	total, err := a.sandbox.GetBalance(params.Owner, coinType)
	if err != nil {
		return nil, err
	}
	return &types.Balance{
		Owner:           params.Owner,
		CoinType:        coinType,
		CoinObjectCount: 1,
		TotalBalance:    cjson.Uint64(total),
		LockedBalance:   map[string]string{},
	}, nil
}

// GetCoins returns every matching coin in one page. Cursor and limit are
// ignored.
func (a *Adapter) GetCoins(_ context.Context, params types.GetCoinsParams) (*types.CoinPage, error) {
	coins, err := a.sandbox.GetCoins(params.Owner, params.CoinType)
	if err != nil {
		return nil, err
	}
	if coins == nil {
		coins = []types.Coin{}
	}
	return &types.CoinPage{Data: coins, HasNextPage: false}, nil
}

func (a *Adapter) ExecuteTransactionBlock(_ context.Context, params types.ExecuteTransactionBlockParams) (*types.TransactionBlockResponse, error) {
	resp, err := a.sandbox.ExecuteTransactionBlock(params.TransactionBlock, params.Signature...)
	if err != nil {
		return nil, err
	}
	a.observeTransaction(resp)
	return resp, nil
}

func (a *Adapter) observeTransaction(resp *types.TransactionBlockResponse) {
	switch {
	case len(resp.Errors) > 0:
		a.metrics.ObserveTransaction(metrics.OutcomeRejected, 0)
		log.Debug("transaction rejected", "digest", resp.Digest, "errors", resp.Errors)
	case resp.Succeeded():
		a.metrics.ObserveTransaction(metrics.OutcomeSuccess, resp.Effects.GasUsed.Total())
	default:
		var gas uint64
		if resp.Effects != nil {
			gas = resp.Effects.GasUsed.Total()
		}
		a.metrics.ObserveTransaction(metrics.OutcomeFailure, gas)
	}
}

func (a *Adapter) DryRunTransactionBlock(_ context.Context, params types.DryRunTransactionBlockParams) (*types.DryRunTransactionBlockResponse, error) {
	return a.sandbox.DryRunTransaction(params.TransactionBlock)
}

func (a *Adapter) GetObject(_ context.Context, params types.GetObjectParams) (*types.ObjectResponse, error) {
	return a.sandbox.GetObject(params.ID)
}

// MultiGetObjects fetches each id through GetObject. Responses keep the
// order of the ids.
func (a *Adapter) MultiGetObjects(ctx context.Context, params types.MultiGetObjectsParams) ([]*types.ObjectResponse, error) {
	out := make([]*types.ObjectResponse, len(params.IDs))
	for i, id := range params.IDs {
		resp, err := a.GetObject(ctx, types.GetObjectParams{ID: id, Options: params.Options})
		if err != nil {
			return nil, err
		}
		out[i] = resp
	}
	return out, nil
}

// WaitForTransaction returns the recorded response at once: local
// execution is synchronous.
func (a *Adapter) WaitForTransaction(ctx context.Context, params types.GetTransactionBlockParams) (*types.TransactionBlockResponse, error) {
	return a.GetTransactionBlock(ctx, params)
}

func (a *Adapter) GetTransactionBlock(_ context.Context, params types.GetTransactionBlockParams) (*types.TransactionBlockResponse, error) {
	return a.sandbox.GetTransaction(params.Digest)
}

func (a *Adapter) GetNormalizedMoveFunction(_ context.Context, params types.GetNormalizedMoveFunctionParams) (*types.NormalizedMoveFunction, error) {
	return a.sandbox.GetNormalizedFunction(params)
}

func (a *Adapter) GetReferenceGasPrice(context.Context) (*big.Int, error) {
	price, err := a.sandbox.ReferenceGasPrice()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(price), nil
}

func (a *Adapter) TryGetPastObject(_ context.Context, params types.TryGetPastObjectParams) (*types.PastObjectRead, error) {
	return a.sandbox.TryGetPastObject(params)
}

func (a *Adapter) GetDynamicFields(_ context.Context, params types.GetDynamicFieldsParams) (*types.DynamicFieldPage, error) {
	return a.sandbox.GetDynamicFields(params)
}

func (a *Adapter) GetDynamicFieldObject(_ context.Context, params types.GetDynamicFieldObjectParams) (*types.ObjectResponse, error) {
	return a.sandbox.GetDynamicFieldObject(params)
}

func (a *Adapter) QueryTransactionBlocks(_ context.Context, params types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error) {
	return a.sandbox.QueryTransactionBlocks(params)
}

// GetLatestCheckpointSequenceNumber always reports
// LatestCheckpointSequenceNumber.
func (*Adapter) GetLatestCheckpointSequenceNumber(context.Context) (string, error) {
	return LatestCheckpointSequenceNumber, nil
}
