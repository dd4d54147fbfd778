// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client talks to a sandbox server over JSON-RPC.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/utils/formatting"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/adapter"
	"github.com/ava-labs/movesandbox/service"
	"github.com/ava-labs/movesandbox/types"
)

var (
	errBadGasPrice = errors.New("invalid reference gas price")

	_ adapter.QueryClient = &Client{}
)

// RemoteError is an error returned by the server. Errors of unsupported
// client methods match adapter.ErrUnsupported.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %s", e.Method, e.Message) }

func (e *RemoteError) Is(target error) bool {
	return target == adapter.ErrUnsupported && strings.HasSuffix(e.Message, adapter.ErrUnsupported.Error())
}

// Client is a sandbox server client.
type Client struct {
	uri  string
	http *http.Client
}

// New returns a client of the JSON-RPC endpoint at [uri], e.g.
// http://127.0.0.1:9650/rpc.
func New(uri string) *Client {
	return &Client{uri: uri, http: http.DefaultClient}
}

func (c *Client) send(ctx context.Context, method string, args, reply interface{}) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return fmt.Errorf("couldn't encode %s request: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't send %s request: %w", method, err)
	}
	defer resp.Body.Close()

	err = json2.DecodeClientResponse(resp.Body, reply)
	var rpcErr *json2.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &rpcErr):
		return &RemoteError{Method: method, Message: rpcErr.Message}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s: server returned %s", method, resp.Status)
	default:
		return fmt.Errorf("couldn't decode %s response: %w", method, err)
	}
}

// Call invokes a Sui client method on the server and returns its raw JSON
// result.
func (c *Client) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode %s params: %w", method, err)
	}
	reply := &service.CallReply{}
	if err := c.send(ctx, "sui.call", &service.CallArgs{Method: method, Params: raw}, reply); err != nil {
		return nil, err
	}
	return reply.Result, nil
}

func (c *Client) call(ctx context.Context, method string, params, result interface{}) error {
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("couldn't decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) SupportedMethods(ctx context.Context) ([]string, error) {
	reply := &service.MethodsReply{}
	err := c.send(ctx, "sui.supportedMethods", &struct{}{}, reply)
	return reply.Methods, err
}

func (c *Client) GetBalance(ctx context.Context, params types.GetBalanceParams) (*types.Balance, error) {
	out := &types.Balance{}
	return out, c.call(ctx, "suix_getBalance", params, out)
}

func (c *Client) GetCoins(ctx context.Context, params types.GetCoinsParams) (*types.CoinPage, error) {
	out := &types.CoinPage{}
	return out, c.call(ctx, "suix_getCoins", params, out)
}

func (c *Client) GetObject(ctx context.Context, params types.GetObjectParams) (*types.ObjectResponse, error) {
	out := &types.ObjectResponse{}
	return out, c.call(ctx, "sui_getObject", params, out)
}

func (c *Client) MultiGetObjects(ctx context.Context, params types.MultiGetObjectsParams) ([]*types.ObjectResponse, error) {
	var out []*types.ObjectResponse
	if err := c.call(ctx, "sui_multiGetObjects", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetReferenceGasPrice(ctx context.Context) (*big.Int, error) {
	var s string
	if err := c.call(ctx, "suix_getReferenceGasPrice", nil, &s); err != nil {
		return nil, err
	}
	price, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errBadGasPrice, s)
	}
	return price, nil
}

func (c *Client) GetNormalizedMoveFunction(ctx context.Context, params types.GetNormalizedMoveFunctionParams) (*types.NormalizedMoveFunction, error) {
	out := &types.NormalizedMoveFunction{}
	return out, c.call(ctx, "sui_getNormalizedMoveFunction", params, out)
}

func (c *Client) DryRunTransactionBlock(ctx context.Context, params types.DryRunTransactionBlockParams) (*types.DryRunTransactionBlockResponse, error) {
	out := &types.DryRunTransactionBlockResponse{}
	return out, c.call(ctx, "sui_dryRunTransactionBlock", params, out)
}

func (c *Client) ExecuteTransactionBlock(ctx context.Context, params types.ExecuteTransactionBlockParams) (*types.TransactionBlockResponse, error) {
	out := &types.TransactionBlockResponse{}
	return out, c.call(ctx, "sui_executeTransactionBlock", params, out)
}

func (c *Client) GetTransactionBlock(ctx context.Context, params types.GetTransactionBlockParams) (*types.TransactionBlockResponse, error) {
	out := &types.TransactionBlockResponse{}
	return out, c.call(ctx, "sui_getTransactionBlock", params, out)
}

func (c *Client) QueryTransactionBlocks(ctx context.Context, params types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error) {
	out := &types.TransactionBlocksPage{}
	return out, c.call(ctx, "suix_queryTransactionBlocks", params, out)
}

func (c *Client) MintSui(ctx context.Context, owner types.Address, amount uint64) (types.ObjectID, error) {
	reply := &service.MintSuiReply{}
	err := c.send(ctx, "admin.mintSui", &service.MintSuiArgs{Owner: owner, Amount: cjson.Uint64(amount)}, reply)
	return reply.ObjectID, err
}

func (c *Client) ClockTimestampMillis(ctx context.Context) (uint64, error) {
	reply := &service.ClockReply{}
	err := c.send(ctx, "admin.getClock", &struct{}{}, reply)
	return uint64(reply.TimestampMs), err
}

func (c *Client) AdvanceClockByMillis(ctx context.Context, ms uint64) error {
	return c.send(ctx, "admin.advanceClock", &service.ClockArgs{Millis: cjson.Uint64(ms)}, &api.SuccessResponse{})
}

func (c *Client) SetClockTimestampMillis(ctx context.Context, ms uint64) error {
	return c.send(ctx, "admin.setClock", &service.ClockArgs{Millis: cjson.Uint64(ms)}, &api.SuccessResponse{})
}

func (c *Client) RejectNextTransaction(ctx context.Context, reason string) error {
	return c.send(ctx, "admin.rejectNextTransaction", &service.RejectArgs{Reason: reason}, &api.SuccessResponse{})
}

func (c *Client) EnableSignatureChecks(ctx context.Context) error {
	return c.send(ctx, "admin.enableSignatureChecks", &struct{}{}, &api.SuccessResponse{})
}

func (c *Client) DisableSignatureChecks(ctx context.Context) error {
	return c.send(ctx, "admin.disableSignatureChecks", &struct{}{}, &api.SuccessResponse{})
}

func (c *Client) BumpCheckpoint(ctx context.Context) error {
	return c.send(ctx, "admin.bumpCheckpoint", &struct{}{}, &api.SuccessResponse{})
}

func (c *Client) Reset(ctx context.Context) error {
	return c.send(ctx, "admin.reset", &struct{}{}, &api.SuccessResponse{})
}

func (c *Client) TakeSnapshot(ctx context.Context) ([]byte, error) {
	reply := &service.SnapshotReply{}
	if err := c.send(ctx, "admin.takeSnapshot", &struct{}{}, reply); err != nil {
		return nil, err
	}
	return formatting.Decode(reply.Encoding, reply.Snapshot)
}

func (c *Client) RestoreSnapshot(ctx context.Context, snapshot []byte) error {
	encoded, err := formatting.EncodeWithChecksum(formatting.Hex, snapshot)
	if err != nil {
		return err
	}
	return c.send(ctx, "admin.restoreSnapshot", &service.RestoreSnapshotArgs{
		Snapshot: encoded,
		Encoding: formatting.Hex,
	}, &api.SuccessResponse{})
}

// PublishPackage has the server compile and publish the Move package at
// [dir] on the server's file system.
func (c *Client) PublishPackage(ctx context.Context, dir string, sender types.Address) (*types.TransactionBlockResponse, error) {
	reply := &types.TransactionBlockResponse{}
	err := c.send(ctx, "admin.publishPackage", &service.PublishPackageArgs{Dir: dir, Sender: sender}, reply)
	return reply, err
}

// PublishModules publishes base64 modules compiled by the caller.
func (c *Client) PublishModules(ctx context.Context, modules, dependencies []string, sender types.Address) (*types.TransactionBlockResponse, error) {
	reply := &types.TransactionBlockResponse{}
	err := c.send(ctx, "admin.publishModules", &service.PublishModulesArgs{
		Modules:      modules,
		Dependencies: dependencies,
		Sender:       sender,
	}, reply)
	return reply, err
}
