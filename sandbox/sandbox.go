// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sandbox is the typed facade over an execution backend session.
//
// Every operation forwards to one capability group of the backend and
// decodes the JSON text it answers with into the matching types value.
// Inputs are normalized on the way in: ids are rendered in their canonical
// form, an empty coin type means the native coin and transaction payloads
// may be raw bytes or base64 text.
package sandbox

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/backend"
	"github.com/ava-labs/movesandbox/types"
)

// TxPayload is a transaction given either as raw bytes or as base64 text.
type TxPayload = types.TransactionPayload

// Client owns exactly one backend session. It is safe for concurrent use;
// Reset waits for in-flight calls.
type Client struct {
	factory backend.Factory

	lock    sync.RWMutex
	session backend.Backend
}

// New starts a session from [factory].
func New(factory backend.Factory) (*Client, error) {
	session, err := factory()
	if err != nil {
		return nil, fmt.Errorf("couldn't create backend session: %w", err)
	}
	return &Client{factory: factory, session: session}, nil
}

// Reset replaces the session with a fresh one from the factory. The old
// session is dropped only once the new one exists.
func (c *Client) Reset() error {
	session, err := c.factory()
	if err != nil {
		return fmt.Errorf("couldn't reset backend session: %w", err)
	}

	c.lock.Lock()
	c.session = session
	c.lock.Unlock()

	log.Info("reset backend session")
	return nil
}

// backend returns the current session. Callers hold the read lock.
func (c *Client) backend() backend.Backend { return c.session }

func (c *Client) rlock() func() {
	c.lock.RLock()
	return c.lock.RUnlock
}

func decode(op, payload string, v interface{}) error {
	if bytes.Equal(bytes.TrimSpace([]byte(payload)), []byte("null")) {
		return &DecodeError{Op: op, Payload: payload, Err: errNullResponse}
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &DecodeError{Op: op, Payload: payload, Err: err}
	}
	return nil
}

func wrap(op string, err error) error { return fmt.Errorf("%s: %w", op, err) }

// GetCoins lists the coins of [coinType] owned by [owner]. An empty coin
// type means the native coin.
func (c *Client) GetCoins(owner types.Address, coinType string) ([]types.Coin, error) {
	defer c.rlock()()

	out, err := c.backend().Coin().GetCoins(owner.String(), types.CoinTypeOrDefault(coinType))
	if err != nil {
		return nil, wrap("getCoins", err)
	}
	var coins []types.Coin
	if err := decode("getCoins", out, &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// GetBalance sums the coins of [coinType] owned by [owner].
func (c *Client) GetBalance(owner types.Address, coinType string) (uint64, error) {
	defer c.rlock()()

	balance, err := c.backend().Coin().GetBalance(owner.String(), types.CoinTypeOrDefault(coinType))
	if err != nil {
		return 0, wrap("getBalance", err)
	}
	return balance, nil
}

// ExecuteTransactionBlock submits a signed transaction. A rejected
// transaction is not an error: its response carries Errors.
func (c *Client) ExecuteTransactionBlock(tx TxPayload, signatures ...string) (*types.TransactionBlockResponse, error) {
	defer c.rlock()()

	if signatures == nil {
		signatures = []string{}
	}
	out, err := c.backend().Transaction().Execute(tx.Encode(), signatures)
	if err != nil {
		return nil, wrap("executeTransactionBlock", err)
	}
	resp := &types.TransactionBlockResponse{}
	if err := decode("executeTransactionBlock", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DryRunTransaction simulates a transaction without touching the ledger.
func (c *Client) DryRunTransaction(tx TxPayload) (*types.DryRunTransactionBlockResponse, error) {
	defer c.rlock()()

	out, err := c.backend().Transaction().DryRun(tx.Encode())
	if err != nil {
		return nil, wrap("dryRunTransaction", err)
	}
	resp := &types.DryRunTransactionBlockResponse{}
	if err := decode("dryRunTransaction", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransaction returns the recorded response of a transaction, or
// ErrTransactionNotFound.
func (c *Client) GetTransaction(digest types.Digest) (*types.TransactionBlockResponse, error) {
	defer c.rlock()()

	out, err := c.backend().Transaction().GetResponse(digest.String())
	if err != nil {
		return nil, wrap("getTransaction", err)
	}
	if bytes.Equal(bytes.TrimSpace([]byte(out)), []byte("null")) {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, digest)
	}
	resp := &types.TransactionBlockResponse{}
	if err := decode("getTransaction", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetObject returns the latest version of an object. Missing and deleted
// objects are reported in the response, not as errors.
func (c *Client) GetObject(id types.ObjectID) (*types.ObjectResponse, error) {
	defer c.rlock()()

	out, err := c.backend().Object().Get(id.String())
	if err != nil {
		return nil, wrap("getObject", err)
	}
	resp := &types.ObjectResponse{}
	if err := decode("getObject", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TryGetPastObject looks up one version of an object.
func (c *Client) TryGetPastObject(params types.TryGetPastObjectParams) (*types.PastObjectRead, error) {
	defer c.rlock()()

	out, err := c.backend().Object().GetPast(params.ID.String(), params.Version)
	if err != nil {
		return nil, wrap("tryGetPastObject", err)
	}
	read := &types.PastObjectRead{}
	if err := decode("tryGetPastObject", out, read); err != nil {
		return nil, err
	}
	return read, nil
}

// GetDynamicFields pages through the dynamic fields of a parent object.
func (c *Client) GetDynamicFields(params types.GetDynamicFieldsParams) (*types.DynamicFieldPage, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, wrap("getDynamicFields", err)
	}

	defer c.rlock()()

	out, err := c.backend().Object().GetDynamicFields(string(b))
	if err != nil {
		return nil, wrap("getDynamicFields", err)
	}
	page := &types.DynamicFieldPage{}
	if err := decode("getDynamicFields", out, page); err != nil {
		return nil, err
	}
	return page, nil
}

// GetDynamicFieldObject returns the dynamic field of a parent by name.
func (c *Client) GetDynamicFieldObject(params types.GetDynamicFieldObjectParams) (*types.ObjectResponse, error) {
	name, err := json.Marshal(params.Name)
	if err != nil {
		return nil, wrap("getDynamicFieldObject", err)
	}

	defer c.rlock()()

	out, err := c.backend().Object().GetDynamicFieldObject(params.ParentID.String(), string(name))
	if err != nil {
		return nil, wrap("getDynamicFieldObject", err)
	}
	resp := &types.ObjectResponse{}
	if err := decode("getDynamicFieldObject", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ClockTimestampMillis returns the ledger clock.
func (c *Client) ClockTimestampMillis() (uint64, error) {
	defer c.rlock()()

	ms, err := c.backend().Clock().GetTimeMs()
	if err != nil {
		return 0, wrap("getClockTimestampMillis", err)
	}
	return ms, nil
}

// AdvanceClockByMillis moves the ledger clock forward.
func (c *Client) AdvanceClockByMillis(ms uint64) error {
	defer c.rlock()()

	if err := c.backend().Clock().AdvanceByMillis(ms); err != nil {
		return wrap("advanceClockByMillis", err)
	}
	return nil
}

// SetClockTimestampMillis sets the ledger clock. It cannot move backwards.
func (c *Client) SetClockTimestampMillis(ms uint64) error {
	defer c.rlock()()

	if err := c.backend().Clock().SetTimeMs(ms); err != nil {
		return wrap("setClockTimestampMillis", err)
	}
	return nil
}

// RejectNextTransaction arms a one-shot rejection: the next submitted
// transaction is recorded with [reason] and not executed.
func (c *Client) RejectNextTransaction(reason string) error {
	defer c.rlock()()

	if err := c.backend().Behavior().SetRejectNextTransaction(reason); err != nil {
		return wrap("rejectNextTransaction", err)
	}
	return nil
}

func (c *Client) EnableSignatureChecks() error {
	defer c.rlock()()

	if err := c.backend().Behavior().EnableSignatureChecks(); err != nil {
		return wrap("enableSignatureChecks", err)
	}
	return nil
}

func (c *Client) DisableSignatureChecks() error {
	defer c.rlock()()

	if err := c.backend().Behavior().DisableSignatureChecks(); err != nil {
		return wrap("disableSignatureChecks", err)
	}
	return nil
}

// BumpCheckpoint advances the latest checkpoint by one.
func (c *Client) BumpCheckpoint() error {
	defer c.rlock()()

	if err := c.backend().Behavior().BumpCheckpoint(); err != nil {
		return wrap("bumpCheckpoint", err)
	}
	return nil
}

// MintSui creates a native coin of [amount] owned by [owner].
func (c *Client) MintSui(owner types.Address, amount uint64) (types.ObjectID, error) {
	defer c.rlock()()

	out, err := c.backend().Coin().MintSui(owner.String(), amount)
	if err != nil {
		return types.ObjectID{}, wrap("mintSui", err)
	}
	id, err := types.ParseObjectID(out)
	if err != nil {
		return types.ObjectID{}, &DecodeError{Op: "mintSui", Payload: out, Err: err}
	}
	return id, nil
}

// PublishPackage publishes compiled modules on behalf of [sender].
func (c *Client) PublishPackage(modules [][]byte, dependencies []types.ObjectID, sender types.Address) (*types.TransactionBlockResponse, error) {
	encoded := make([]string, len(modules))
	for i, m := range modules {
		encoded[i] = base64.StdEncoding.EncodeToString(m)
	}
	deps := make([]string, len(dependencies))
	for i, d := range dependencies {
		deps[i] = d.String()
	}

	defer c.rlock()()

	out, err := c.backend().Package().Publish(encoded, deps, sender.String())
	if err != nil {
		return nil, wrap("publishPackage", err)
	}
	resp := &types.TransactionBlockResponse{}
	if err := decode("publishPackage", out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetNormalizedFunction returns the normalized signature of a Move
// function.
func (c *Client) GetNormalizedFunction(params types.GetNormalizedMoveFunctionParams) (*types.NormalizedMoveFunction, error) {
	defer c.rlock()()

	out, err := c.backend().Package().GetNormalizedMoveFunction(params.Package.String(), params.Module, params.Function)
	if err != nil {
		return nil, wrap("getNormalizedFunction", err)
	}
	fn := &types.NormalizedMoveFunction{}
	if err := decode("getNormalizedFunction", out, fn); err != nil {
		return nil, err
	}
	return fn, nil
}

// QueryTransactionBlocks lists recorded transactions in execution order.
func (c *Client) QueryTransactionBlocks(params types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, wrap("queryTransactionBlocks", err)
	}

	defer c.rlock()()

	out, err := c.backend().Transaction().QueryBlocks(string(b))
	if err != nil {
		return nil, wrap("queryTransactionBlocks", err)
	}
	page := &types.TransactionBlocksPage{}
	if err := decode("queryTransactionBlocks", out, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) ReferenceGasPrice() (uint64, error) {
	defer c.rlock()()

	price, err := c.backend().State().GetReferenceGasPrice()
	if err != nil {
		return 0, wrap("getReferenceGasPrice", err)
	}
	return price, nil
}

func (c *Client) LatestCheckpoint() (uint64, error) {
	defer c.rlock()()

	checkpoint, err := c.backend().State().GetLatestCheckpoint()
	if err != nil {
		return 0, wrap("getLatestCheckpoint", err)
	}
	return checkpoint, nil
}

// TakeSnapshot serializes the ledger state of the session.
func (c *Client) TakeSnapshot() ([]byte, error) {
	defer c.rlock()()

	snapshot, err := c.backend().Storage().TakeSnapshot()
	if err != nil {
		return nil, wrap("takeSnapshot", err)
	}
	return snapshot, nil
}

// RestoreSnapshot replaces the ledger state of the session.
func (c *Client) RestoreSnapshot(snapshot []byte) error {
	defer c.rlock()()

	if err := c.backend().Storage().RestoreFromSnapshot(snapshot); err != nil {
		return wrap("restoreSnapshot", err)
	}
	return nil
}
