// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/types"
)

// handler decodes JSON params into the arguments of one method and calls
// it.
type handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// methodPrefixes are the JSON-RPC namespaces stripped from method names.
var methodPrefixes = []string{"suix_", "sui_"}

// newRegistry maps the methods Call serves onto handlers bound to [a].
func (a *Adapter) newRegistry() map[string]handler {
	return map[string]handler{
		"getBalance": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetBalanceParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetBalance(ctx, params)
		},
		"getCoins": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetCoinsParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetCoins(ctx, params)
		},
		"executeTransactionBlock": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.ExecuteTransactionBlockParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.ExecuteTransactionBlock(ctx, params)
		},
		"dryRunTransactionBlock": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.DryRunTransactionBlockParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.DryRunTransactionBlock(ctx, params)
		},
		"getObject": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetObjectParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetObject(ctx, params)
		},
		"multiGetObjects": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.MultiGetObjectsParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.MultiGetObjects(ctx, params)
		},
		"waitForTransaction": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetTransactionBlockParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.WaitForTransaction(ctx, params)
		},
		"getTransactionBlock": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetTransactionBlockParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetTransactionBlock(ctx, params)
		},
		"getNormalizedMoveFunction": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetNormalizedMoveFunctionParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetNormalizedMoveFunction(ctx, params)
		},
		"getReferenceGasPrice": func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			price, err := a.GetReferenceGasPrice(ctx)
			if err != nil {
				return nil, err
			}
			// big integers travel as decimal strings
			return price.String(), nil
		},
		"tryGetPastObject": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.TryGetPastObjectParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.TryGetPastObject(ctx, params)
		},
		"getDynamicFields": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetDynamicFieldsParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetDynamicFields(ctx, params)
		},
		"getDynamicFieldObject": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.GetDynamicFieldObjectParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.GetDynamicFieldObject(ctx, params)
		},
		"queryTransactionBlocks": func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var params types.QueryTransactionBlocksParams
			if err := decodeParams(raw, &params); err != nil {
				return nil, err
			}
			return a.QueryTransactionBlocks(ctx, params)
		},
		"getLatestCheckpointSequenceNumber": func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return a.GetLatestCheckpointSequenceNumber(ctx)
		},
	}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func decodeParams(raw json.RawMessage, v interface{}) error {
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// MethodName strips the JSON-RPC namespace from [method].
func MethodName(method string) string {
	for _, prefix := range methodPrefixes {
		if strings.HasPrefix(method, prefix) {
			return strings.TrimPrefix(method, prefix)
		}
	}
	return method
}

// SupportedMethods lists the methods Call serves, sorted.
func (a *Adapter) SupportedMethods() []string {
	names := make([]string, 0, len(a.handlers))
	for name := range a.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes [method] with its params given as a JSON object and returns
// the JSON encoded result. Methods without a handler, including
// signAndExecuteTransaction which needs an in-process signer, fail with an
// UnsupportedError.
func (a *Adapter) Call(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	name := MethodName(method)
	start := time.Now()

	result, err := a.dispatch(ctx, name, params)
	a.metrics.ObserveCall(name, time.Since(start), err)
	if err != nil {
		log.Debug("call failed", "method", name, "error", err)
		return nil, err
	}
	return result, nil
}

func (a *Adapter) dispatch(ctx context.Context, name string, params json.RawMessage) (json.RawMessage, error) {
	h, ok := a.handlers[name]
	if !ok {
		if isNull(params) {
			return nil, a.unsupported(name, nil)
		}
		return nil, a.unsupported(name, params)
	}
	result, err := h(ctx, params)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("couldn't encode %s result: %w", name, err)
	}
	return b, nil
}
