// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adapter

import (
	"context"
	"encoding/json"
)

// unsupported counts the call and returns its UnsupportedError. A nil
// params renders as an empty argument list.
func (a *Adapter) unsupported(method string, params interface{}) error {
	a.metrics.IncUnsupported(method)
	if params == nil {
		return newUnsupportedError(method)
	}
	return newUnsupportedError(method, params)
}

func (a *Adapter) MultiGetTransactionBlocks(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("multiGetTransactionBlocks", params)
}

func (a *Adapter) GetTotalTransactionBlocks(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getTotalTransactionBlocks", params)
}

func (a *Adapter) DevInspectTransactionBlock(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("devInspectTransactionBlock", params)
}

func (a *Adapter) GetOwnedObjects(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getOwnedObjects", params)
}

func (a *Adapter) TryMultiGetPastObjects(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("tryMultiGetPastObjects", params)
}

func (a *Adapter) GetAllBalances(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getAllBalances", params)
}

func (a *Adapter) GetAllCoins(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getAllCoins", params)
}

func (a *Adapter) GetCoinMetadata(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getCoinMetadata", params)
}

func (a *Adapter) GetTotalSupply(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getTotalSupply", params)
}

func (a *Adapter) GetCheckpoint(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getCheckpoint", params)
}

func (a *Adapter) GetCheckpoints(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getCheckpoints", params)
}

func (a *Adapter) QueryEvents(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("queryEvents", params)
}

func (a *Adapter) GetEvents(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getEvents", params)
}

func (a *Adapter) SubscribeEvent(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("subscribeEvent", params)
}

func (a *Adapter) SubscribeTransaction(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("subscribeTransaction", params)
}

func (a *Adapter) GetMoveFunctionArgTypes(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getMoveFunctionArgTypes", params)
}

func (a *Adapter) GetNormalizedMoveModulesByPackage(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getNormalizedMoveModulesByPackage", params)
}

func (a *Adapter) GetNormalizedMoveModule(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getNormalizedMoveModule", params)
}

func (a *Adapter) GetNormalizedMoveStruct(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getNormalizedMoveStruct", params)
}

func (a *Adapter) GetLatestSuiSystemState(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getLatestSuiSystemState", params)
}

func (a *Adapter) GetStakes(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getStakes", params)
}

func (a *Adapter) GetStakesByIDs(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getStakesByIds", params)
}

func (a *Adapter) GetCommitteeInfo(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getCommitteeInfo", params)
}

func (a *Adapter) GetValidatorsApy(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getValidatorsApy", params)
}

func (a *Adapter) GetCurrentEpoch(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getCurrentEpoch", params)
}

func (a *Adapter) GetEpochs(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getEpochs", params)
}

func (a *Adapter) GetEpochMetrics(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getEpochMetrics", params)
}

func (a *Adapter) ResolveNameServiceAddress(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("resolveNameServiceAddress", params)
}

func (a *Adapter) ResolveNameServiceNames(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("resolveNameServiceNames", params)
}

func (a *Adapter) GetChainIdentifier(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getChainIdentifier", params)
}

func (a *Adapter) GetProtocolConfig(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getProtocolConfig", params)
}

func (a *Adapter) GetRPCAPIVersion(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getRpcApiVersion", params)
}

func (a *Adapter) GetNetworkMetrics(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getNetworkMetrics", params)
}

func (a *Adapter) GetAddressMetrics(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getAddressMetrics", params)
}

func (a *Adapter) GetMoveCallMetrics(_ context.Context, params interface{}) (json.RawMessage, error) {
	return nil, a.unsupported("getMoveCallMetrics", params)
}
