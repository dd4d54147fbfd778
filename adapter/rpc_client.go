// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adapter

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ava-labs/movesandbox/types"
)

// QueryClient is the read-only part of the client surface. Transaction
// builders resolve gas and object references through it.
type QueryClient interface {
	GetBalance(ctx context.Context, params types.GetBalanceParams) (*types.Balance, error)
	GetCoins(ctx context.Context, params types.GetCoinsParams) (*types.CoinPage, error)
	GetObject(ctx context.Context, params types.GetObjectParams) (*types.ObjectResponse, error)
	MultiGetObjects(ctx context.Context, params types.MultiGetObjectsParams) ([]*types.ObjectResponse, error)
	GetReferenceGasPrice(ctx context.Context) (*big.Int, error)
	GetNormalizedMoveFunction(ctx context.Context, params types.GetNormalizedMoveFunctionParams) (*types.NormalizedMoveFunction, error)
	DryRunTransactionBlock(ctx context.Context, params types.DryRunTransactionBlockParams) (*types.DryRunTransactionBlockResponse, error)
}

// RPCClient is the Sui client surface. Methods outside the locally served
// subset take their arguments untyped and fail with an UnsupportedError.
type RPCClient interface {
	QueryClient

	// Transactions
	ExecuteTransactionBlock(ctx context.Context, params types.ExecuteTransactionBlockParams) (*types.TransactionBlockResponse, error)
	SignAndExecuteTransaction(ctx context.Context, req SignAndExecuteRequest) (*types.TransactionBlockResponse, error)
	WaitForTransaction(ctx context.Context, params types.GetTransactionBlockParams) (*types.TransactionBlockResponse, error)
	GetTransactionBlock(ctx context.Context, params types.GetTransactionBlockParams) (*types.TransactionBlockResponse, error)
	QueryTransactionBlocks(ctx context.Context, params types.QueryTransactionBlocksParams) (*types.TransactionBlocksPage, error)
	MultiGetTransactionBlocks(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetTotalTransactionBlocks(ctx context.Context, params interface{}) (json.RawMessage, error)
	DevInspectTransactionBlock(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Objects
	TryGetPastObject(ctx context.Context, params types.TryGetPastObjectParams) (*types.PastObjectRead, error)
	GetDynamicFields(ctx context.Context, params types.GetDynamicFieldsParams) (*types.DynamicFieldPage, error)
	GetDynamicFieldObject(ctx context.Context, params types.GetDynamicFieldObjectParams) (*types.ObjectResponse, error)
	GetOwnedObjects(ctx context.Context, params interface{}) (json.RawMessage, error)
	TryMultiGetPastObjects(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Coins
	GetAllBalances(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetAllCoins(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetCoinMetadata(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetTotalSupply(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Checkpoints
	GetLatestCheckpointSequenceNumber(ctx context.Context) (string, error)
	GetCheckpoint(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetCheckpoints(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Events and subscriptions
	QueryEvents(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetEvents(ctx context.Context, params interface{}) (json.RawMessage, error)
	SubscribeEvent(ctx context.Context, params interface{}) (json.RawMessage, error)
	SubscribeTransaction(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Move introspection
	GetMoveFunctionArgTypes(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetNormalizedMoveModulesByPackage(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetNormalizedMoveModule(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetNormalizedMoveStruct(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Governance
	GetLatestSuiSystemState(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetStakes(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetStakesByIDs(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetCommitteeInfo(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetValidatorsApy(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetCurrentEpoch(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetEpochs(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetEpochMetrics(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Name service
	ResolveNameServiceAddress(ctx context.Context, params interface{}) (json.RawMessage, error)
	ResolveNameServiceNames(ctx context.Context, params interface{}) (json.RawMessage, error)

	// Node
	GetChainIdentifier(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetProtocolConfig(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetRPCAPIVersion(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetNetworkMetrics(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetAddressMetrics(ctx context.Context, params interface{}) (json.RawMessage, error)
	GetMoveCallMetrics(ctx context.Context, params interface{}) (json.RawMessage, error)
}
