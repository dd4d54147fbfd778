// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	cjson "github.com/ava-labs/avalanchego/utils/json"
)

// Coin is a coin object as reported by getCoins.
type Coin struct {
	CoinType            string       `json:"coinType"`
	CoinObjectID        ObjectID     `json:"coinObjectId"`
	Version             cjson.Uint64 `json:"version"`
	Digest              Digest       `json:"digest"`
	Balance             cjson.Uint64 `json:"balance"`
	PreviousTransaction Digest       `json:"previousTransaction"`
}

// Balance is the reply of getBalance.
type Balance struct {
	Owner           Address           `json:"owner"`
	CoinType        string            `json:"coinType"`
	CoinObjectCount int               `json:"coinObjectCount"`
	TotalBalance    cjson.Uint64      `json:"totalBalance"`
	LockedBalance   map[string]string `json:"lockedBalance"`
}

// CoinPage is one page of getCoins.
type CoinPage struct {
	Data        []Coin    `json:"data"`
	NextCursor  *ObjectID `json:"nextCursor"`
	HasNextPage bool      `json:"hasNextPage"`
}

// GetBalanceParams are the arguments of getBalance. An empty CoinType means
// SuiCoinType.
type GetBalanceParams struct {
	Owner    Address `json:"owner"`
	CoinType string  `json:"coinType,omitempty"`
}

// GetCoinsParams are the arguments of getCoins.
type GetCoinsParams struct {
	Owner    Address   `json:"owner"`
	CoinType string    `json:"coinType,omitempty"`
	Cursor   *ObjectID `json:"cursor,omitempty"`
	Limit    *uint     `json:"limit,omitempty"`
}

// CoinTypeOrDefault returns [coinType], or SuiCoinType when it is empty.
func CoinTypeOrDefault(coinType string) string {
	if coinType == "" {
		return SuiCoinType
	}
	return NormalizeTypeTag(coinType)
}
