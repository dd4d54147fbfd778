// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"math/big"

	"github.com/ava-labs/movesandbox/types"
)

type balanceKey struct {
	owner    types.Owner
	coinType string
}

// balanceTracker sums the net balance change per owner and coin type.
type balanceTracker struct {
	order  []balanceKey
	deltas map[balanceKey]*big.Int
}

func newBalanceTracker() *balanceTracker {
	return &balanceTracker{deltas: make(map[balanceKey]*big.Int)}
}

// add credits the balance of a coin to its owner, or debits it when
// [credit] is false. Non-coin objects are ignored.
func (b *balanceTracker) add(obj *object, credit bool) {
	coinType, ok := obj.coinType()
	if !ok {
		return
	}
	key := balanceKey{owner: obj.owner(), coinType: coinType}
	delta, ok := b.deltas[key]
	if !ok {
		delta = new(big.Int)
		b.deltas[key] = delta
		b.order = append(b.order, key)
	}
	amount := new(big.Int).SetUint64(obj.Balance)
	if credit {
		delta.Add(delta, amount)
	} else {
		delta.Sub(delta, amount)
	}
}

// changes lists the non-zero changes in first-touched order.
func (b *balanceTracker) changes() []types.BalanceChange {
	var out []types.BalanceChange
	for _, key := range b.order {
		delta := b.deltas[key]
		if delta.Sign() == 0 {
			continue
		}
		out = append(out, types.BalanceChange{
			Owner:    key.owner,
			CoinType: key.coinType,
			Amount:   delta.String(),
		})
	}
	return out
}
