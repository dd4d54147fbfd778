// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adapter

import (
	"context"
	"fmt"

	"github.com/ava-labs/movesandbox/types"
)

// Signer signs transaction bytes on behalf of one address.
type Signer interface {
	Address() types.Address
	SignTransaction(ctx context.Context, txBytes []byte) (*types.SignedTransaction, error)
}

// TransactionBuilder assembles transaction bytes, resolving whatever it
// needs through a QueryClient.
type TransactionBuilder interface {
	SetSenderIfNotSet(sender types.Address)
	Build(ctx context.Context, client QueryClient) ([]byte, error)
}

// TransactionInput is a transaction that is either already built or still
// to be built by a TransactionBuilder.
type TransactionInput struct {
	raw     []byte
	builder TransactionBuilder
}

// RawTransaction wraps built transaction bytes.
func RawTransaction(txBytes []byte) TransactionInput { return TransactionInput{raw: txBytes} }

// Unbuilt wraps a builder. The signer's address becomes the sender unless
// the builder already has one.
func Unbuilt(builder TransactionBuilder) TransactionInput { return TransactionInput{builder: builder} }

// SignAndExecuteRequest are the arguments of SignAndExecuteTransaction.
type SignAndExecuteRequest struct {
	Transaction TransactionInput
	Signer      Signer
	Options     *types.TransactionBlockResponseOptions
	RequestType string
}

// SignAndExecuteTransaction builds the transaction if needed, signs it and
// submits it. Nothing is retried; the first failing step is returned.
func (a *Adapter) SignAndExecuteTransaction(ctx context.Context, req SignAndExecuteRequest) (*types.TransactionBlockResponse, error) {
	if req.Signer == nil {
		return nil, errNoSigner
	}

	var txBytes []byte
	switch {
	case req.Transaction.raw != nil:
		txBytes = req.Transaction.raw
	case req.Transaction.builder != nil:
		req.Transaction.builder.SetSenderIfNotSet(req.Signer.Address())
		built, err := req.Transaction.builder.Build(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("couldn't build transaction: %w", err)
		}
		txBytes = built
	default:
		return nil, errNoTransaction
	}

	signed, err := req.Signer.SignTransaction(ctx, txBytes)
	if err != nil {
		return nil, fmt.Errorf("couldn't sign transaction: %w", err)
	}

	return a.ExecuteTransactionBlock(ctx, types.ExecuteTransactionBlockParams{
		TransactionBlock: types.EncodedPayload(signed.Bytes),
		Signature:        types.Signatures{signed.Signature},
		Options:          req.Options,
		RequestType:      req.RequestType,
	})
}
