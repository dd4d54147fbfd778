// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnsupported is matched by every UnsupportedError.
	ErrUnsupported = errors.New("not yet supported")
	// ErrInvalidParams is returned by Call when the params do not decode
	// into the arguments of the method.
	ErrInvalidParams = errors.New("invalid params")

	errNoTransaction = errors.New("transaction input holds neither bytes nor a builder")
	errNoSigner      = errors.New("signer is required")
)

// UnsupportedError is returned by every client method the sandbox does not
// implement. Args holds the JSON rendering of the call arguments.
type UnsupportedError struct {
	Method string
	Args   string
}

func newUnsupportedError(method string, args ...interface{}) *UnsupportedError {
	if args == nil {
		args = []interface{}{}
	}
	rendered, err := json.Marshal(args)
	if err != nil {
		rendered = []byte(fmt.Sprintf("%v", args))
	}
	return &UnsupportedError{Method: method, Args: string(rendered)}
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("method %s(%s) %s", e.Method, e.Args, ErrUnsupported)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }
