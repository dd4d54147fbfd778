// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sandbox

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every DecodeError.
	ErrDecode = errors.New("couldn't decode backend response")
	// ErrTransactionNotFound is returned for digests the backend has never
	// seen.
	ErrTransactionNotFound = errors.New("transaction not found")

	errNullResponse = errors.New("backend returned null")
)

// DecodeError reports a backend response that could not be decoded into
// the type of its operation.
type DecodeError struct {
	Op      string
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v: %v (payload %q)", e.Op, ErrDecode, e.Err, truncate(e.Payload, 256))
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
