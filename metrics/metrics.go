// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics instruments adapter dispatch and transaction outcomes.
package metrics

import (
	"time"
)

// Transaction outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// Metrics collects adapter metrics.
type Metrics interface {
	// ObserveCall records one adapter method call and whether it failed.
	ObserveCall(method string, duration time.Duration, err error)
	// IncUnsupported counts calls to methods without a local
	// implementation.
	IncUnsupported(method string)
	// ObserveTransaction records the outcome of a submitted transaction and
	// the gas it was charged.
	ObserveTransaction(outcome string, gasUsed uint64)
}
