// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"time"
)

var _ Metrics = &NopMetrics{}

// NopMetrics discards every observation.
type NopMetrics struct{}

func NewNopMetrics() *NopMetrics { return &NopMetrics{} }

func (*NopMetrics) ObserveCall(string, time.Duration, error) {}
func (*NopMetrics) IncUnsupported(string)                    {}
func (*NopMetrics) ObserveTransaction(string, uint64)        {}
