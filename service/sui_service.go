// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"encoding/json"
	"net/http"

	"github.com/ava-labs/movesandbox/adapter"
)

// SuiService exposes the client surface of an adapter.
type SuiService struct{ adapter *adapter.Adapter }

// CallArgs name a client method and carry its params as a JSON object.
type CallArgs struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// CallReply holds the JSON result of a client method.
type CallReply struct {
	Result json.RawMessage `json:"result"`
}

// Call invokes a client method. The sui_ and suix_ namespaces are accepted.
func (s *SuiService) Call(r *http.Request, args *CallArgs, reply *CallReply) error {
	result, err := s.adapter.Call(r.Context(), args.Method, args.Params)
	if err != nil {
		return err
	}
	reply.Result = result
	return nil
}

// MethodsReply lists method names.
type MethodsReply struct {
	Methods []string `json:"methods"`
}

// SupportedMethods lists the client methods served locally.
func (s *SuiService) SupportedMethods(_ *http.Request, _ *struct{}, reply *MethodsReply) error {
	reply.Methods = s.adapter.SupportedMethods()
	return nil
}
