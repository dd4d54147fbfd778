// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/utils/formatting"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/publish"
	"github.com/ava-labs/movesandbox/sandbox"
	"github.com/ava-labs/movesandbox/types"
)

var errNoCompiler = errors.New("package publishing from source is disabled")

// AdminService controls the sandbox session: funding, clock, behavior
// switches, snapshots and publishing.
type AdminService struct {
	sandbox  *sandbox.Client
	compiler *publish.Compiler
}

type MintSuiArgs struct {
	Owner  types.Address `json:"owner"`
	Amount cjson.Uint64  `json:"amount"`
}

type MintSuiReply struct {
	ObjectID types.ObjectID `json:"objectId"`
}

// MintSui creates a SUI coin out of thin air.
func (s *AdminService) MintSui(_ *http.Request, args *MintSuiArgs, reply *MintSuiReply) error {
	id, err := s.sandbox.MintSui(args.Owner, uint64(args.Amount))
	if err != nil {
		return err
	}
	reply.ObjectID = id
	return nil
}

type ClockArgs struct {
	Millis cjson.Uint64 `json:"millis"`
}

type ClockReply struct {
	TimestampMs cjson.Uint64 `json:"timestampMs"`
}

func (s *AdminService) GetClock(_ *http.Request, _ *struct{}, reply *ClockReply) error {
	ms, err := s.sandbox.ClockTimestampMillis()
	if err != nil {
		return err
	}
	reply.TimestampMs = cjson.Uint64(ms)
	return nil
}

func (s *AdminService) AdvanceClock(_ *http.Request, args *ClockArgs, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.AdvanceClockByMillis(uint64(args.Millis)))
}

// SetClock sets the clock to [args.Millis]. It cannot move backwards.
func (s *AdminService) SetClock(_ *http.Request, args *ClockArgs, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.SetClockTimestampMillis(uint64(args.Millis)))
}

type RejectArgs struct {
	Reason string `json:"reason"`
}

// RejectNextTransaction makes the next submitted transaction fail with
// [args.Reason].
func (s *AdminService) RejectNextTransaction(_ *http.Request, args *RejectArgs, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.RejectNextTransaction(args.Reason))
}

func (s *AdminService) EnableSignatureChecks(_ *http.Request, _ *struct{}, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.EnableSignatureChecks())
}

func (s *AdminService) DisableSignatureChecks(_ *http.Request, _ *struct{}, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.DisableSignatureChecks())
}

func (s *AdminService) BumpCheckpoint(_ *http.Request, _ *struct{}, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.BumpCheckpoint())
}

// Reset discards all state and starts over from genesis.
func (s *AdminService) Reset(_ *http.Request, _ *struct{}, reply *api.SuccessResponse) error {
	return respond(reply, s.sandbox.Reset())
}

type SnapshotReply struct {
	Snapshot string              `json:"snapshot"`
	Encoding formatting.Encoding `json:"encoding"`
}

func (s *AdminService) TakeSnapshot(_ *http.Request, _ *struct{}, reply *SnapshotReply) error {
	snapshot, err := s.sandbox.TakeSnapshot()
	if err != nil {
		return err
	}
	encoded, err := formatting.EncodeWithChecksum(formatting.Hex, snapshot)
	if err != nil {
		return fmt.Errorf("couldn't encode snapshot: %w", err)
	}
	reply.Snapshot = encoded
	reply.Encoding = formatting.Hex
	return nil
}

type RestoreSnapshotArgs struct {
	Snapshot string              `json:"snapshot"`
	Encoding formatting.Encoding `json:"encoding"`
}

func (s *AdminService) RestoreSnapshot(_ *http.Request, args *RestoreSnapshotArgs, reply *api.SuccessResponse) error {
	snapshot, err := formatting.Decode(args.Encoding, args.Snapshot)
	if err != nil {
		return fmt.Errorf("couldn't decode snapshot: %w", err)
	}
	return respond(reply, s.sandbox.RestoreSnapshot(snapshot))
}

// respond reports the outcome of an admin call with no result.
func respond(reply *api.SuccessResponse, err error) error {
	reply.Success = err == nil
	return err
}

type PublishPackageArgs struct {
	// Dir is a Move package directory on the server's file system.
	Dir    string        `json:"dir"`
	Sender types.Address `json:"sender"`
}

// PublishPackage compiles a Move package with the server's sui toolchain
// and publishes it.
func (s *AdminService) PublishPackage(r *http.Request, args *PublishPackageArgs, reply *types.TransactionBlockResponse) error {
	if s.compiler == nil {
		return errNoCompiler
	}
	resp, err := s.compiler.Publish(r.Context(), s.sandbox, args.Dir, args.Sender)
	if err != nil {
		return err
	}
	*reply = *resp
	return nil
}

type PublishModulesArgs struct {
	// Modules are base64 compiled modules.
	Modules      []string      `json:"modules"`
	Dependencies []string      `json:"dependencies"`
	Sender       types.Address `json:"sender"`
}

// PublishModules publishes modules compiled by the caller. Dependencies
// are reconciled with the framework packages.
func (s *AdminService) PublishModules(_ *http.Request, args *PublishModulesArgs, reply *types.TransactionBlockResponse) error {
	modules := make([][]byte, len(args.Modules))
	for i, encoded := range args.Modules {
		module, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("couldn't decode module %d: %w", i, err)
		}
		modules[i] = module
	}
	deps, err := publish.ReconcileDependencies(args.Dependencies)
	if err != nil {
		return err
	}
	resp, err := s.sandbox.PublishPackage(modules, deps, args.Sender)
	if err != nil {
		return err
	}
	*reply = *resp
	return nil
}
