// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sandbox

import (
	"github.com/ava-labs/movesandbox/backend"
)

var _ backend.Backend = &fakeBackend{}

// fakeBackend answers every call with a canned response, or with err when
// set.
type fakeBackend struct {
	responses map[string]string
	err       error
}

func (f *fakeBackend) answer(key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.responses[key], nil
}

func (f *fakeBackend) Coin() backend.CoinAPI               { return fakeCoin{f} }
func (f *fakeBackend) Transaction() backend.TransactionAPI { return fakeTransaction{f} }
func (f *fakeBackend) Object() backend.ObjectAPI           { return fakeObject{f} }
func (f *fakeBackend) Clock() backend.ClockAPI             { return fakeClock{f} }
func (f *fakeBackend) Behavior() backend.BehaviorAPI       { return fakeBehavior{f} }
func (f *fakeBackend) Package() backend.PackageAPI         { return fakePackage{f} }
func (f *fakeBackend) State() backend.StateAPI             { return fakeState{f} }
func (f *fakeBackend) Storage() backend.StorageAPI         { return fakeStorage{f} }

type (
	fakeCoin        struct{ *fakeBackend }
	fakeTransaction struct{ *fakeBackend }
	fakeObject      struct{ *fakeBackend }
	fakeClock       struct{ *fakeBackend }
	fakeBehavior    struct{ *fakeBackend }
	fakePackage     struct{ *fakeBackend }
	fakeState       struct{ *fakeBackend }
	fakeStorage     struct{ *fakeBackend }
)

func (f fakeCoin) GetBalance(string, string) (uint64, error)       { return 0, f.err }
func (f fakeCoin) GetCoins(string, string) (string, error)         { return f.answer("getCoins") }
func (f fakeCoin) MintSui(string, uint64) (string, error)          { return f.answer("mint") }
func (f fakeTransaction) Execute(string, []string) (string, error) { return f.answer("execute") }
func (f fakeTransaction) DryRun(string) (string, error)            { return f.answer("dryRun") }
func (f fakeTransaction) GetResponse(string) (string, error)       { return f.answer("getResponse") }
func (f fakeTransaction) QueryBlocks(string) (string, error)       { return f.answer("queryBlocks") }
func (f fakeObject) Get(string) (string, error)                    { return f.answer("get") }
func (f fakeObject) GetPast(string, uint64) (string, error)        { return f.answer("getPast") }
func (f fakeObject) GetDynamicFields(string) (string, error)       { return f.answer("getDynamicFields") }
func (f fakeObject) GetDynamicFieldObject(string, string) (string, error) {
	return f.answer("getDynamicFieldObject")
}
func (f fakeClock) GetTimeMs() (uint64, error)                           { return 0, f.err }
func (f fakeClock) AdvanceByMillis(uint64) error                         { return f.err }
func (f fakeClock) SetTimeMs(uint64) error                               { return f.err }
func (f fakeBehavior) SetRejectNextTransaction(string) error             { return f.err }
func (f fakeBehavior) EnableSignatureChecks() error                      { return f.err }
func (f fakeBehavior) DisableSignatureChecks() error                     { return f.err }
func (f fakeBehavior) BumpCheckpoint() error                             { return f.err }
func (f fakePackage) Publish([]string, []string, string) (string, error) { return f.answer("publish") }
func (f fakePackage) GetNormalizedMoveFunction(string, string, string) (string, error) {
	return f.answer("getNormalizedMoveFunction")
}
func (f fakeState) GetReferenceGasPrice() (uint64, error)      { return 0, f.err }
func (f fakeState) GetLatestCheckpoint() (uint64, error)       { return 0, f.err }
func (f fakeStorage) TakeSnapshot() ([]byte, error)            { return nil, f.err }
func (f fakeStorage) RestoreFromSnapshot([]byte) error         { return f.err }
