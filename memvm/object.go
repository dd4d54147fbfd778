// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/movesandbox/types"
)

const (
	packageType     = "package"
	upgradeCapType  = "0x2::package::UpgradeCap"
	clockType       = "0x2::clock::Clock"
	systemStateType = "0x3::sui_system::SuiSystemState"

	dynamicFieldTypePrefix = "0x2::dynamic_field::Field<"
)

// object is one version of a stored object. A deleted object keeps a record
// at its deletion version with Deleted set.
type object struct {
	ID                   types.ObjectID `serialize:"true"`
	Version              uint64         `serialize:"true"`
	Digest               types.Digest   `serialize:"true"`
	Type                 string         `serialize:"true"`
	OwnerKind            uint8          `serialize:"true"`
	Owner                types.Address  `serialize:"true"`
	InitialSharedVersion uint64         `serialize:"true"`
	Balance              uint64         `serialize:"true"`
	Fields               []byte         `serialize:"true"`
	Modules              [][]byte       `serialize:"true"`
	NameType             string         `serialize:"true"`
	Name                 []byte         `serialize:"true"`
	PreviousTransaction  types.Digest   `serialize:"true"`
	Deleted              bool           `serialize:"true"`
}

func (o *object) owner() types.Owner {
	return types.Owner{
		Kind:                 types.OwnerKind(o.OwnerKind),
		Address:              o.Owner,
		InitialSharedVersion: o.InitialSharedVersion,
	}
}

func (o *object) setOwner(owner types.Owner) {
	o.OwnerKind = uint8(owner.Kind)
	o.Owner = owner.Address
	o.InitialSharedVersion = owner.InitialSharedVersion
}

func (o *object) ownedBy(addr types.Address) bool {
	return o.OwnerKind == uint8(types.AddressOwner) && o.Owner == addr
}

func (o *object) immutable() bool { return o.OwnerKind == uint8(types.Immutable) }

func (o *object) shared() bool { return o.OwnerKind == uint8(types.SharedOwner) }

func (o *object) isPackage() bool { return o.Type == packageType }

// coinType returns the coin type of a coin object.
func (o *object) coinType() (string, bool) { return types.CoinTypeOf(o.Type) }

func (o *object) isSui() bool {
	coinType, ok := o.coinType()
	return ok && coinType == types.SuiCoinType
}

func (o *object) clone() *object {
	c := *o
	return &c
}

func (o *object) ref() types.ObjectRef {
	return types.ObjectRef{ObjectID: o.ID, Version: o.Version, Digest: o.Digest}
}

// seal stamps the object with [version] and recomputes its digest.
func (o *object) seal(version uint64, tx types.Digest) error {
	o.Version = version
	o.PreviousTransaction = tx
	o.Digest = types.Digest{}
	b, err := Codec.Marshal(CodecVersion, o)
	if err != nil {
		return fmt.Errorf("couldn't seal object %s: %w", o.ID, err)
	}
	o.Digest = types.Digest(blake2b.Sum256(b))
	return nil
}

func dynamicFieldType(nameType, valueType string) string {
	return dynamicFieldTypePrefix + nameType + ", " + valueType + ">"
}

type uidJSON struct {
	ID types.ObjectID `json:"id"`
}

type moveObjectJSON struct {
	DataType          string      `json:"dataType"`
	Type              string      `json:"type"`
	HasPublicTransfer bool        `json:"hasPublicTransfer"`
	Fields            interface{} `json:"fields"`
}

type packageJSON struct {
	DataType     string            `json:"dataType"`
	Disassembled map[string]string `json:"disassembled"`
}

// content renders the parsed content of the object. [now] is the clock
// value, rendered into the clock object.
func (o *object) content(now uint64) (json.RawMessage, error) {
	if o.isPackage() {
		modules := make(map[string]string, len(o.Modules))
		for i, m := range o.Modules {
			modules[fmt.Sprintf("module_%d", i)] = base64.StdEncoding.EncodeToString(m)
		}
		return json.Marshal(packageJSON{DataType: "package", Disassembled: modules})
	}

	var fields interface{}
	switch {
	case o.ID == types.ClockObjectID:
		fields = map[string]interface{}{
			"id":           uidJSON{ID: o.ID},
			"timestamp_ms": cjson.Uint64(now),
		}
	case o.isCoin():
		fields = map[string]interface{}{
			"id":      uidJSON{ID: o.ID},
			"balance": cjson.Uint64(o.Balance),
		}
	case o.NameType != "":
		fields = map[string]interface{}{
			"id":    uidJSON{ID: o.ID},
			"name":  json.RawMessage(o.Name),
			"value": rawOrNull(o.Fields),
		}
	default:
		fields = rawOrNull(o.Fields)
	}
	return json.Marshal(moveObjectJSON{
		DataType:          "moveObject",
		Type:              o.Type,
		HasPublicTransfer: o.NameType == "" && !o.shared(),
		Fields:            fields,
	})
}

func (o *object) isCoin() bool {
	_, ok := o.coinType()
	return ok
}

func rawOrNull(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}

// data renders the RPC view of the object.
func (o *object) data(now uint64) (*types.ObjectData, error) {
	content, err := o.content(now)
	if err != nil {
		return nil, err
	}
	owner := o.owner()
	prev := o.PreviousTransaction
	rebate := cjson.Uint64(0)
	return &types.ObjectData{
		ObjectID:            o.ID,
		Version:             cjson.Uint64(o.Version),
		Digest:              o.Digest,
		Type:                o.Type,
		Owner:               &owner,
		PreviousTransaction: &prev,
		StorageRebate:       &rebate,
		Content:             content,
	}, nil
}

// coin renders the object as a coin record.
func (o *object) coin(coinType string) types.Coin {
	return types.Coin{
		CoinType:            coinType,
		CoinObjectID:        o.ID,
		Version:             cjson.Uint64(o.Version),
		Digest:              o.Digest,
		Balance:             cjson.Uint64(o.Balance),
		PreviousTransaction: o.PreviousTransaction,
	}
}
