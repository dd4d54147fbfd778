// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	cjson "github.com/ava-labs/avalanchego/utils/json"
)

// OwnerKind enumerates the ways an object can be owned.
type OwnerKind uint8

const (
	AddressOwner OwnerKind = iota + 1
	ObjectOwner
	SharedOwner
	Immutable
)

var (
	errUnknownOwner  = errors.New("unknown owner encoding")
	errUnknownStatus = errors.New("unknown past object status")
)

// Owner is the ownership of an object. Address holds the owning account for
// AddressOwner and the parent object for ObjectOwner.
type Owner struct {
	Kind                 OwnerKind
	Address              Address
	InitialSharedVersion uint64
}

// NewAddressOwner returns an owner for objects held by [addr].
func NewAddressOwner(addr Address) Owner { return Owner{Kind: AddressOwner, Address: addr} }

// NewObjectOwner returns an owner for child objects of [parent].
func NewObjectOwner(parent ObjectID) Owner {
	return Owner{Kind: ObjectOwner, Address: Address(parent)}
}

// NewSharedOwner returns a shared owner first shared at [version].
func NewSharedOwner(version uint64) Owner {
	return Owner{Kind: SharedOwner, InitialSharedVersion: version}
}

type sharedOwnerJSON struct {
	InitialSharedVersion uint64 `json:"initial_shared_version"`
}

func (o Owner) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case AddressOwner:
		return json.Marshal(map[string]Address{"AddressOwner": o.Address})
	case ObjectOwner:
		return json.Marshal(map[string]Address{"ObjectOwner": o.Address})
	case SharedOwner:
		return json.Marshal(map[string]sharedOwnerJSON{"Shared": {InitialSharedVersion: o.InitialSharedVersion}})
	case Immutable:
		return []byte(`"Immutable"`), nil
	default:
		return nil, fmt.Errorf("%w: kind %d", errUnknownOwner, o.Kind)
	}
}

func (o *Owner) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte(`"Immutable"`)) {
		*o = Owner{Kind: Immutable}
		return nil
	}
	var tagged struct {
		AddressOwner *Address         `json:"AddressOwner"`
		ObjectOwner  *Address         `json:"ObjectOwner"`
		Shared       *sharedOwnerJSON `json:"Shared"`
	}
	if err := json.Unmarshal(b, &tagged); err != nil {
		return err
	}
	switch {
	case tagged.AddressOwner != nil:
		*o = NewAddressOwner(*tagged.AddressOwner)
	case tagged.ObjectOwner != nil:
		*o = Owner{Kind: ObjectOwner, Address: *tagged.ObjectOwner}
	case tagged.Shared != nil:
		*o = NewSharedOwner(tagged.Shared.InitialSharedVersion)
	default:
		return fmt.Errorf("%w: %s", errUnknownOwner, b)
	}
	return nil
}

// ObjectRef pins an object to a version and digest.
type ObjectRef struct {
	ObjectID ObjectID `json:"objectId"`
	Version  uint64   `json:"version"`
	Digest   Digest   `json:"digest"`
}

// ObjectData is the content of an object at one version.
type ObjectData struct {
	ObjectID            ObjectID        `json:"objectId"`
	Version             cjson.Uint64    `json:"version"`
	Digest              Digest          `json:"digest"`
	Type                string          `json:"type,omitempty"`
	Owner               *Owner          `json:"owner,omitempty"`
	PreviousTransaction *Digest         `json:"previousTransaction,omitempty"`
	StorageRebate       *cjson.Uint64   `json:"storageRebate,omitempty"`
	Content             json.RawMessage `json:"content,omitempty"`
}

// Ref returns the reference of this object version.
func (o *ObjectData) Ref() ObjectRef {
	return ObjectRef{ObjectID: o.ObjectID, Version: uint64(o.Version), Digest: o.Digest}
}

// Object response error codes.
const (
	CodeNotExists            = "notExists"
	CodeDynamicFieldNotFound = "dynamicFieldNotFound"
	CodeDeleted              = "deleted"
	CodeUnknown              = "unknown"
)

// ObjectResponseError explains why an object response carries no data.
type ObjectResponseError struct {
	Code           string    `json:"code"`
	ObjectID       *ObjectID `json:"object_id,omitempty"`
	ParentObjectID *ObjectID `json:"parent_object_id,omitempty"`
}

// ObjectResponse is the reply of object lookups. Exactly one of Data and
// Error is set.
type ObjectResponse struct {
	Data  *ObjectData          `json:"data,omitempty"`
	Error *ObjectResponseError `json:"error,omitempty"`
}

// GetObjectParams are the arguments of getObject.
type GetObjectParams struct {
	ID      ObjectID           `json:"id"`
	Options *ObjectDataOptions `json:"options,omitempty"`
}

// MultiGetObjectsParams are the arguments of multiGetObjects.
type MultiGetObjectsParams struct {
	IDs     []ObjectID         `json:"ids"`
	Options *ObjectDataOptions `json:"options,omitempty"`
}

// ObjectDataOptions selects the object fields returned by the RPC. The
// local backend always returns every field.
type ObjectDataOptions struct {
	ShowType                bool `json:"showType,omitempty"`
	ShowOwner               bool `json:"showOwner,omitempty"`
	ShowPreviousTransaction bool `json:"showPreviousTransaction,omitempty"`
	ShowDisplay             bool `json:"showDisplay,omitempty"`
	ShowContent             bool `json:"showContent,omitempty"`
	ShowBcs                 bool `json:"showBcs,omitempty"`
	ShowStorageRebate       bool `json:"showStorageRebate,omitempty"`
}

// PastObjectStatus is the outcome of a past object lookup.
type PastObjectStatus string

const (
	VersionFound    PastObjectStatus = "VersionFound"
	VersionNotFound PastObjectStatus = "VersionNotFound"
	VersionTooHigh  PastObjectStatus = "VersionTooHigh"
	ObjectNotExists PastObjectStatus = "ObjectNotExists"
)

// TryGetPastObjectParams are the arguments of tryGetPastObject.
type TryGetPastObjectParams struct {
	ID      ObjectID           `json:"id"`
	Version uint64             `json:"version"`
	Options *ObjectDataOptions `json:"options,omitempty"`
}

// PastObjectRead is the result of tryGetPastObject. Object is set for
// VersionFound; AskedVersion is set for VersionNotFound and VersionTooHigh;
// LatestVersion is set for VersionTooHigh.
type PastObjectRead struct {
	Status        PastObjectStatus
	ObjectID      ObjectID
	Object        *ObjectData
	AskedVersion  uint64
	LatestVersion uint64
}

type versionTooHighJSON struct {
	ObjectID      ObjectID     `json:"object_id"`
	AskedVersion  cjson.Uint64 `json:"asked_version"`
	LatestVersion cjson.Uint64 `json:"latest_version"`
}

type pastObjectJSON struct {
	Status  PastObjectStatus `json:"status"`
	Details json.RawMessage  `json:"details"`
}

func (r PastObjectRead) MarshalJSON() ([]byte, error) {
	var details interface{}
	switch r.Status {
	case VersionFound:
		details = r.Object
	case VersionNotFound:
		details = []interface{}{r.ObjectID, cjson.Uint64(r.AskedVersion)}
	case VersionTooHigh:
		details = versionTooHighJSON{
			ObjectID:      r.ObjectID,
			AskedVersion:  cjson.Uint64(r.AskedVersion),
			LatestVersion: cjson.Uint64(r.LatestVersion),
		}
	case ObjectNotExists:
		details = r.ObjectID
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownStatus, r.Status)
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(pastObjectJSON{Status: r.Status, Details: raw})
}

func (r *PastObjectRead) UnmarshalJSON(b []byte) error {
	var envelope pastObjectJSON
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	out := PastObjectRead{Status: envelope.Status}
	switch envelope.Status {
	case VersionFound:
		out.Object = new(ObjectData)
		if err := json.Unmarshal(envelope.Details, out.Object); err != nil {
			return err
		}
		out.ObjectID = out.Object.ObjectID
	case VersionNotFound:
		var pair []json.RawMessage
		if err := json.Unmarshal(envelope.Details, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("VersionNotFound details must hold 2 entries, got %d", len(pair))
		}
		if err := json.Unmarshal(pair[0], &out.ObjectID); err != nil {
			return err
		}
		var version cjson.Uint64
		if err := json.Unmarshal(pair[1], &version); err != nil {
			return err
		}
		out.AskedVersion = uint64(version)
	case VersionTooHigh:
		var details versionTooHighJSON
		if err := json.Unmarshal(envelope.Details, &details); err != nil {
			return err
		}
		out.ObjectID = details.ObjectID
		out.AskedVersion = uint64(details.AskedVersion)
		out.LatestVersion = uint64(details.LatestVersion)
	case ObjectNotExists:
		if err := json.Unmarshal(envelope.Details, &out.ObjectID); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownStatus, envelope.Status)
	}
	*r = out
	return nil
}
