// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"encoding/json"
)

// DynamicFieldKind is the only dynamic field kind the local backend stores.
const DynamicFieldKind = "DynamicField"

// DynamicFieldName identifies a dynamic field under its parent object.
type DynamicFieldName struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// DynamicFieldInfo describes one dynamic field of a parent object.
type DynamicFieldInfo struct {
	Name       DynamicFieldName `json:"name"`
	BcsName    string           `json:"bcsName"`
	Type       string           `json:"type"`
	ObjectType string           `json:"objectType"`
	ObjectID   ObjectID         `json:"objectId"`
	Version    uint64           `json:"version"`
	Digest     Digest           `json:"digest"`
}

// DynamicFieldPage is one page of getDynamicFields.
type DynamicFieldPage struct {
	Data        []DynamicFieldInfo `json:"data"`
	NextCursor  *ObjectID          `json:"nextCursor"`
	HasNextPage bool               `json:"hasNextPage"`
}

// GetDynamicFieldsParams are the arguments of getDynamicFields. Cursor is
// the id of the last field of the previous page.
type GetDynamicFieldsParams struct {
	ParentID ObjectID  `json:"parentId"`
	Cursor   *ObjectID `json:"cursor,omitempty"`
	Limit    *uint     `json:"limit,omitempty"`
}

// GetDynamicFieldObjectParams are the arguments of getDynamicFieldObject.
type GetDynamicFieldObjectParams struct {
	ParentID ObjectID         `json:"parentId"`
	Name     DynamicFieldName `json:"name"`
}
