// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"encoding/json"
	"strings"
)

const (
	// SuiCoinType is the native coin type. An empty coin type in a query
	// means this type.
	SuiCoinType = "0x2::sui::SUI"

	coinStructPrefix = "0x2::coin::Coin<"
)

// Function visibilities as reported by normalized Move functions.
const (
	VisibilityPublic  = "Public"
	VisibilityFriend  = "Friend"
	VisibilityPrivate = "Private"
)

// NormalizeTypeTag canonicalizes the leading address of every struct tag in
// [tag] so that "0x2::sui::SUI" and its zero-padded long form compare equal.
// Framework addresses keep their short form, as the RPC reports them.
func NormalizeTypeTag(tag string) string {
	var (
		out   strings.Builder
		start = 0
	)
	for i := 0; i <= len(tag); i++ {
		if i < len(tag) && !isTagSeparator(tag[i]) {
			continue
		}
		out.WriteString(normalizeTagAddress(tag[start:i]))
		if i < len(tag) {
			out.WriteByte(tag[i])
		}
		start = i + 1
	}
	return out.String()
}

func isTagSeparator(c byte) bool {
	return c == '<' || c == '>' || c == ',' || c == ' '
}

func normalizeTagAddress(part string) string {
	idx := strings.Index(part, "::")
	if idx <= 0 || !strings.HasPrefix(part, hexPrefix) {
		return part
	}
	id, err := ParseObjectID(part[:idx])
	if err != nil {
		return part
	}
	return shortID(id) + part[idx:]
}

// shortID renders ids with a single significant trailing byte (0x1, 0x2, ...)
// in their short form and every other id in full.
func shortID(id ObjectID) string {
	for i := 0; i < IDLen-1; i++ {
		if id[i] != 0 {
			return id.String()
		}
	}
	digits := strings.TrimLeft(id.String()[len(hexPrefix):], "0")
	if digits == "" {
		digits = "0"
	}
	return hexPrefix + digits
}

// CoinStructType returns the Move struct type of a coin of [coinType].
func CoinStructType(coinType string) string {
	return coinStructPrefix + NormalizeTypeTag(coinType) + ">"
}

// CoinTypeOf returns the coin type wrapped by a coin struct type, and false
// if [structType] is not a coin.
func CoinTypeOf(structType string) (string, bool) {
	structType = NormalizeTypeTag(structType)
	if !strings.HasPrefix(structType, coinStructPrefix) || !strings.HasSuffix(structType, ">") {
		return "", false
	}
	return structType[len(coinStructPrefix) : len(structType)-1], true
}

// GetNormalizedMoveFunctionParams references a function by package, module
// and name.
type GetNormalizedMoveFunctionParams struct {
	Package  ObjectID `json:"package"`
	Module   string   `json:"module"`
	Function string   `json:"function"`
}

// TypeParameter lists the abilities required of a generic type parameter.
type TypeParameter struct {
	Abilities []string `json:"abilities"`
}

// NormalizedMoveFunction is the normalized signature of a Move function.
// Parameter and return types are kept in their RPC JSON form.
type NormalizedMoveFunction struct {
	Visibility     string            `json:"visibility"`
	IsEntry        bool              `json:"isEntry"`
	TypeParameters []TypeParameter   `json:"typeParameters"`
	Parameters     []json.RawMessage `json:"parameters"`
	Return         []json.RawMessage `json:"return"`
}
