// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memvm

import (
	"fmt"

	"github.com/ava-labs/movesandbox/types"
)

const (
	coinOfT   = `{"Struct":{"address":"0x2","module":"coin","name":"Coin","typeArguments":[{"TypeParameter":0}]}}`
	txContext = `{"MutableReference":{"Struct":{"address":"0x2","module":"tx_context","name":"TxContext","typeArguments":[]}}}`
	clockRef  = `{"Reference":{"Struct":{"address":"0x2","module":"clock","name":"Clock","typeArguments":[]}}}`
)

// frameworkFunctions holds the normalized signatures of the framework
// functions the backend knows about. Published packages are not
// disassembled, so only these resolve.
var frameworkFunctions = map[string]string{
	functionKey(types.FrameworkPackageID, "coin", "split"): `{"visibility":"Public","isEntry":false,"typeParameters":[{"abilities":[]}],` +
		`"parameters":[{"MutableReference":` + coinOfT + `},"U64",` + txContext + `],"return":[` + coinOfT + `]}`,
	functionKey(types.FrameworkPackageID, "coin", "join"): `{"visibility":"Public","isEntry":true,"typeParameters":[{"abilities":[]}],` +
		`"parameters":[{"MutableReference":` + coinOfT + `},` + coinOfT + `],"return":[]}`,
	functionKey(types.FrameworkPackageID, "coin", "value"): `{"visibility":"Public","isEntry":false,"typeParameters":[{"abilities":[]}],` +
		`"parameters":[{"Reference":` + coinOfT + `}],"return":["U64"]}`,
	functionKey(types.FrameworkPackageID, "transfer", "public_transfer"): `{"visibility":"Public","isEntry":false,"typeParameters":[{"abilities":["Store","Key"]}],` +
		`"parameters":[{"TypeParameter":0},"Address"],"return":[]}`,
	functionKey(types.FrameworkPackageID, "clock", "timestamp_ms"): `{"visibility":"Public","isEntry":false,"typeParameters":[],` +
		`"parameters":[` + clockRef + `],"return":["U64"]}`,
	functionKey(types.StdlibPackageID, "vector", "empty"): `{"visibility":"Public","isEntry":false,"typeParameters":[{"abilities":[]}],` +
		`"parameters":[],"return":[{"Vector":{"TypeParameter":0}}]}`,
}

func functionKey(pkg types.ObjectID, module, function string) string {
	return fmt.Sprintf("%s::%s::%s", pkg, module, function)
}

// lookupFunction returns the normalized signature of a framework function.
func lookupFunction(pkg types.ObjectID, module, function string) (string, bool) {
	fn, ok := frameworkFunctions[functionKey(pkg, module, function)]
	return fn, ok
}

// isFrameworkPackage reports whether [pkg] is one of the genesis packages.
func isFrameworkPackage(pkg types.ObjectID) bool {
	return pkg == types.StdlibPackageID || pkg == types.FrameworkPackageID
}
