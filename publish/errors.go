// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrNoJSON is returned when the compiler output holds no JSON object.
	ErrNoJSON = errors.New("failed to parse build output - no JSON found")

	errNoManifest = errors.New("directory is not a Move package")
	errNoName     = errors.New("manifest has no package name")
	errBadModule  = errors.New("module is not valid base64")
	errNoModules  = errors.New("build output holds no modules")
	errBadDepID   = errors.New("invalid dependency id")
)

// ToolchainError reports a failure to build a Move package: the compiler
// could not be launched, exited with an error, or the package directory is
// unusable.
type ToolchainError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolchainError) Error() string {
	msg := "failed to build Move package"
	if e.Command != "" {
		msg += fmt.Sprintf(": %s", e.Command)
	}
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" exited with code %d", e.ExitCode)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf(": %s", e.Stderr)
	}
	return msg
}

func (e *ToolchainError) Unwrap() error { return e.Err }
