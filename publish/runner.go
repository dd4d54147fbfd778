// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package publish

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultCompiler is the compiler name used when no binary is found.
const DefaultCompiler = "sui"

// Result is the outcome of a command that ran to completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs external commands. A non-zero exit is reported in the
// Result; an error means the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

var _ Runner = ExecRunner{}

// ExecRunner runs commands with os/exec in the current environment.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, err
	}
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if exitErr != nil {
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}

// lookPath and stat are swapped out in tests.
var (
	lookPath = exec.LookPath
	stat     = os.Stat
	homeDir  = os.UserHomeDir
)

// FindCompiler locates the sui binary: [configured] if set, then PATH,
// then the usual install locations. It falls back to the bare name.
func FindCompiler(configured string) string {
	if configured != "" {
		return configured
	}
	if path, err := lookPath(DefaultCompiler); err == nil {
		return path
	}

	candidates := []string{filepath.Join("/usr/local/bin", DefaultCompiler)}
	if home, err := homeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".cargo", "bin", DefaultCompiler),
			filepath.Join(home, ".local", "bin", DefaultCompiler),
		)
	}
	for _, candidate := range candidates {
		if info, err := stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return DefaultCompiler
}
