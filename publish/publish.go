// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package publish compiles Move packages with the sui toolchain and
// publishes the bytecode to a sandbox.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/movesandbox/types"
)

// FrameworkDependencies are the packages every Move package depends on.
// They lead the dependency list of a publish.
var FrameworkDependencies = []types.ObjectID{types.StdlibPackageID, types.FrameworkPackageID}

// BuildOutput is the JSON the compiler dumps with
// --dump-bytecode-as-base64.
type BuildOutput struct {
	Modules      []string        `json:"modules"`
	Dependencies []string        `json:"dependencies"`
	Digest       json.RawMessage `json:"digest"`
}

// Publisher publishes compiled modules. sandbox.Client implements it.
type Publisher interface {
	PublishPackage(modules [][]byte, dependencies []types.ObjectID, sender types.Address) (*types.TransactionBlockResponse, error)
}

// Config configures the compiler.
type Config struct {
	// SuiPath is the sui binary. Empty means FindCompiler's search.
	SuiPath string `json:"suiPath"`
}

// Compiler builds Move packages.
type Compiler struct {
	Path   string
	Runner Runner
}

// NewCompiler returns a compiler running the binary found for [config].
func NewCompiler(config Config) *Compiler {
	return &Compiler{
		Path:   FindCompiler(config.SuiPath),
		Runner: ExecRunner{},
	}
}

// BuildArgs are the compiler arguments that build the package in [dir].
func BuildArgs(dir string) []string {
	return []string{
		"move", "build",
		"--path", dir,
		"--dump-bytecode-as-base64",
		"--skip-fetch-latest-git-deps",
	}
}

// Compile builds the package in [dir] and parses the compiler output.
func (c *Compiler) Compile(ctx context.Context, dir string) (*BuildOutput, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, &ToolchainError{Err: err}
	}

	args := BuildArgs(dir)
	command := strings.Join(append([]string{c.Path}, args...), " ")
	log.Info("compiling Move package",
		"package", manifest.Package.Name,
		"dependencies", manifest.DependencyNames(),
		"dir", dir,
		"compiler", c.Path,
	)

	res, err := c.Runner.Run(ctx, c.Path, args...)
	if err != nil {
		return nil, &ToolchainError{Command: command, Err: err}
	}
	if res.ExitCode != 0 {
		return nil, &ToolchainError{
			Command:  command,
			ExitCode: res.ExitCode,
			Stderr:   string(bytes.TrimSpace(res.Stderr)),
		}
	}
	return ParseBuildOutput(res.Stdout)
}

// ParseBuildOutput decodes the JSON object in [stdout], taken from the
// first '{' to the last '}' so that surrounding log lines are ignored.
func ParseBuildOutput(stdout []byte) (*BuildOutput, error) {
	start := bytes.IndexByte(stdout, '{')
	end := bytes.LastIndexByte(stdout, '}')
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	out := &BuildOutput{}
	if err := json.Unmarshal(stdout[start:end+1], out); err != nil {
		return nil, fmt.Errorf("couldn't parse build output: %w", err)
	}
	return out, nil
}

// ExtractModules decodes the base64 modules of [out] in order.
func ExtractModules(out *BuildOutput) ([][]byte, error) {
	if len(out.Modules) == 0 {
		return nil, errNoModules
	}
	modules := make([][]byte, len(out.Modules))
	for i, encoded := range out.Modules {
		module, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: module %d: %v", errBadModule, i, err)
		}
		modules[i] = module
	}
	return modules, nil
}

// ReconcileDependencies returns FrameworkDependencies followed by the
// [reported] ids, dropping ids already listed. Reported order is kept.
func ReconcileDependencies(reported []string) ([]types.ObjectID, error) {
	deps := make([]types.ObjectID, 0, len(FrameworkDependencies)+len(reported))
	seen := make(map[types.ObjectID]bool, cap(deps))
	for _, id := range FrameworkDependencies {
		deps = append(deps, id)
		seen[id] = true
	}
	for _, s := range reported {
		id, err := types.ParseObjectID(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errBadDepID, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		deps = append(deps, id)
	}
	return deps, nil
}

// Publish compiles the package in [dir] and publishes it on behalf of
// [owner]. Nothing is published unless every step succeeds.
func (c *Compiler) Publish(ctx context.Context, sb Publisher, dir string, owner types.Address) (*types.TransactionBlockResponse, error) {
	out, err := c.Compile(ctx, dir)
	if err != nil {
		return nil, err
	}
	modules, err := ExtractModules(out)
	if err != nil {
		return nil, err
	}
	deps, err := ReconcileDependencies(out.Dependencies)
	if err != nil {
		return nil, err
	}
	resp, err := sb.PublishPackage(modules, deps, owner)
	if err != nil {
		return nil, fmt.Errorf("couldn't publish package: %w", err)
	}
	log.Info("published Move package",
		"dir", dir,
		"modules", len(modules),
		"digest", resp.Digest,
	)
	return resp, nil
}

// Publish compiles and publishes with the compiler found on this machine.
func Publish(ctx context.Context, sb Publisher, dir string, owner types.Address) (*types.TransactionBlockResponse, error) {
	return NewCompiler(Config{}).Publish(ctx, sb, dir, owner)
}
