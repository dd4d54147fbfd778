// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the manifest every Move package holds at its root.
const ManifestFile = "Move.toml"

// Manifest is the part of Move.toml the pipeline reads.
type Manifest struct {
	Package struct {
		Name    string `toml:"name"`
		Edition string `toml:"edition"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
	Addresses    map[string]string         `toml:"addresses"`
}

// ReadManifest parses the manifest of the Move package in [dir].
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	m := &Manifest{}
	if _, err := toml.DecodeFile(path, m); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found in %s", errNoManifest, ManifestFile, dir)
		}
		return nil, fmt.Errorf("couldn't parse %s: %w", path, err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("%w: %s", errNoName, path)
	}
	return m, nil
}

// DependencyNames lists the declared dependencies, sorted.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
