// Zaparoo Session
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Session.
//
// Zaparoo Session is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Session is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Session.  If not, see <http://www.gnu.org/licenses/>.

package helpers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrInjected is returned by the fault injecting filesystems.
var ErrInjected = errors.New("injected filesystem failure")

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// WriteFile writes content to path, creating parent directories.
func (h *FSHelper) WriteFile(path, content string) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a file and returns its content as a string.
func (h *FSHelper) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(data), nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// CreateUserConfig writes a user config YAML with the given env_vars and
// flags.
func (h *FSHelper) CreateUserConfig(path string, envVars map[string]any, flags []string) error {
	doc := map[string]any{}
	if envVars != nil {
		doc["env_vars"] = envVars
	}
	if flags != nil {
		doc["flags"] = flags
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	return h.WriteFile(path, string(data))
}

// CountingFs wraps an afero.Fs and counts file opens for writing and
// renames, so tests can assert that no storage write happened.
type CountingFs struct {
	afero.Fs
	writes  atomic.Int32
	renames atomic.Int32
}

// NewCountingFs wraps fs.
func NewCountingFs(fs afero.Fs) *CountingFs {
	return &CountingFs{Fs: fs}
}

// Writes returns the number of files opened for writing.
func (c *CountingFs) Writes() int {
	return int(c.writes.Load())
}

// Renames returns the number of renames.
func (c *CountingFs) Renames() int {
	return int(c.renames.Load())
}

func (c *CountingFs) Create(name string) (afero.File, error) {
	c.writes.Add(1)
	//nolint:wrapcheck // passthrough
	return c.Fs.Create(name)
}

func (c *CountingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		c.writes.Add(1)
	}
	//nolint:wrapcheck // passthrough
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *CountingFs) Rename(oldname, newname string) error {
	c.renames.Add(1)
	//nolint:wrapcheck // passthrough
	return c.Fs.Rename(oldname, newname)
}

// FailingRenameFs wraps an afero.Fs and fails every rename.
type FailingRenameFs struct {
	afero.Fs
}

func (FailingRenameFs) Rename(_, _ string) error {
	return ErrInjected
}
