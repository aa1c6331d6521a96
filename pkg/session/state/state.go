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

// Package state owns the durable "next session" file shared by the session
// selector and the session launcher. Writes go through a sibling temp file
// and an atomic rename so a reader only ever sees a complete value.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Target is the session mode that should run on the next cycle.
type Target string

const (
	TargetSteam   Target = "steam"
	TargetDesktop Target = "desktop"

	// aliasPlasma is accepted on input as a synonym for TargetDesktop.
	aliasPlasma = "plasma"

	tmpSuffix = ".tmp"
)

var ErrInvalidTarget = errors.New("invalid session target")

// ParseTarget case-folds raw and maps the plasma alias to desktop.
func ParseTarget(raw string) (Target, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == aliasPlasma {
		name = string(TargetDesktop)
	}
	t := Target(name)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, raw)
	}
	return t, nil
}

// Valid reports whether t is one of the known session targets.
func (t Target) Valid() bool {
	return t == TargetSteam || t == TargetDesktop
}

func (t Target) String() string {
	return string(t)
}

// Store reads and writes the next session target file.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore creates a Store for the file at path on fs.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// NewOSStore creates a Store backed by the real filesystem.
func NewOSStore(path string) *Store {
	return NewStore(afero.NewOsFs(), path)
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored target with surrounding whitespace removed. A
// missing or unreadable file reads as TargetSteam. The returned value is not
// validated; callers decide how to treat unknown content.
func (s *Store) Read() Target {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("failed to read session state, defaulting to steam")
		}
		return TargetSteam
	}
	return Target(strings.TrimSpace(string(data)))
}

// Write stores t unless the file already holds it. It reports whether the
// file was changed. The new value is written to a sibling temp file, synced
// and renamed over the state file.
func (s *Store) Write(t Target) (bool, error) {
	if !t.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidTarget, t)
	}

	if current, err := afero.ReadFile(s.fs, s.path); err == nil &&
		strings.TrimSpace(string(current)) == string(t) {
		log.Debug().Str("target", t.String()).Msg("session state unchanged, skipping write")
		return false, nil
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + tmpSuffix
	if err := s.writeTemp(tmp, t); err != nil {
		_ = s.fs.Remove(tmp)
		return false, err
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return false, fmt.Errorf("failed to replace state file: %w", err)
	}

	log.Debug().Str("target", t.String()).Str("path", s.path).Msg("session state written")
	return true, nil
}

func (s *Store) writeTemp(tmp string, t Target) error {
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := f.WriteString(string(t)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	return nil
}
