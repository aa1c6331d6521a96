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

// Package procscanner takes one-shot snapshots of running processes and
// reports which ones belong to a game mode or desktop session.
package procscanner

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo contains information about a running process.
type ProcessInfo struct {
	Comm string
	PID  int
}

// Lister returns the processes currently running.
type Lister func(ctx context.Context) ([]ProcessInfo, error)

// Scanner matches running processes against a Matcher.
type Scanner struct {
	list Lister
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLister replaces the process source (for testing).
func WithLister(list Lister) Option {
	return func(s *Scanner) {
		s.list = list
	}
}

// New creates a new process scanner backed by gopsutil.
func New(opts ...Option) *Scanner {
	s := &Scanner{list: listProcesses}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Find returns every running process accepted by m, ordered by PID.
func (s *Scanner) Find(ctx context.Context, m Matcher) ([]ProcessInfo, error) {
	procs, err := s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var found []ProcessInfo
	for _, p := range procs {
		if m.Match(p) {
			found = append(found, p)
		}
	}
	slices.SortFunc(found, func(a, b ProcessInfo) int {
		return a.PID - b.PID
	})
	return found, nil
}

func listProcesses(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read process table: %w", err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// processes can exit between listing and inspection
			log.Trace().Err(err).Int32("pid", p.Pid).Msg("skipping process")
			continue
		}
		infos = append(infos, ProcessInfo{PID: int(p.Pid), Comm: name})
	}
	return infos, nil
}
