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

package procscanner

import "strings"

// Matcher determines if a process is of interest.
type Matcher interface {
	Match(proc ProcessInfo) bool
}

// MatcherFunc is a function adapter for Matcher interface.
type MatcherFunc func(proc ProcessInfo) bool

// Match implements Matcher.
func (f MatcherFunc) Match(proc ProcessInfo) bool {
	return f(proc)
}

// CommMatcher matches processes by their comm name (case-insensitive).
type CommMatcher struct {
	names map[string]bool
}

// NewCommMatcher creates a matcher that matches any of the given process names.
func NewCommMatcher(names ...string) *CommMatcher {
	m := &CommMatcher{
		names: make(map[string]bool, len(names)),
	}
	for _, name := range names {
		m.names[strings.ToLower(name)] = true
	}
	return m
}

// Match returns true if the process comm matches any registered name.
func (m *CommMatcher) Match(proc ProcessInfo) bool {
	return m.names[strings.ToLower(proc.Comm)]
}
