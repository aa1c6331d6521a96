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

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLister(procs ...ProcessInfo) Lister {
	return func(context.Context) ([]ProcessInfo, error) {
		return procs, nil
	}
}

func TestScanner_Find(t *testing.T) {
	t.Parallel()

	t.Run("returns_matches_sorted_by_pid", func(t *testing.T) {
		t.Parallel()

		scanner := New(WithLister(staticLister(
			ProcessInfo{PID: 900, Comm: "steam"},
			ProcessInfo{PID: 12, Comm: "bash"},
			ProcessInfo{PID: 40, Comm: "gamescope"},
		)))

		found, err := scanner.Find(context.Background(), NewCommMatcher("gamescope", "steam"))

		require.NoError(t, err)
		assert.Equal(t, []ProcessInfo{
			{PID: 40, Comm: "gamescope"},
			{PID: 900, Comm: "steam"},
		}, found)
	})

	t.Run("no_matches", func(t *testing.T) {
		t.Parallel()

		scanner := New(WithLister(staticLister(ProcessInfo{PID: 1, Comm: "systemd"})))

		found, err := scanner.Find(context.Background(), NewCommMatcher("plasmashell"))

		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("lister_error_is_wrapped", func(t *testing.T) {
		t.Parallel()

		listErr := errors.New("permission denied")
		scanner := New(WithLister(func(context.Context) ([]ProcessInfo, error) {
			return nil, listErr
		}))

		_, err := scanner.Find(context.Background(), NewCommMatcher("steam"))

		require.ErrorIs(t, err, listErr)
	})
}

func TestScanner_FindRealProcessTable(t *testing.T) {
	t.Parallel()

	scanner := New()

	found, err := scanner.Find(context.Background(), MatcherFunc(func(ProcessInfo) bool {
		return true
	}))

	require.NoError(t, err)
	assert.NotEmpty(t, found, "the test process itself should be listed")
}

func TestCommMatcher(t *testing.T) {
	t.Parallel()

	m := NewCommMatcher("Steam", "plasmashell")

	assert.True(t, m.Match(ProcessInfo{Comm: "steam"}))
	assert.True(t, m.Match(ProcessInfo{Comm: "PLASMASHELL"}))
	assert.False(t, m.Match(ProcessInfo{Comm: "steamwebhelper"}))
}
