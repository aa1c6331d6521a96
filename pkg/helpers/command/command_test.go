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

package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Start(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("starts_command_without_waiting", func(t *testing.T) {
		t.Parallel()

		err := executor.Start(context.Background(), "true")

		assert.NoError(t, err)
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Start(context.Background(), "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
	})
}

func TestRealExecutor_StartProcess(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("passes_environment_overlay_to_child", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		proc, err := executor.StartProcess(context.Background(), Cmd{
			Name:   "sh",
			Args:   []string{"-c", "printf %s \"$SESSION_TEST_VALUE\""},
			Env:    map[string]string{"SESSION_TEST_VALUE": "overlay"},
			Stdout: &out,
		})
		require.NoError(t, err)
		assert.Positive(t, proc.Pid())

		require.NoError(t, proc.Wait())
		assert.Equal(t, "overlay", out.String())
		_, set := os.LookupEnv("SESSION_TEST_VALUE")
		assert.False(t, set, "overlay must not leak into the parent environment")
	})

	t.Run("wait_reports_exit_status", func(t *testing.T) {
		t.Parallel()

		proc, err := executor.StartProcess(context.Background(), Cmd{Name: "false"})
		require.NoError(t, err)

		assert.Error(t, proc.Wait())
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.StartProcess(context.Background(), Cmd{
			Name: "nonexistent_command_that_should_not_exist_12345",
		})

		require.Error(t, err)
	})
}

func TestLookPathEnv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "mangohud")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755)) //nolint:gosec // test executable
	plain := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))

	t.Run("finds_executable_on_env_path", func(t *testing.T) {
		t.Parallel()

		path, err := LookPathEnv("mangohud", []string{"PATH=/nonexistent:" + dir})

		require.NoError(t, err)
		assert.Equal(t, exe, path)
	})

	t.Run("last_path_entry_wins", func(t *testing.T) {
		t.Parallel()

		path, err := LookPathEnv("mangohud", []string{"PATH=/nonexistent", "PATH=" + dir})

		require.NoError(t, err)
		assert.Equal(t, exe, path)
	})

	t.Run("absolute_path_checked_directly", func(t *testing.T) {
		t.Parallel()

		path, err := LookPathEnv(exe, nil)

		require.NoError(t, err)
		assert.Equal(t, exe, path)
	})

	t.Run("non_executable_is_not_found", func(t *testing.T) {
		t.Parallel()

		_, err := LookPathEnv(plain, nil)

		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing_command_is_not_found", func(t *testing.T) {
		t.Parallel()

		_, err := LookPathEnv("mangohud", []string{"PATH=/nonexistent"})

		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEnviron(t *testing.T) {
	t.Parallel()

	tests := []struct {
		overlay map[string]string
		name    string
		base    []string
		want    []string
	}{
		{
			name:    "empty_overlay_keeps_base",
			base:    []string{"A=1", "B=2"},
			overlay: nil,
			want:    []string{"A=1", "B=2"},
		},
		{
			name:    "replaces_in_place",
			base:    []string{"A=1", "B=2"},
			overlay: map[string]string{"A": "x"},
			want:    []string{"A=x", "B=2"},
		},
		{
			name:    "appends_new_keys_sorted",
			base:    []string{"A=1"},
			overlay: map[string]string{"Z": "26", "M": "13"},
			want:    []string{"A=1", "M=13", "Z=26"},
		},
		{
			name:    "collapses_duplicate_overlaid_keys",
			base:    []string{"A=1", "A=2"},
			overlay: map[string]string{"A": "3"},
			want:    []string{"A=3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Environ(tt.base, tt.overlay))
		})
	}
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	// Verify that RealExecutor implements Executor
	var _ Executor = (*RealExecutor)(nil)
}

func TestRealExecutor_StartCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&RealExecutor{}).Start(ctx, "true")

	require.ErrorIs(t, err, context.Canceled)
}
