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

package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_Pre(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantArgs  []string
		wantOut   string
		wantDone  bool
		wantErr   bool
		wantDebug bool
	}{
		{name: "no_arguments", args: nil},
		{name: "positional", args: []string{"desktop"}, wantArgs: []string{"desktop"}},
		{name: "debug", args: []string{"--debug", "steam"}, wantArgs: []string{"steam"}, wantDebug: true},
		{name: "stops_at_first_positional", args: []string{"steam", "--debug"}, wantArgs: []string{"steam", "--debug"}},
		{name: "version", args: []string{"--version"}, wantDone: true, wantOut: "test-bin v"},
		{name: "help", args: []string{"--help"}, wantDone: true, wantOut: "Usage: test-bin <target>"},
		{name: "unknown_flag", args: []string{"--nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			flags := SetupFlags("test-bin", "test-bin <target>")
			flags.SetOutput(&out)

			done, err := flags.Pre(tt.args)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDone, done)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
				return
			}
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, flags.Args())
			} else {
				assert.Equal(t, tt.wantArgs, flags.Args())
			}
			assert.Equal(t, tt.wantDebug, *flags.Debug)
		})
	}
}

func TestFlags_CustomFlag(t *testing.T) {
	t.Parallel()

	flags := SetupFlags("session-select", "session-select <target>")
	status := flags.FlagSet().Bool("status", false, "")

	done, err := flags.Pre([]string{"--status"})

	require.NoError(t, err)
	assert.False(t, done)
	assert.True(t, *status)
	assert.Empty(t, flags.Args())
}

func TestSetup(t *testing.T) {
	// Note: Cannot use t.Parallel() because Setup reads the process
	// environment and replaces the global logger

	t.Run("loads_system_config", func(t *testing.T) {
		dir := t.TempDir()
		confPath := filepath.Join(dir, "steamos_diy.conf")
		require.NoError(t, os.WriteFile(confPath, []byte(
			"next_session="+filepath.Join(dir, "next")+"\nbin_steam=/opt/steam\n",
		), 0o600))
		t.Setenv(config.SSoTEnv, confPath)
		t.Setenv("log_dir", filepath.Join(dir, "logs"))
		t.Setenv("bin_steam", "/usr/games/steam")

		env, err := Setup("TEST", true, []io.Writer{io.Discard})
		require.NoError(t, err)
		assert.Equal(t, "/opt/steam", env.Settings.BinSteam)
		assert.Equal(t, filepath.Join(dir, "next"), env.Settings.NextSession)
		assert.True(t, env.Settings.DebugLogging)
		assert.Contains(t, env.Environ(), "bin_steam=/opt/steam")
	})

	t.Run("missing_system_config_uses_fallbacks", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(config.SSoTEnv, filepath.Join(dir, "missing.conf"))
		t.Setenv("log_dir", filepath.Join(dir, "logs"))
		t.Setenv("bin_gs", "/usr/local/bin/gamescope")

		env, err := Setup("TEST", false, nil)
		require.ErrorIs(t, err, config.ErrConfigUnavailable)
		assert.Equal(t, "/usr/local/bin/gamescope", env.Settings.BinGamescope)
		assert.Empty(t, env.SSoT)
	})
}
