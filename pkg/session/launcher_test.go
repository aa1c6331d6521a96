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

package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
	testhelpers "github.com/ZaparooProject/zaparoo-session/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLauncherSettings(t *testing.T, userConfig string) config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.NextSession = testStatePath
	s.UserConfig = userConfig
	if userConfig == "" {
		s.UserConfig = filepath.Join(t.TempDir(), "missing.yaml")
	}
	return s
}

type launcherFixture struct {
	launcher *Launcher
	store    *state.Store
	fs       *testhelpers.FSHelper
	clock    *clockwork.FakeClock
	cmd      *mocks.MockCommandExecutor
}

func newLauncherFixture(t *testing.T, initial string) *launcherFixture {
	t.Helper()
	store, h := newStore(t, initial)
	cmd := &mocks.MockCommandExecutor{}
	clock := clockwork.NewFakeClock()
	l := NewLauncher(testLauncherSettings(t, ""), store, cmd)
	l.SetClock(clock)
	return &launcherFixture{launcher: l, store: store, fs: h, clock: clock, cmd: cmd}
}

type runResult struct {
	err    error
	report Report
}

func (f *launcherFixture) runAsync(ctx context.Context) <-chan runResult {
	out := make(chan runResult, 1)
	go func() {
		report, err := f.launcher.Run(ctx)
		out <- runResult{report: report, err: err}
	}()
	return out
}

func TestLauncher_BuildCommand(t *testing.T) {
	t.Parallel()

	t.Run("steam_wraps_gamepad_ui_in_gamescope", func(t *testing.T) {
		t.Parallel()

		cfgPath := filepath.Join(t.TempDir(), "config.yaml")
		osFs := &testhelpers.FSHelper{Fs: afero.NewOsFs()}
		require.NoError(t, osFs.CreateUserConfig(cfgPath,
			map[string]any{"OUT": "DP-1", "MANGOHUD": 1},
			[]string{"-W 1920 -H 1080", "--prefer-output $OUT", "--bad 'unbalanced"},
		))
		store, _ := newStore(t, "")
		l := NewLauncher(testLauncherSettings(t, cfgPath), store, &mocks.MockCommandExecutor{})
		l.SetBaseEnv(map[string]string{"bin_steam": "steam", "MANGOHUD": "0"})

		cmd := l.BuildCommand(state.TargetSteam)

		assert.Equal(t, "gamescope", cmd.Name)
		assert.Equal(t, []string{
			"-e", "-f",
			"-W", "1920", "-H", "1080",
			"--prefer-output", "$OUT",
			"--", "steam", "-gamepadui", "-steamos3",
		}, cmd.Args)
		assert.Equal(t, map[string]string{
			"bin_steam": "steam",
			"OUT":       "DP-1",
			"MANGOHUD":  "1",
		}, cmd.Env)
	})

	t.Run("desktop_runs_plasma_only", func(t *testing.T) {
		t.Parallel()

		store, _ := newStore(t, "")
		l := NewLauncher(testLauncherSettings(t, ""), store, &mocks.MockCommandExecutor{})

		cmd := l.BuildCommand(state.TargetDesktop)

		assert.Equal(t, "startplasma-wayland", cmd.Name)
		assert.Empty(t, cmd.Args)
	})

	t.Run("steam_without_user_config", func(t *testing.T) {
		t.Parallel()

		store, _ := newStore(t, "")
		l := NewLauncher(testLauncherSettings(t, ""), store, &mocks.MockCommandExecutor{})

		cmd := l.BuildCommand(state.TargetSteam)

		assert.Equal(t, []string{"-e", "-f", "--", "steam", "-gamepadui", "-steamos3"}, cmd.Args)
		assert.Empty(t, cmd.Env)
	})
}

func TestLauncher_Run(t *testing.T) {
	t.Parallel()

	t.Run("stable_session_confirms_target", func(t *testing.T) {
		t.Parallel()

		// no state file yet: steam is the default and gets written once stable
		f := newLauncherFixture(t, "")
		proc := mocks.NewFakeProcess(100)
		f.cmd.On("StartProcess", mock.Anything, mock.MatchedBy(func(c command.Cmd) bool {
			return c.Name == "gamescope"
		})).Return(proc, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		results := f.runAsync(ctx)

		require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
		f.clock.Advance(GracePeriod)
		assert.Eventually(t, func() bool {
			return f.fs.FileExists(testStatePath)
		}, time.Second, 5*time.Millisecond)
		f.clock.Advance(time.Minute)
		proc.Exit(nil)

		res := <-results
		require.NoError(t, res.err)
		assert.Equal(t, PhaseStable, res.report.Outcome)
		assert.Equal(t, state.TargetSteam, res.report.Target)
		assert.Equal(t, []Phase{PhaseStarting, PhaseMonitoring, PhaseStable, PhaseExited}, res.report.Transitions)
		assert.Equal(t, GracePeriod+time.Minute, res.report.Duration)
		assert.Equal(t, state.TargetSteam, f.store.Read())
	})

	t.Run("early_exit_recovers_to_desktop", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "steam")
		exitErr := errors.New("exit status 1")
		f.cmd.On("StartProcess", mock.Anything, mock.Anything).Return(mocks.NewExitedProcess(100, exitErr), nil)

		report, err := f.launcher.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, PhaseCrashRecovered, report.Outcome)
		assert.Equal(t, []Phase{PhaseStarting, PhaseMonitoring, PhaseCrashRecovered, PhaseExited}, report.Transitions)
		require.ErrorIs(t, report.ExitErr, exitErr)
		assert.Equal(t, state.TargetDesktop, f.store.Read())
	})

	t.Run("clean_early_exit_is_still_a_crash", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "steam")
		f.cmd.On("StartProcess", mock.Anything, mock.Anything).Return(mocks.NewExitedProcess(100, nil), nil)

		report, err := f.launcher.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, PhaseCrashRecovered, report.Outcome)
		assert.Equal(t, state.TargetDesktop, f.store.Read())
	})

	t.Run("start_failure_recovers_to_desktop", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "steam")
		startErr := errors.New("gamescope: not found")
		f.cmd.On("StartProcess", mock.Anything, mock.Anything).Return(nil, startErr)

		report, err := f.launcher.Run(context.Background())

		require.ErrorIs(t, err, startErr)
		assert.Equal(t, PhaseCrashRecovered, report.Outcome)
		assert.Equal(t, []Phase{PhaseStarting, PhaseCrashRecovered, PhaseExited}, report.Transitions)
		assert.Equal(t, state.TargetDesktop, f.store.Read())
	})

	t.Run("unknown_stored_value_launches_desktop", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "garbage")
		proc := mocks.NewFakeProcess(100)
		f.cmd.On("StartProcess", mock.Anything, mock.MatchedBy(func(c command.Cmd) bool {
			return c.Name == "startplasma-wayland"
		})).Return(proc, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		results := f.runAsync(ctx)

		require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
		f.clock.Advance(GracePeriod)
		assert.Eventually(t, func() bool {
			return f.store.Read() == state.TargetDesktop
		}, time.Second, 5*time.Millisecond)
		proc.Exit(nil)

		res := <-results
		require.NoError(t, res.err)
		assert.Equal(t, state.TargetDesktop, res.report.Target)
		assert.Equal(t, PhaseStable, res.report.Outcome)
	})

	t.Run("missing_state_launches_steam", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "")
		f.cmd.On("StartProcess", mock.Anything, mock.MatchedBy(func(c command.Cmd) bool {
			return c.Name == "gamescope"
		})).Return(mocks.NewExitedProcess(1, nil), nil)

		report, err := f.launcher.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, state.TargetSteam, report.Target)
		f.cmd.AssertExpectations(t)
	})

	t.Run("cancel_during_grace_leaves_state", func(t *testing.T) {
		t.Parallel()

		f := newLauncherFixture(t, "desktop")
		proc := mocks.NewFakeProcess(100)
		f.cmd.On("StartProcess", mock.Anything, mock.Anything).Return(proc, nil)

		ctx, cancel := context.WithCancel(context.Background())
		results := f.runAsync(ctx)

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer waitCancel()
		require.NoError(t, f.clock.BlockUntilContext(waitCtx, 1))
		cancel()
		// the real executor kills the child when the context ends
		go func() {
			time.Sleep(20 * time.Millisecond)
			proc.Exit(errors.New("signal: terminated"))
		}()

		res := <-results
		require.ErrorIs(t, res.err, context.Canceled)
		assert.Empty(t, res.report.Outcome)
		assert.Equal(t, []Phase{PhaseStarting, PhaseMonitoring, PhaseExited}, res.report.Transitions)
		assert.Equal(t, state.TargetDesktop, f.store.Read())
	})
}
