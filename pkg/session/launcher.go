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
	"fmt"
	"io"
	"maps"
	"os"
	"time"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/shellwords"
	"github.com/ZaparooProject/zaparoo-session/pkg/platforms/shared/steam"
	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// GracePeriod is how long a freshly started session must stay alive before
// it is considered stable. A session that exits sooner is treated as a
// startup crash.
const GracePeriod = 5 * time.Second

// Phase is a step of the launcher state machine.
type Phase string

const (
	PhaseStarting       Phase = "starting"
	PhaseMonitoring     Phase = "monitoring"
	PhaseStable         Phase = "stable"
	PhaseCrashRecovered Phase = "crash_recovered"
	PhaseExited         Phase = "exited"
)

// gamescopeBaseFlags run the compositor embedded and fullscreen.
var gamescopeBaseFlags = []string{"-e", "-f"}

// Report summarises one launcher run.
type Report struct {
	// ExitErr is the session process exit error, if any.
	ExitErr error
	// Target is the session that was launched.
	Target state.Target
	// Outcome is PhaseStable or PhaseCrashRecovered, or empty if the run
	// was cancelled before the grace period ended.
	Outcome Phase
	// Transitions lists every phase entered, in order.
	Transitions []Phase
	// Duration is the total session runtime.
	Duration time.Duration
}

// Launcher starts the session recorded in the state store and watches it
// through the startup grace period. It is single-shot: an outer supervisor
// runs it again for the next cycle.
type Launcher struct {
	clock    clockwork.Clock
	cmd      command.Executor
	stdout   io.Writer
	stderr   io.Writer
	store    *state.Store
	baseEnv  map[string]string
	settings config.Settings
}

// NewLauncher creates a Launcher attached to the current stdout and stderr.
//
//nolint:gocritic // settings copied for immutability
func NewLauncher(settings config.Settings, store *state.Store, cmd command.Executor) *Launcher {
	return &Launcher{
		settings: settings,
		store:    store,
		cmd:      cmd,
		clock:    clockwork.NewRealClock(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// SetClock sets the clock for testing. Must be called before Run.
func (l *Launcher) SetClock(clock clockwork.Clock) {
	l.clock = clock
}

// SetBaseEnv sets variables passed to every session below the user's
// env_vars, normally the system config values.
func (l *Launcher) SetBaseEnv(env map[string]string) {
	l.baseEnv = env
}

// BuildCommand constructs the session command for target. Game mode runs
// gamescope with the user's flags and env_vars wrapping the Steam gamepad
// UI; any other target runs the desktop binary on its own.
func (l *Launcher) BuildCommand(target state.Target) command.Cmd {
	if target != state.TargetSteam {
		return command.Cmd{
			Name:   l.settings.BinPlasma,
			Env:    l.baseEnv,
			Stdout: l.stdout,
			Stderr: l.stderr,
		}
	}

	userCfg := config.LoadUserConfig(l.settings.UserConfig)
	envOverlay := make(map[string]string, len(l.baseEnv))
	maps.Copy(envOverlay, l.baseEnv)
	maps.Copy(envOverlay, userCfg.Env())

	args := append([]string{}, gamescopeBaseFlags...)
	for _, flag := range userCfg.FlagStrings() {
		tokens, err := shellwords.Split(flag)
		if err != nil {
			log.Warn().Err(err).Str("flag", flag).Msg("skipping malformed gamescope flag")
			continue
		}
		args = append(args, tokens...)
	}

	client := steam.NewClientWithExecutor(l.settings.BinSteam, l.cmd)
	args = append(args, "--", client.Binary())
	args = append(args, client.GamepadUIArgs()...)

	return command.Cmd{
		Name:   l.settings.BinGamescope,
		Args:   args,
		Env:    envOverlay,
		Stdout: l.stdout,
		Stderr: l.stderr,
	}
}

// Run launches the stored session and blocks until it exits. A session that
// exits within GracePeriod makes desktop the next target; one that survives
// has its target confirmed in the store.
func (l *Launcher) Run(ctx context.Context) (Report, error) {
	report := Report{Target: l.store.Read()}
	if !report.Target.Valid() {
		log.Warn().Str("stored", report.Target.String()).Msg("unknown session target, launching desktop")
		report.Target = state.TargetDesktop
	}
	enter := func(p Phase) {
		report.Transitions = append(report.Transitions, p)
		log.Debug().Str("phase", string(p)).Msg("launcher phase")
	}

	enter(PhaseStarting)
	cmd := l.BuildCommand(report.Target)
	log.Info().
		Str("target", report.Target.String()).
		Str("cmd", cmd.Name).
		Strs("args", cmd.Args).
		Msg("starting session")

	start := l.clock.Now()
	proc, err := l.cmd.StartProcess(ctx, cmd)
	if err != nil {
		log.Error().Err(err).Msg("session failed to start, recovering to desktop")
		enter(PhaseCrashRecovered)
		report.Outcome = PhaseCrashRecovered
		l.persist(state.TargetDesktop)
		enter(PhaseExited)
		return report, fmt.Errorf("failed to start %s session: %w", report.Target, err)
	}

	enter(PhaseMonitoring)
	done := make(chan error, 1)
	go func() {
		done <- proc.Wait()
	}()

	select {
	case report.ExitErr = <-done:
		log.Warn().Err(report.ExitErr).Msg("session crash detected, recovering to desktop")
		enter(PhaseCrashRecovered)
		report.Outcome = PhaseCrashRecovered
		l.persist(state.TargetDesktop)
	case <-l.clock.After(GracePeriod):
		log.Info().Str("target", report.Target.String()).Msg("session validated as persistent")
		enter(PhaseStable)
		report.Outcome = PhaseStable
		l.persist(report.Target)
		report.ExitErr = <-done
	case <-ctx.Done():
		log.Warn().Msg("launcher cancelled during startup, leaving session state untouched")
		report.ExitErr = <-done
		enter(PhaseExited)
		report.Duration = l.clock.Since(start)
		return report, fmt.Errorf("launcher cancelled: %w", ctx.Err())
	}

	enter(PhaseExited)
	report.Duration = l.clock.Since(start)
	log.Info().
		Str("target", report.Target.String()).
		Dur("duration", report.Duration).
		Msgf("session ended after %ds", int(report.Duration.Seconds()))
	return report, nil
}

func (l *Launcher) persist(target state.Target) {
	if _, err := l.store.Write(target); err != nil {
		log.Error().Err(err).Str("target", target.String()).Msg("failed to persist next session")
	}
}
