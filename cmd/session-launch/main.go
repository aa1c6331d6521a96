//go:build linux

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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-session/pkg/cli"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/session"
	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags("session-launch", "session-launch")
	if done, err := flags.Pre(os.Args[1:]); done || err != nil {
		return err
	}

	env, err := cli.Setup(helpers.ComponentLaunch, *flags.Debug, nil)
	if err != nil {
		log.Error().Msg("system config unavailable, not launching")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := state.NewOSStore(env.Settings.NextSession)
	launcher := session.NewLauncher(env.Settings, store, &command.RealExecutor{})
	launcher.SetBaseEnv(env.SSoT)

	log.Info().Str("state", store.Path()).Msg("boot ok")
	report, err := launcher.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("launcher stopped")
			return nil
		}
		return fmt.Errorf("session launch failed: %w", err)
	}

	if report.ExitErr != nil {
		log.Warn().Err(report.ExitErr).Str("target", report.Target.String()).Msg("session exited with error")
	}
	return nil
}
