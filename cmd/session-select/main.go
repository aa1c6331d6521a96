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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/zaparoo-session/pkg/cli"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/platforms/shared/kde"
	"github.com/ZaparooProject/zaparoo-session/pkg/platforms/shared/linuxbase/procscanner"
	"github.com/ZaparooProject/zaparoo-session/pkg/platforms/shared/steam"
	"github.com/ZaparooProject/zaparoo-session/pkg/session"
	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
	"github.com/rs/zerolog/log"
)

// signalTimeout bounds the shutdown and logout requests.
const signalTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags("session-select", "session-select <steam|desktop|plasma>")
	showStatus := flags.FlagSet().Bool(
		"status",
		false,
		"print the next session and the running session processes",
	)
	if done, err := flags.Pre(os.Args[1:]); done || err != nil {
		return err
	}

	args := flags.Args()
	if !*showStatus && len(args) == 0 {
		return nil
	}

	env, err := cli.Setup(helpers.ComponentSelect, *flags.Debug, nil)
	if err != nil {
		return err
	}
	store := state.NewOSStore(env.Settings.NextSession)

	ctx, cancel := context.WithTimeout(context.Background(), signalTimeout)
	defer cancel()

	if *showStatus {
		return printStatus(ctx, store)
	}

	cmd := &command.RealExecutor{}
	selector := session.NewSelector(
		store,
		steam.NewClientWithExecutor(env.Settings.BinSteam, cmd),
		kde.NewSessionManager(),
	)

	outcome, err := selector.Select(ctx, args[0])
	if err != nil {
		return fmt.Errorf("session selection %s: %w", outcome, err)
	}
	return nil
}

func printStatus(ctx context.Context, store *state.Store) error {
	status, err := session.CurrentStatus(ctx, store, procscanner.New())
	if err != nil {
		return fmt.Errorf("failed to get session status: %w", err)
	}

	_, _ = fmt.Printf("next:   %s\n", status.Next)
	_, _ = fmt.Printf("active: %s\n", status.Active())
	for _, group := range []struct {
		name  string
		procs []procscanner.ProcessInfo
	}{
		{name: "game", procs: status.GameMode},
		{name: "desktop", procs: status.Desktop},
	} {
		names := make([]string, 0, len(group.procs))
		for _, p := range group.procs {
			names = append(names, fmt.Sprintf("%s(%d)", p.Comm, p.PID))
		}
		_, _ = fmt.Printf("%-7s %s\n", group.name+":", strings.Join(names, " "))
	}
	log.Debug().Str("next", status.Next.String()).Str("active", status.Active()).Msg("status printed")
	return nil
}
