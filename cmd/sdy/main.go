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
	"fmt"
	"os"

	"github.com/ZaparooProject/zaparoo-session/pkg/cli"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/ZaparooProject/zaparoo-session/pkg/profiles"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// run does not parse flags: every argument belongs to the game command.
func run(args []string) error {
	if len(args) == 0 {
		return nil
	}

	env, err := cli.Setup(helpers.ComponentProfile, false, nil)
	if err != nil {
		log.Warn().Msg("continuing without system config")
	}

	resolver := profiles.NewResolver(env.Settings, env.Environ(), &command.RealExecutor{})
	res, err := resolver.Resolve(args)
	if err != nil {
		return fmt.Errorf("failed to resolve game: %w", err)
	}
	if res.ProfilePath != "" {
		log.Info().
			Str("profile", res.ProfilePath).
			Str("matched_by", res.MatchedBy).
			Str("game", res.Invocation.EffectiveName).
			Msg("profile loaded")
	}

	if err := resolver.Exec(res); err != nil {
		log.Error().Err(err).Msg("failed to launch game")
		return err
	}
	return nil
}
