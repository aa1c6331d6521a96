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

// Package session implements the game mode / desktop mode session cycle:
// the selector that records the next target and signals the running session
// to end, and the launcher that starts the chosen session and falls back to
// the desktop when it crashes on startup.
package session

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
	"github.com/rs/zerolog/log"
)

// Outcome is the result of a session selection request.
type Outcome string

const (
	OutcomeSwitched  Outcome = "switched"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
)

// GameClient is the game mode client that must be closed to leave game mode.
type GameClient interface {
	Shutdown(ctx context.Context) error
}

// DesktopSession is the desktop session that must log out to leave desktop
// mode.
type DesktopSession interface {
	Logout(ctx context.Context) error
}

// Selector records the requested next session and signals the running one
// to end. The actual switch happens when the supervisor restarts the
// launcher after the current session exits.
type Selector struct {
	store   *state.Store
	game    GameClient
	desktop DesktopSession
}

// NewSelector creates a Selector.
func NewSelector(store *state.Store, game GameClient, desktop DesktopSession) *Selector {
	return &Selector{store: store, game: game, desktop: desktop}
}

// Select validates requested, stores it and signals the current session to
// terminate. Invalid requests are rejected without touching the store.
// Shutdown and logout requests are fire-and-forget; their failures are
// logged and ignored.
func (s *Selector) Select(ctx context.Context, requested string) (Outcome, error) {
	target, err := state.ParseTarget(requested)
	if err != nil {
		log.Error().Str("requested", requested).Msg("invalid session target")
		return OutcomeInvalid, err
	}

	changed, err := s.store.Write(target)
	if err != nil {
		log.Error().Err(err).Str("target", target.String()).Msg("failed to store next session")
		return OutcomeFailed, fmt.Errorf("failed to select %s: %w", target, err)
	}

	outcome := OutcomeUnchanged
	if changed {
		outcome = OutcomeSwitched
		log.Info().Str("target", target.String()).Msg("session switch requested")
	} else {
		log.Info().Str("target", target.String()).Msg("session target already set")
	}

	s.signal(ctx, target)
	return outcome, nil
}

func (s *Selector) signal(ctx context.Context, target state.Target) {
	switch target {
	case state.TargetDesktop:
		log.Info().Msg("triggering steam shutdown")
		if err := s.game.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("steam shutdown request failed")
		}
	case state.TargetSteam:
		log.Info().Msg("triggering desktop logout")
		if err := s.desktop.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("desktop logout request failed")
		}
	}
}
