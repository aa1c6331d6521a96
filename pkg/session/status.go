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

	"github.com/ZaparooProject/zaparoo-session/pkg/platforms/shared/linuxbase/procscanner"
	"github.com/ZaparooProject/zaparoo-session/pkg/session/state"
)

var (
	gameModeProcesses = []string{"gamescope", "gamescope-wl", "steam"}
	desktopProcesses  = []string{"plasmashell", "kwin_wayland", "startplasma-wayland"}
)

// Status describes the stored next target and the sessions currently
// running on the machine.
type Status struct {
	Next     state.Target
	GameMode []procscanner.ProcessInfo
	Desktop  []procscanner.ProcessInfo
}

// Active returns which session appears to be running: "steam", "desktop",
// "both" during a transition, or "none".
func (s *Status) Active() string {
	switch {
	case len(s.GameMode) > 0 && len(s.Desktop) > 0:
		return "both"
	case len(s.GameMode) > 0:
		return state.TargetSteam.String()
	case len(s.Desktop) > 0:
		return state.TargetDesktop.String()
	default:
		return "none"
	}
}

// CurrentStatus reads the store and scans for running session processes.
func CurrentStatus(ctx context.Context, store *state.Store, scanner *procscanner.Scanner) (Status, error) {
	status := Status{Next: store.Read()}

	game, err := scanner.Find(ctx, procscanner.NewCommMatcher(gameModeProcesses...))
	if err != nil {
		return status, fmt.Errorf("failed to scan game mode processes: %w", err)
	}
	status.GameMode = game

	desktop, err := scanner.Find(ctx, procscanner.NewCommMatcher(desktopProcesses...))
	if err != nil {
		return status, fmt.Errorf("failed to scan desktop processes: %w", err)
	}
	status.Desktop = desktop

	return status, nil
}
