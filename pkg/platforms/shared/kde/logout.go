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

// Package kde asks a running Plasma desktop session to log out.
package kde

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	shutdownService   = "org.kde.Shutdown"
	shutdownPath      = "/Shutdown"
	shutdownInterface = "org.kde.Shutdown"
	logoutMethod      = "logout"
)

// qdbusBinaries are tried in order when the session bus cannot be reached
// directly. Plasma 6 ships qdbus6, older releases ship qdbus.
var qdbusBinaries = []string{"qdbus6", "qdbus"}

type mechanism struct {
	run  func(ctx context.Context) error
	name string
}

// SessionManager requests a Plasma logout.
type SessionManager struct {
	cmd        command.Executor
	dbusLogout func(ctx context.Context) error
}

// NewSessionManager creates a SessionManager using the real session bus and
// command executor.
func NewSessionManager() *SessionManager {
	return NewSessionManagerWithDeps(&command.RealExecutor{}, sessionBusLogout)
}

// NewSessionManagerWithDeps creates a SessionManager with a custom executor
// and D-Bus logout call. This is useful for testing.
func NewSessionManagerWithDeps(
	cmd command.Executor,
	dbusLogout func(ctx context.Context) error,
) *SessionManager {
	return &SessionManager{cmd: cmd, dbusLogout: dbusLogout}
}

// Logout tries each known logout mechanism in order and stops at the first
// one that could be dispatched. It never waits for the session to end.
func (m *SessionManager) Logout(ctx context.Context) error {
	errs := make([]error, 0, len(qdbusBinaries)+1)
	for _, mech := range m.mechanisms() {
		if err := mech.run(ctx); err != nil {
			log.Debug().Err(err).Str("mechanism", mech.name).Msg("logout mechanism failed")
			errs = append(errs, fmt.Errorf("%s: %w", mech.name, err))
			continue
		}
		log.Info().Str("mechanism", mech.name).Msg("plasma logout requested")
		return nil
	}
	return fmt.Errorf("failed to request plasma logout: %w", errors.Join(errs...))
}

func (m *SessionManager) mechanisms() []mechanism {
	mechs := []mechanism{{name: "dbus", run: m.dbusLogout}}
	for _, bin := range qdbusBinaries {
		mechs = append(mechs, mechanism{
			name: bin,
			run: func(ctx context.Context) error {
				//nolint:wrapcheck // wrapped with the mechanism name by Logout
				return m.cmd.Start(ctx, bin, shutdownService, shutdownPath, logoutMethod)
			},
		})
	}
	return mechs
}

// sessionBusLogout sends the logout request over the user's session bus
// without waiting for a reply.
func sessionBusLogout(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Debug().Err(closeErr).Msg("failed to close session bus")
		}
	}()

	obj := conn.Object(shutdownService, shutdownPath)
	call := obj.CallWithContext(ctx, shutdownInterface+"."+logoutMethod, dbus.FlagNoReplyExpected)
	if call.Err != nil {
		return fmt.Errorf("failed to call %s.%s: %w", shutdownInterface, logoutMethod, call.Err)
	}
	return nil
}
