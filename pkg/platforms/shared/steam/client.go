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

// Package steam drives the Steam client used by game mode: the gamepad UI
// command line and the shutdown request sent when leaving game mode.
package steam

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// DefaultBinary is used when no Steam binary is configured.
const DefaultBinary = "steam"

// Client controls a Steam client installation.
type Client struct {
	cmd command.Executor
	bin string
}

// NewClient creates a Steam client for the given binary.
func NewClient(bin string) *Client {
	return NewClientWithExecutor(bin, &command.RealExecutor{})
}

// NewClientWithExecutor creates a new Steam client with a custom command executor.
// This is useful for testing.
func NewClientWithExecutor(bin string, cmd command.Executor) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Client{bin: bin, cmd: cmd}
}

// Binary returns the configured Steam binary.
func (c *Client) Binary() string {
	return c.bin
}

// GamepadUIArgs returns the arguments that start Steam in the console-style
// gamepad UI used by game mode.
func (*Client) GamepadUIArgs() []string {
	return []string{"-gamepadui", "-steamos3"}
}

// Shutdown asks a running Steam client to exit. It does not wait for Steam
// to close.
func (c *Client) Shutdown(ctx context.Context) error {
	log.Debug().Str("bin", c.bin).Msg("requesting steam shutdown")
	if err := c.cmd.Start(ctx, c.bin, "-shutdown"); err != nil {
		return fmt.Errorf("failed to request steam shutdown: %w", err)
	}
	return nil
}
