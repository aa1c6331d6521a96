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

// Package shims implements the SteamOS OTA entry points that the Steam
// client calls on a stock SteamOS install. On a DIY install there is nothing
// to update, so each shim logs the request and reports success.
package shims

import (
	"github.com/rs/zerolog/log"
)

const (
	// ExitUpToDate is the steamos-update exit code for "no update available".
	ExitUpToDate = 7
	ExitOK       = 0

	DefaultBranch = "stable"
)

// Update handles steamos-update and always reports the system as up to date.
func Update(args []string) int {
	log.Info().Str("shim", "update").Strs("args", args).Msg("steam OTA update request intercepted")
	log.Info().Str("shim", "update").Int("exit", ExitUpToDate).Msg("reporting status: up to date")
	return ExitUpToDate
}

// SelectBranch handles steamos-select-branch. The first argument is the
// requested release channel.
func SelectBranch(args []string) int {
	branch := DefaultBranch
	if len(args) > 0 && args[0] != "" {
		branch = args[0]
	}
	log.Info().Str("shim", "branch").Str("branch", branch).Msg("intercepted branch switch request")
	log.Info().Str("shim", "branch").Str("branch", branch).Msg("release channel confirmed")
	return ExitOK
}

// BIOSUpdate handles jupiter-biosupdate.
func BIOSUpdate(args []string) int {
	log.Info().Str("shim", "bios").Strs("args", args).Msg("jupiter BIOS request intercepted, reporting ok")
	return ExitOK
}
