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
	"os"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/shims"
)

func main() {
	// the shim must report success even when nothing else works
	settings, _ := config.LoadSettings(nil, os.Environ())
	_ = helpers.InitLogging(settings, helpers.ComponentShim, nil)
	os.Exit(shims.SelectBranch(os.Args[1:]))
}
