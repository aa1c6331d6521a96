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

// Package cli holds the flag handling and process setup shared by the
// session binaries.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type Flags struct {
	set     *pflag.FlagSet
	out     io.Writer
	Debug   *bool
	Version *bool
	usage   string
}

// SetupFlags defines the flags common to every binary. usage is the
// synopsis printed before the flag list, e.g. "session-select <target>".
func SetupFlags(name, usage string) *Flags {
	set := pflag.NewFlagSet(name, pflag.ContinueOnError)
	set.SetInterspersed(false)

	f := &Flags{
		set:   set,
		out:   os.Stderr,
		usage: usage,
		Debug: set.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
	set.SetOutput(f.out)
	set.Usage = f.printUsage
	return f
}

// FlagSet exposes the underlying set so binaries can add their own flags
// before calling Pre.
func (f *Flags) FlagSet() *pflag.FlagSet {
	return f.set
}

// SetOutput sets where help and version text is written (for testing).
func (f *Flags) SetOutput(w io.Writer) {
	f.out = w
	f.set.SetOutput(w)
}

func (f *Flags) printUsage() {
	_, _ = fmt.Fprintf(f.out, "Usage: %s [flags]\n\n", f.usage)
	f.set.PrintDefaults()
}

// Pre parses args and handles the flags that need no setup. It reports
// true when the program should exit successfully without doing anything
// else.
func (f *Flags) Pre(args []string) (bool, error) {
	if err := f.set.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, fmt.Errorf("invalid arguments: %w", err)
	}

	if *f.Version {
		_, _ = fmt.Fprintf(f.out, "%s v%s\n", f.set.Name(), config.AppVersion)
		return true, nil
	}
	return false, nil
}

// Args returns the positional arguments left after parsing.
func (f *Flags) Args() []string {
	return f.set.Args()
}

// Env is the resolved system configuration of a binary.
type Env struct {
	SSoT     config.SSoT
	Settings config.Settings
}

// Environ returns the process environment with the SSoT values applied, as
// seen by launched children.
func (e *Env) Environ() []string {
	return command.Environ(os.Environ(), e.SSoT)
}

// Setup loads the system config and initializes logging for component. The
// returned Env is always usable; a non-nil error wraps
// config.ErrConfigUnavailable and means only fallbacks were applied.
func Setup(component string, debug bool, writers []io.Writer) (Env, error) {
	path := config.SSoTPath()
	ssot, ssotErr := config.LoadSSoT(path)

	settings, settingsErr := config.LoadSettings(ssot, os.Environ())
	if debug {
		settings.DebugLogging = true
	}

	if err := helpers.InitLogging(settings, component, writers); err != nil {
		log.Warn().Err(err).Str("dir", settings.LogDir).Msg("file logging disabled")
	}
	if settingsErr != nil {
		log.Warn().Err(settingsErr).Msg("invalid settings, using defaults")
	}
	if ssotErr != nil {
		log.Error().Err(ssotErr).Str("path", path).Msg("could not load system config")
	}

	return Env{SSoT: ssot, Settings: settings}, ssotErr
}
