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

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
)

// Settings is the typed view of the system configuration used by every
// binary. Each key is resolved from the SSoT file first, then the process
// environment, then the hardcoded default.
type Settings struct {
	NextSession  string `env:"next_session" envDefault:"/var/lib/steamos_diy/next_session"`
	BinSteam     string `env:"bin_steam" envDefault:"steam"`
	BinGamescope string `env:"bin_gs" envDefault:"gamescope"`
	BinPlasma    string `env:"bin_plasma" envDefault:"startplasma-wayland"`
	UserConfig   string `env:"user_config"`
	SteamAppID   string `env:"SteamAppId"`
	LogDir       string `env:"log_dir"`
	DebugLogging bool   `env:"debug_logging"`
}

// ProfilesPath returns the per-user game profile directory, which lives
// next to the user config file.
func (s *Settings) ProfilesPath() string {
	return filepath.Join(filepath.Dir(s.UserConfig), ProfilesDir)
}

// LoadSettings resolves Settings from the SSoT values layered over environ
// (in os.Environ form).
func LoadSettings(ssot SSoT, environ []string) (Settings, error) {
	lookup := make(map[string]string, len(environ)+len(ssot))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			lookup[k] = v
		}
	}
	for k, v := range ssot {
		lookup[k] = v
	}

	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: lookup}); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}
	applyPathDefaults(&s)
	return s, nil
}

// DefaultSettings returns the hardcoded fallback settings.
func DefaultSettings() Settings {
	var s Settings
	// only envDefault values are applied with an empty environment
	_ = env.ParseWithOptions(&s, env.Options{Environment: map[string]string{}})
	applyPathDefaults(&s)
	return s
}

func applyPathDefaults(s *Settings) {
	if s.UserConfig == "" {
		s.UserConfig = filepath.Join(xdg.ConfigHome, AppName, UserCfgFile)
	}
	if s.LogDir == "" {
		s.LogDir = filepath.Join(xdg.StateHome, AppName)
	}
}
