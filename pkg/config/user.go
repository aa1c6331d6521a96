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
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// UserConfig is the per-user YAML config holding global environment
// defaults and extra compositor flags. Values are kept as nodes so they
// reach the child process exactly as written.
type UserConfig struct {
	EnvVars map[string]yaml.Node `yaml:"env_vars"`
	Flags   []yaml.Node          `yaml:"flags"`
}

// LoadUserConfig loads the user config. A missing or unparsable file yields
// an empty config; it never aborts the caller.
func LoadUserConfig(path string) UserConfig {
	cfg, _ := LoadYAML[UserConfig](path)
	return cfg
}

// Env returns env_vars as strings, skipping null values.
func (c UserConfig) Env() map[string]string {
	return StringMap(c.EnvVars)
}

// FlagStrings returns the non-empty entries of flags as strings.
func (c UserConfig) FlagStrings() []string {
	flags := make([]string, 0, len(c.Flags))
	for i := range c.Flags {
		if s, ok := ScalarString(&c.Flags[i]); ok && s != "" {
			flags = append(flags, s)
		}
	}
	return flags
}

// LoadYAML decodes the YAML file at path. It returns the zero value and
// false when the file is missing or cannot be parsed; both cases are logged
// as warnings.
func LoadYAML[T any](path string) (T, bool) {
	return LoadYAMLFs[T](afero.NewOsFs(), path)
}

// LoadYAMLFs is LoadYAML reading from fs.
func LoadYAMLFs[T any](fs afero.Fs, path string) (T, bool) {
	var empty T
	if path == "" {
		return empty, false
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Msg("yaml config not found, using empty defaults")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("failed to read yaml config")
		}
		return empty, false
	}

	var out T
	if err := yaml.Unmarshal(data, &out); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to parse yaml config")
		return empty, false
	}
	return out, true
}

// ScalarString returns the source text of a YAML scalar, so 8.0 stays
// "8.0" and True stays "True". Null and non-scalar nodes report false.
func ScalarString(n *yaml.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	if n.Kind == yaml.AliasNode {
		return ScalarString(n.Alias)
	}
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return "", false
	}
	return n.Value, true
}

// StringMap converts a decoded YAML mapping to strings, dropping entries
// that are not scalars.
func StringMap(m map[string]yaml.Node) map[string]string {
	out := make(map[string]string, len(m))
	for k := range m {
		n := m[k]
		if s, ok := ScalarString(&n); ok {
			out[k] = s
		}
	}
	return out
}
