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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// ErrConfigUnavailable is returned when the system configuration file cannot
// be opened. Callers are expected to fall back to hardcoded defaults.
var ErrConfigUnavailable = errors.New("configuration unavailable")

// SSoT is the flat KEY=VALUE system configuration, the single source of
// truth for binary paths and the session state file location.
type SSoT map[string]string

// SSoTPath returns the system configuration path, honouring SSOT_CONF.
func SSoTPath() string {
	if v := os.Getenv(SSoTEnv); v != "" {
		return v
	}
	return DefaultSSoTPath
}

// LoadSSoT reads and parses the system configuration file at path.
func LoadSSoT(path string) (SSoT, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigUnavailable, path, err)
	}
	return ParseSSoT(data)
}

// ParseSSoT parses KEY=VALUE directives. A line is a directive only if it
// contains '=' and does not start with '#'; anything else is skipped. Keys
// and values are trimmed and one matching pair of surrounding quotes is
// removed from the value.
func ParseSSoT(data []byte) (SSoT, error) {
	var directives bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		key, value, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		// ini reserves these prefixes for sections and comments
		if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, ";") {
			continue
		}
		// a backtick pair makes ini return the value verbatim, so its own
		// quote handling never applies
		directives.WriteString(key)
		directives.WriteString("=`")
		directives.WriteString(strings.TrimSpace(value))
		directives.WriteString("`\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan system config: %w", err)
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		SkipUnrecognizableLines: true,
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
	}, directives.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	ssot := make(SSoT)
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		ssot[key.Name()] = unquote(key.Value())
	}
	return ssot, nil
}

// unquote removes one matching pair of surrounding single or double quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Lookup returns the value for key and whether it was set.
func (s SSoT) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}
