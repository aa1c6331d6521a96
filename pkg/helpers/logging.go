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

package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-session/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Log components, one per binary.
const (
	ComponentLaunch  = "LAUNCH"
	ComponentSelect  = "SELECT"
	ComponentProfile = "PROF"
	ComponentShim    = "SHIM"
)

// NewConsoleWriter returns the human readable writer used for the journal.
func NewConsoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: "15:04:05",
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			"component",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"component"},
	}
}

// InitLogging sets up the global logger for component. Output always goes
// to writers (or stderr when none are given); it also goes to a rotating
// JSON log file in the configured log dir when that dir can be created. A
// non-nil error means file logging is disabled, the logger is still usable.
//
//nolint:gocritic // settings copied for immutability
func InitLogging(settings config.Settings, component string, writers []io.Writer) error {
	if len(writers) == 0 {
		writers = []io.Writer{NewConsoleWriter(os.Stderr)}
	}
	logWriters := append([]io.Writer{}, writers...)

	var dirErr error
	if settings.LogDir != "" {
		if err := os.MkdirAll(settings.LogDir, 0o750); err != nil {
			dirErr = fmt.Errorf("failed to create log dir: %w", err)
		} else {
			logWriters = append(logWriters, &lumberjack.Logger{
				Filename:   filepath.Join(settings.LogDir, config.LogFile),
				MaxSize:    1,
				MaxBackups: 2,
			})
		}
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.InfoLevel
	if settings.DebugLogging {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(io.MultiWriter(logWriters...)).
		With().Timestamp().Caller().Str("component", component).Logger()

	return dirErr
}
