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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"
)

// ErrNotFound is returned by LookPath when no executable matches.
var ErrNotFound = errors.New("command not found")

// stopGracePeriod is how long a cancelled child gets after SIGTERM before
// it is killed.
const stopGracePeriod = 10 * time.Second

// Cmd describes a child process started with StartProcess.
type Cmd struct {
	// Env is overlaid on the current process environment for the child
	// only. The caller's own environment is never modified.
	Env    map[string]string
	Stdout io.Writer
	Stderr io.Writer
	Name   string
	Args   []string
}

// Process is a started child process.
type Process interface {
	// Pid returns the OS process ID.
	Pid() int
	// Wait blocks until the process exits and returns its exit error.
	Wait() error
}

// Executor provides an abstraction over exec.Command for testability.
// This allows commands to be mocked in tests without executing real system commands.
type Executor interface {
	// Start starts a command without waiting for it to complete (fire-and-forget).
	// Returns an error if the command fails to start. The child is not tied
	// to ctx and keeps running after the caller exits.
	Start(ctx context.Context, name string, args ...string) error

	// StartProcess starts a long-running child and returns a handle to it.
	StartProcess(ctx context.Context, cmd Cmd) (Process, error)

	// LookPath resolves file against the PATH found in env.
	LookPath(file string, env []string) (string, error)

	// Exec replaces the current process image. It only returns on failure.
	Exec(path string, argv []string, env []string) error
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

// Start starts a command without waiting for it to complete. Output of the
// child is discarded. A done ctx prevents the start.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	//nolint:noctx // the child must outlive ctx
	return exec.Command(name, args...).Start()
}

// StartProcess starts cmd with its environment overlay. Cancelling ctx sends
// SIGTERM to the child and kills it if it is still running after a grace
// period.
func (*RealExecutor) StartProcess(ctx context.Context, cmd Cmd) (Process, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = Environ(os.Environ(), cmd.Env)
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	c.Cancel = func() error {
		return c.Process.Signal(syscall.SIGTERM)
	}
	c.WaitDelay = stopGracePeriod

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
	}
	return &realProcess{cmd: c}, nil
}

// LookPath resolves file the same way a shell would, but against the PATH
// entry of env rather than the current process environment.
func (*RealExecutor) LookPath(file string, env []string) (string, error) {
	return LookPathEnv(file, env)
}

type realProcess struct {
	cmd *exec.Cmd
}

func (p *realProcess) Pid() int {
	return p.cmd.Process.Pid
}

//nolint:wrapcheck // exit errors are inspected by callers
func (p *realProcess) Wait() error {
	return p.cmd.Wait()
}

// LookPathEnv searches the PATH entry of env for an executable named file.
// Names containing a slash are checked directly.
func LookPathEnv(file string, env []string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if strings.Contains(file, "/") {
		if isExecutable(file) {
			return file, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}

	for _, dir := range filepath.SplitList(lookupEnv(env, "PATH")) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, file)
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, file)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// lookupEnv returns the last value of key in env, matching how the C
// library resolves duplicate entries.
func lookupEnv(env []string, key string) string {
	for _, kv := range slices.Backward(env) {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			return v
		}
	}
	return ""
}

// Environ returns base with every overlay entry applied. Existing keys are
// replaced in place and new keys are appended in sorted order.
func Environ(base []string, overlay map[string]string) []string {
	out := make([]string, 0, len(base)+len(overlay))
	seen := make(map[string]bool, len(overlay))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if v, over := overlay[k]; ok && over {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k+"="+v)
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = append(out, k+"="+overlay[k])
	}
	return out
}
