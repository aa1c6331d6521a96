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

package mocks

import (
	"context"
	"sync"

	"github.com/ZaparooProject/zaparoo-session/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

// Start mocks starting a fire-and-forget command.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Start", mock.Anything, "steam", []string{"-shutdown"}).Return(nil)
func (m *MockCommandExecutor) Start(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// StartProcess mocks starting a long-running child process.
func (m *MockCommandExecutor) StartProcess(ctx context.Context, cmd command.Cmd) (command.Process, error) {
	called := m.Called(ctx, cmd)
	proc, _ := called.Get(0).(command.Process)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return proc, called.Error(1)
}

// LookPath mocks executable resolution. The first return value may be a
// func(file string, env []string) string to compute the path per call.
func (m *MockCommandExecutor) LookPath(file string, env []string) (string, error) {
	called := m.Called(file, env)
	path := called.Get(0)
	if fn, ok := path.(func(string, []string) string); ok {
		path = fn(file, env)
	}
	resolved, _ := path.(string)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return resolved, called.Error(1)
}

// Exec mocks process image replacement. Unlike the real implementation it
// returns after recording the call.
func (m *MockCommandExecutor) Exec(path string, argv []string, env []string) error {
	called := m.Called(path, argv, env)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// FakeProcess is a command.Process whose exit is controlled by the test.
type FakeProcess struct {
	exited  chan struct{}
	exitErr error
	pid     int
	once    sync.Once
}

// NewFakeProcess returns a running FakeProcess with the given pid.
func NewFakeProcess(pid int) *FakeProcess {
	return &FakeProcess{pid: pid, exited: make(chan struct{})}
}

// NewExitedProcess returns a FakeProcess that has already exited with err.
func NewExitedProcess(pid int, err error) *FakeProcess {
	p := NewFakeProcess(pid)
	p.Exit(err)
	return p
}

// Pid returns the fake process ID.
func (p *FakeProcess) Pid() int {
	return p.pid
}

// Wait blocks until Exit is called.
func (p *FakeProcess) Wait() error {
	<-p.exited
	return p.exitErr
}

// Exit makes the process exit with err. Only the first call has an effect.
func (p *FakeProcess) Exit(err error) {
	p.once.Do(func() {
		p.exitErr = err
		close(p.exited)
	})
}

// Exited returns a channel closed once the process has exited.
func (p *FakeProcess) Exited() <-chan struct{} {
	return p.exited
}
